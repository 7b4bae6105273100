package vault

import (
	"context"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int // local to the vault module

const (
	contextKeyLogger contextKey = iota
	contextKeyCaller
	contextKeyTime
)

// DefaultLogger is used for all contexts that have not set anything
// themselves.
var DefaultLogger = log.NewNopLogger()

// WithLogger sets the logger for this context.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another context like this,
// after passing all the keyvals to the Logger.
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or DefaultLogger if none was
// set.
func GetLogger(ctx context.Context) log.Logger {
	val, _ := ctx.Value(contextKeyLogger).(log.Logger)
	if val == nil {
		return DefaultLogger
	}
	return val
}

// WithCaller sets the principal on whose behalf the request is handled. It
// panics if the caller was already set, so that lower level code cannot
// impersonate somebody else.
func WithCaller(ctx context.Context, caller Principal) context.Context {
	if _, ok := GetCaller(ctx); ok {
		panic("caller already set")
	}
	return context.WithValue(ctx, contextKeyCaller, caller)
}

// GetCaller returns the principal on whose behalf the request is handled.
func GetCaller(ctx context.Context) (Principal, bool) {
	val, ok := ctx.Value(contextKeyCaller).(Principal)
	return val, ok
}

// WithRequestTime sets the time at which the request is handled.
func WithRequestTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyTime, t.UTC())
}

// RequestTime returns the time set by WithRequestTime. The second value is
// false if none was set.
func RequestTime(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(contextKeyTime).(time.Time)
	return t, ok
}
