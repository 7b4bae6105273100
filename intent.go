package vault

import (
	"encoding/json"
	"fmt"

	"github.com/keygate/vault/errors"
)

// StatusCode is the tag of an IntentStatus.
type StatusCode string

const (
	StatusPending    StatusCode = "Pending"
	StatusInProgress StatusCode = "InProgress"
	StatusCompleted  StatusCode = "Completed"
	StatusRejected   StatusCode = "Rejected"
	StatusFailed     StatusCode = "Failed"
)

// IntentStatus describes the progress or the result of a transfer. Completed
// and Failed are the terminal states of an execution attempt.
type IntentStatus struct {
	Code    StatusCode
	Message string
}

func Pending(msg string) IntentStatus    { return IntentStatus{Code: StatusPending, Message: msg} }
func InProgress(msg string) IntentStatus { return IntentStatus{Code: StatusInProgress, Message: msg} }
func Completed(msg string) IntentStatus  { return IntentStatus{Code: StatusCompleted, Message: msg} }
func Rejected(msg string) IntentStatus   { return IntentStatus{Code: StatusRejected, Message: msg} }
func Failed(msg string) IntentStatus     { return IntentStatus{Code: StatusFailed, Message: msg} }

// IsTerminal returns true for Completed and Failed.
func (s IntentStatus) IsTerminal() bool {
	return s.Code == StatusCompleted || s.Code == StatusFailed
}

// IsCompleted returns true if the transfer succeeded.
func (s IntentStatus) IsCompleted() bool {
	return s.Code == StatusCompleted
}

func (s IntentStatus) String() string {
	return fmt.Sprintf("%s(%s)", s.Code, s.Message)
}

// Validate returns an error if the status tag is unknown.
func (s IntentStatus) Validate() error {
	switch s.Code {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected, StatusFailed:
		return nil
	}
	return errors.Wrapf(errors.ErrState, "unknown status %q", s.Code)
}

// MarshalJSON renders the status as a single entry object, for example
// {"Completed":"done"}.
func (s IntentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[StatusCode]string{s.Code: s.Message})
}

// UnmarshalJSON reads the form produced by MarshalJSON.
func (s *IntentStatus) UnmarshalJSON(raw []byte) error {
	var m map[StatusCode]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return errors.Wrap(errors.ErrInput, "status must be an object")
	}
	if len(m) != 1 {
		return errors.Wrapf(errors.ErrInput, "status must have exactly one tag, got %d", len(m))
	}
	for code, msg := range m {
		s.Code, s.Message = code, msg
	}
	return s.Validate()
}

// TxKind is the operation requested by a proposal.
type TxKind string

const (
	Transfer TxKind = "transfer"
	Swap     TxKind = "swap"
)

// Validate returns an error for unknown kinds.
func (k TxKind) Validate() error {
	switch k {
	case Transfer, Swap:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "unknown transaction kind %q", string(k))
}

// Network names the ledger a proposal is executed on.
type Network string

const (
	NetworkICP     Network = "icp"
	NetworkETH     Network = "eth"
	NetworkBase    Network = "base"
	NetworkPolygon Network = "polygon"
)

// Networks lists all supported networks.
var Networks = []Network{NetworkICP, NetworkETH, NetworkBase, NetworkPolygon}

// Validate returns an error for unsupported networks.
func (n Network) Validate() error {
	for _, known := range Networks {
		if n == known {
			return nil
		}
	}
	return errors.Wrapf(errors.ErrInput, "unsupported network %q", string(n))
}
