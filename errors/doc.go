/*
Package errors implements the error kinds used across the vault.

The idea is to reuse as many errors from this package as possible and define
custom package errors only when absolutely necessary. Extensions register
their own kinds with Register(code, description).

Create errors with Wrap(ErrXyz, "...") or ErrXyz.New("...") at the point of
creation to attach a stacktrace. Only the innermost wrap records the stack.

Once you have an error, you can use fmt to get more context

	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
