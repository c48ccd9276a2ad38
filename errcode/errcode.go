package errcode

// Code is a stable error identifier shared by the core and its callers.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	InvalidArg     Code = "invalid_argument"
	NotInitialized Code = "not_initialized"
	DriverFailure  Code = "driver_failure"
	NullTarget     Code = "null_target"
	Unsupported    Code = "unsupported"
	UnknownCommand Code = "unknown_command"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// Driver wraps a low-level backend error as a driver_failure with context.
func Driver(op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: DriverFailure, Op: op, Err: err}
}
