// Package error defines domain-specific errors for the wedding budget service.
package error

// CodedError carries a stable code for API clients alongside the message
// and the underlying cause.
type CodedError[C ~string] struct {
	Code    C
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CodedError[C]) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *CodedError[C]) Unwrap() error {
	return e.Err
}

func newCodedError[C ~string](code C, message string, err error) *CodedError[C] {
	return &CodedError[C]{Code: code, Message: message, Err: err}
}
