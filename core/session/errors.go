package session

// Provider error codes, matching the codes the legacy auth provider emitted.
// Callers translate these to user-facing messages; they are never shown raw.
const (
	CodeUserNotFound    = "auth/user-not-found"
	CodeWrongPassword   = "auth/wrong-password"
	CodeInvalidEmail    = "auth/invalid-email"
	CodeWeakPassword    = "auth/weak-password"
	CodeEmailInUse      = "auth/email-already-in-use"
	CodeTooManyRequests = "auth/too-many-requests"
	CodeNetworkFailed   = "auth/network-request-failed"
)

// Error is a coded provider-level error.
type Error struct {
	Code string
	Err  error // optional underlying cause
}

func NewError(code string, err ...error) *Error {
	e := &Error{Code: code}
	if len(err) > 0 {
		e.Err = err[0]
	}
	return e
}

func (e *Error) Error() string {
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the provider code from err, or "".
func ErrorCode(err error) string {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
