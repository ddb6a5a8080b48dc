package signature

import "fmt"

// VerificationError describes why a signature did not verify. It only ever
// reaches debug logs; callers see a plain false.
type VerificationError struct {
	Message string
	Header  string
}

func (e VerificationError) Error() string {
	if e.Header != "" {
		return fmt.Sprintf("signature verification failed for header %s: %s", e.Header, e.Message)
	}
	return fmt.Sprintf("signature verification failed: %s", e.Message)
}

// NewVerificationError creates a new verification error
func NewVerificationError(header, format string, args ...interface{}) VerificationError {
	return VerificationError{
		Header:  header,
		Message: fmt.Sprintf(format, args...),
	}
}
