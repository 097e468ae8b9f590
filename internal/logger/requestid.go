package logger

import "github.com/google/uuid"

// MaxRequestIDLength bounds a client supplied X-Request-ID.
const MaxRequestIDLength = 128

// RequestID returns the client supplied id, or a fresh UUID when it is empty
// or longer than MaxRequestIDLength.
func RequestID(supplied string) string {
	if supplied == "" || len(supplied) > MaxRequestIDLength {
		return uuid.NewString()
	}
	return supplied
}
