package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError marks a failure as retryable. The search and LLM clients
// wrap rate-limit and server-error responses in it so the retry loop knows
// the call is worth repeating.
type TransientError struct {
	Err        error
	StatusCode int // HTTP status when the failure came from a response, else 0
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps err as retryable. statusCode may be 0 for
// failures that never reached an HTTP response.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether err should be retried: a TransientError
// anywhere in the chain, a network timeout, a connection-level syscall
// error, or failure text matching a known transient pattern.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	return hasTransientMessage(err.Error())
}

// hasTransientMessage covers errors whose network cause survives only as
// text, typically after an HTTP client has flattened the chain into a
// string.
func hasTransientMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether an HTTP status merits a retry.
// Client errors other than 408 and 429 mean the request itself is bad and
// will not succeed on a second attempt.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}
