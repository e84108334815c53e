package scoring

import "fmt"

type Kind string

const (
	KindRateLimited Kind = "rate_limited"
	KindTimeout     Kind = "timeout"
	KindMalformed   Kind = "malformed_response"
)

// Error is a scoring-service failure. All kinds are transient from the
// orchestrator's point of view and go through the bounded retry policy; a
// batch that exhausts retries is recorded as failed, not fatal.
type Error struct {
	Kind  Kind
	cause error
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func RateLimited(cause error) *Error { return newError(KindRateLimited, cause) }

func Timeout(cause error) *Error { return newError(KindTimeout, cause) }

func Malformed(cause error) *Error { return newError(KindMalformed, cause) }

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("scoring service: %s", e.Kind)
	}
	return fmt.Sprintf("scoring service: %s: %v", e.Kind, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}
