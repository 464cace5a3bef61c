package analysis

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a pipeline failure. The HTTP boundary maps each kind to a
// stable status and user-facing message.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindPotentialPII       Kind = "potential_pii"
	KindTooManyRequests    Kind = "too_many_requests"
	KindConfiguration      Kind = "configuration_error"
	KindInvalidCredential  Kind = "invalid_credential"
	KindEmptyResponse      Kind = "empty_response"
	KindUpstream           Kind = "upstream_error"
	KindMalformedResponse  Kind = "malformed_response"
	KindIncompleteAnalysis Kind = "incomplete_analysis"
)

// User-facing messages for kinds whose wording never depends on the input.
const (
	MsgTooManyRequests    = "The lab is experiencing high traffic. Please wait a moment and try again."
	MsgConfiguration      = "Server configuration error."
	MsgInvalidCredential  = "The API key configured on the server is invalid."
	MsgEmptyResponse      = "Received an empty response from the analysis service. Please try again."
	MsgUpstream           = "An error occurred while communicating with the AI analysis service."
	MsgMalformedResponse  = "The analysis service returned an unexpected response format. Please try again."
	MsgIncompleteAnalysis = "Received incomplete analysis from the analysis service. Critical sections like formulations or metrics are missing."
)

// Error is a classified pipeline failure. Message is safe to show callers; Err
// holds internal detail for logs only.
type Error struct {
	Kind       Kind
	Message    string
	Label      string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a classified error, or "" for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func invalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// InvalidInput builds a caller-fixable input error.
func InvalidInput(msg string, cause error) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg, Err: cause}
}

// TooManyRequests builds a rate-limit rejection.
func TooManyRequests(retryAfter time.Duration) *Error {
	return &Error{Kind: KindTooManyRequests, Message: MsgTooManyRequests, RetryAfter: retryAfter}
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}
