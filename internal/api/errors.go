package api

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Kind classifies why a request produced no document
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindTimeout
	KindRateLimited
	KindHTTPStatus
	KindInvalidResponse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindHTTPStatus:
		return "http_status"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// DefaultRetryAfter is suggested when a rate limited response carries no Retry-After header
const DefaultRetryAfter = 60 * time.Second

// Error describes a request for which no document could be produced
type Error struct {
	Kind    Kind
	Message string
	// Set for KindHTTPStatus and KindRateLimited
	StatusCode int
	// Set for KindRateLimited. Nothing retries automatically.
	RetryAfter time.Duration
	Cause      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func transportError(err error) *Error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "timeout while contacting the API", Cause: err}
	}
	return &Error{Kind: KindNetwork, Message: err.Error(), Cause: err}
}

func statusError(code int, upstreamMessage string) *Error {
	msg := fmt.Sprintf("HTTP error %d", code)
	if upstreamMessage != "" {
		msg += ": " + upstreamMessage
	}
	return &Error{Kind: KindHTTPStatus, StatusCode: code, Message: msg}
}

func rateLimitError(code int, retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimited,
		StatusCode: code,
		RetryAfter: retryAfter,
		Message:    fmt.Sprintf("API rate limit reached, retry in %ds", int(retryAfter.Round(time.Second).Seconds())),
	}
}

func invalidResponseError(err error) *Error {
	return &Error{Kind: KindInvalidResponse, Message: "invalid response from the API", Cause: err}
}
