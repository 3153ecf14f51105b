package llmerrors

import (
	"context"
	"errors"
	"strings"
)

// Classify maps an arbitrary provider error to a structured error type so the
// retry layer can pick the right policy. Already-classified errors pass
// through unchanged.
func Classify(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewErrorWithCause(ErrorTypeTransient, err, "request timeout")
	}
	if errors.Is(err, context.Canceled) {
		return NewErrorWithCause(ErrorTypeTransient, err, "request canceled")
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	if statusCode := extractStatusCode(errStr); statusCode != 0 {
		switch statusCode {
		case 401, 403:
			return NewErrorWithStatus(ErrorTypeAuth, statusCode, "authentication failed - check API key")
		case 429:
			return NewErrorWithStatus(ErrorTypeRateLimit, statusCode, "rate limit exceeded")
		case 400, 413, 422:
			return NewErrorWithStatus(ErrorTypeBadPrompt, statusCode, "bad request - check prompt format and parameters")
		case 500, 502, 503, 504:
			return NewErrorWithStatus(ErrorTypeTransient, statusCode, "server error")
		}
	}

	switch {
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "connection"),
		strings.Contains(lower, "network"),
		strings.Contains(lower, "temporary"),
		strings.Contains(errStr, "EOF"),
		strings.Contains(lower, "reset"):
		return NewErrorWithCause(ErrorTypeTransient, err, "network or connection error")
	case strings.Contains(lower, "rate"),
		strings.Contains(lower, "quota"),
		strings.Contains(lower, "overloaded"):
		return NewErrorWithCause(ErrorTypeRateLimit, err, "rate limiting detected")
	case strings.Contains(lower, "auth"),
		strings.Contains(lower, "api key"),
		strings.Contains(lower, "unauthorized"):
		return NewErrorWithCause(ErrorTypeAuth, err, "authentication error")
	case strings.Contains(lower, "invalid"),
		strings.Contains(lower, "malformed"),
		strings.Contains(lower, "too large"):
		return NewErrorWithCause(ErrorTypeBadPrompt, err, "prompt or request error")
	}

	return NewErrorWithCause(ErrorTypeUnknown, err, message)
}

// statusPatterns are the prefixes providers use before a status code in error
// strings.
//
//nolint:gochecknoglobals
var statusPatterns = []string{
	"status code: ",
	"status: ",
	"http ",
	"code ",
}

// knownStatusCodes is every code Classify distinguishes.
//
//nolint:gochecknoglobals
var knownStatusCodes = map[string]int{
	"400": 400, "401": 401, "403": 403, "413": 413, "422": 422,
	"429": 429, "500": 500, "502": 502, "503": 503, "504": 504,
}

// extractStatusCode attempts to extract an HTTP status code from an error
// string. Provider SDKs typically include the code in the message.
func extractStatusCode(errStr string) int {
	lower := strings.ToLower(errStr)
	for _, pattern := range statusPatterns {
		idx := strings.Index(lower, pattern)
		if idx == -1 {
			continue
		}
		start := idx + len(pattern)
		if start+3 > len(errStr) {
			continue
		}
		if code, ok := knownStatusCodes[errStr[start:start+3]]; ok {
			return code
		}
	}
	return 0
}
