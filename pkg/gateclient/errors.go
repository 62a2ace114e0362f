package gateclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hwylde/gatehouse/pkg/httpx"
)

// Error codes carried in the "error" field of every failure response.
const (
	ErrorCodeMalformedRequest = "malformed_request"
	ErrorCodeInvalidCreds     = "invalid_credentials"
	ErrorCodeInvalidToken     = "invalid_token"
	ErrorCodeStepUpRequired   = "step_up_required"
	ErrorCodeStepUpInvalid    = "step_up_invalid"
	ErrorCodeRateLimited      = "rate_limited"
	ErrorCodeUnavailable      = "auth_unavailable"
	ErrorCodeServerError      = "server_error"
)

// APIError is the wire error shape shared by the server handlers and the SDK.
// The server builds one and calls WriteError; the client reconstructs it from
// a non-2xx response body so callers can branch on Code or StatusCode.
type APIError struct {
	// StatusCode is the HTTP status this error is served with.
	StatusCode int `json:"-"`

	// Code is a stable machine-readable error code.
	Code string `json:"error"`

	// Message is a human-readable description. It never echoes credentials.
	Message string `json:"message"`

	// AttemptsRemaining is set on failed credential checks so clients can
	// warn before lockout. Nil when not applicable.
	AttemptsRemaining *int `json:"attemptsRemaining,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes this error to an HTTP response writer as JSON. Lockout
// responses carry no Retry-After header: the message says "try again later"
// and nothing more precise, so a caller cannot count down the window.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// WithAttempts returns a copy of the error annotated with the number of
// attempts remaining before lockout.
func (e *APIError) WithAttempts(n int) *APIError {
	cp := *e
	cp.AttemptsRemaining = &n
	return &cp
}

// WithMessage returns a copy of the error with a replacement message.
func (e *APIError) WithMessage(msg string) *APIError {
	cp := *e
	cp.Message = msg
	return &cp
}

var (
	// ErrMalformedRequest is returned when the request body cannot be parsed
	// or a required field is missing or of the wrong type.
	ErrMalformedRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeMalformedRequest,
		Message:    "the request is malformed or missing required fields",
	}

	// ErrInvalidCredentials is returned when a presented pin, password or
	// one-time code does not match. The message is identical for every
	// credential failure so the response does not leak which part was wrong.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCreds,
		Message:    "invalid credentials",
	}

	// ErrInvalidToken is returned when a bearer token is missing, expired,
	// revoked, carries the wrong role, or fails signature verification.
	ErrInvalidToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidToken,
		Message:    "the session token is missing, invalid, expired or revoked",
	}

	// ErrStepUpRequired is returned when a destructive operation is called
	// without a step-up token. 428 tells the client to re-authenticate and
	// retry rather than give up.
	ErrStepUpRequired = &APIError{
		StatusCode: http.StatusPreconditionRequired,
		Code:       ErrorCodeStepUpRequired,
		Message:    "this operation requires recent re-authentication",
	}

	// ErrStepUpInvalid is returned when a step-up token is present but
	// expired, malformed, or bound to a different session.
	ErrStepUpInvalid = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeStepUpInvalid,
		Message:    "the step-up token is invalid or expired",
	}

	// ErrRateLimited is returned when the caller has exhausted its
	// verification attempts and must wait out the lockout window.
	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       ErrorCodeRateLimited,
		Message:    "too many failed attempts, try again later",
	}

	// ErrUnavailable is returned when the service cannot answer safely,
	// for example when the revocation store is unreachable.
	ErrUnavailable = &APIError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       ErrorCodeUnavailable,
		Message:    "authentication is temporarily unavailable",
	}

	// ErrServerError is returned for unexpected internal failures, including
	// missing server-side configuration.
	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "internal server error",
	}
)

// NewAPIError creates an APIError with a custom status, code and message.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// parseErrorResponse turns a non-2xx HTTP response into a typed *APIError.
// Returns nil for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

// decodeJSON reads the response body, returning a typed *APIError for
// unexpected statuses and decoding into target otherwise. target may be nil
// when the caller only cares about the status.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, body)
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
