package apperror

const (
	// 4xx
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"     // overlapping leave period, duplicate idempotency key in flight
	CodeInvalidState = "INVALID_STATE" // status transition not allowed from the current status
	CodeTooMany      = "TOO_MANY_REQUESTS"

	// 5xx
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE" // storage unreachable after retries
)
