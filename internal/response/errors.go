package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Simulation ────────────────────────────────────────────────────
	ErrScenarioNotFound     ErrCode = "SCENARIO_NOT_FOUND"
	ErrSessionActive        ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionNotFound      ErrCode = "SESSION_NOT_FOUND"
	ErrNotificationNotFound ErrCode = "NOTIFICATION_NOT_FOUND"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Simulation ────────────────────────────────────────────────────
	case ErrScenarioNotFound:
		return "The requested scenario does not exist."
	case ErrSessionActive:
		return "You already have an active simulation. Complete it before starting another."
	case ErrSessionNotFound:
		return "No active simulation was found for this student."
	case ErrNotificationNotFound:
		return "Notification not found."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
