package scoring

// ValidationReason classifies local, synchronous rejections. Validation
// failures never touch the network and never mutate the store.
type ValidationReason string

const (
	ReasonEventInactive  ValidationReason = "EVENT_INACTIVE"
	ReasonMissingScores  ValidationReason = "MISSING_SCORES"
	ReasonInvalidScores  ValidationReason = "INVALID_SCORES"
	ReasonSubmitInFlight ValidationReason = "SUBMIT_IN_FLIGHT"
	ReasonUnknownEvent   ValidationReason = "UNKNOWN_EVENT"
)

// ValidationError is a user-facing rejection with enough context to render
// a specific message (event name, missing counts).
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a local validation rejection as
// opposed to a recoverable gateway failure.
func IsValidation(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}
