package entity

// Outcome labels the otp.requests and otp.verifications counters.
type Outcome string

const (
	OutcomeSent            Outcome = "sent"
	OutcomeRateLimited     Outcome = "rate_limited"
	OutcomeDeliveryFailed  Outcome = "delivery_failed"
	OutcomeVerified        Outcome = "verified"
	OutcomeNotFound        Outcome = "not_found"
	OutcomeExpired         Outcome = "expired"
	OutcomeTooManyAttempts Outcome = "too_many_attempts"
	OutcomeInvalidCode     Outcome = "invalid_code"
	OutcomeInvalidInput    Outcome = "invalid_input"
	OutcomeError           Outcome = "error"
)

func (o Outcome) String() string {
	return string(o)
}
