package event

const OTPLifecycleDestination string = "otp_lifecycle"

// OTPLifecycleType names the transition an OTP record went through.
type OTPLifecycleType string

const (
	OTPRequested      OTPLifecycleType = "otp.requested"
	OTPDeliveryFailed OTPLifecycleType = "otp.delivery_failed"
	OTPVerified       OTPLifecycleType = "otp.verified"
	OTPExpired        OTPLifecycleType = "otp.expired"
	OTPExhausted      OTPLifecycleType = "otp.exhausted"
	OTPRateLimited    OTPLifecycleType = "otp.rate_limited"
)

// OTPLifecycleMessage never carries the code itself.
type OTPLifecycleMessage struct {
	ID         string           `json:"id"`
	Type       OTPLifecycleType `json:"type"`
	Email      string           `json:"email"`
	MessageID  string           `json:"message_id,omitempty"`
	Attempts   int64            `json:"attempts,omitempty"`
	OccurredAt int64            `json:"occurred_at"`
}
