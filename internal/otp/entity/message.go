package entity

// Client facing messages.
const (
	MsgRateLimited     = "Too many requests. Please try again later."
	MsgSendFailed      = "Failed to send OTP"
	MsgNotFound        = "OTP expired or not found"
	MsgExpired         = "OTP expired"
	MsgTooManyAttempts = "Too many attempts"
	MsgInvalidCode     = "Invalid OTP"
	MsgSent            = "OTP sent successfully"
	MsgVerified        = "OTP verified successfully"
)
