package inbound

import "github.com/shandysiswandi/otpbite/internal/otp/entity"

type RequestOTPRequest struct {
	Email string `json:"email"`
}

type RequestOTPResponse struct {
	MessageID string `json:"messageId"`
}

func (RequestOTPResponse) Message() string {
	return entity.MsgSent
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type VerifyOTPResponse struct{}

func (VerifyOTPResponse) Message() string {
	return entity.MsgVerified
}
