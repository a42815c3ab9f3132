package inbound

import (
	"github.com/shandysiswandi/otpbite/internal/otp/usecase"
	"github.com/shandysiswandi/otpbite/internal/pkg/router"
)

// HTTPEndpoint exposes the one-time password login flow over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// RequestOTP emails a fresh one-time code to the given address.
// @Summary Request OTP
// @Description Generates a 6 digit code, stores it for 5 minutes and emails it. Limited to 5 requests per address per 5 minutes.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body RequestOTPRequest true "Recipient"
// @Success 200 {object} RequestOTPResponse "Code sent"
// @Failure 400 {object} router.errorResponse "Email is required"
// @Failure 429 {object} router.errorResponse "Too many requests. Please try again later."
// @Failure 500 {object} router.errorResponse "Failed to send OTP"
// @Router /api/request-otp [post]
func (h *HTTPEndpoint) RequestOTP(r *router.Request) (any, error) {
	var req RequestOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RequestOTP(r.Context(), usecase.RequestOTPInput{
		Email: req.Email,
	})
	if err != nil {
		return nil, err
	}

	return RequestOTPResponse{MessageID: resp.MessageID}, nil
}

// VerifyOTP checks a submitted code and consumes it on success.
// @Summary Verify OTP
// @Description Verifies the code sent to the address. Three wrong codes discard it.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Recipient and code"
// @Success 200 {object} VerifyOTPResponse "Code verified"
// @Failure 400 {object} router.errorResponse "Missing fields, expired, not found, too many attempts or invalid code"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/verify-otp [post]
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		Email: req.Email,
		OTP:   req.OTP,
	}); err != nil {
		return nil, err
	}

	return VerifyOTPResponse{}, nil
}
