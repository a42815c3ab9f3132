package inbound

import (
	"github.com/shandysiswandi/otpbite/internal/notification/usecase"
	"github.com/shandysiswandi/otpbite/internal/pkg/router"
)

// HTTPEndpoint exposes transactional email delivery.
type HTTPEndpoint struct {
	uc uc
}

// SendEmail delivers a plain text email through the configured provider.
// @Summary Send transactional email
// @Description Sends the message once. Supplying an Idempotency-Key makes repeats of the same key fail with 409 instead of sending again.
// @Tags Notification
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client generated key"
// @Param request body SendEmailRequest true "Message"
// @Success 200 {object} SendEmailResponse "Accepted by the provider"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Idempotency-Key already used"
// @Failure 500 {object} router.errorResponse "Failed to send email"
// @Router /api/send-email [post]
func (h *HTTPEndpoint) SendEmail(r *router.Request) (any, error) {
	var req SendEmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SendEmail(r.Context(), usecase.SendEmailInput{
		To:             req.To,
		Subject:        req.Subject,
		Text:           req.Text,
		IdempotencyKey: r.GetHeader(headerIdempotencyKey),
	})
	if err != nil {
		return nil, err
	}

	return SendEmailResponse{MessageID: resp.MessageID}, nil
}
