package inbound

import (
	"context"

	"github.com/shandysiswandi/otpbite/internal/notification/usecase"
	"github.com/shandysiswandi/otpbite/internal/pkg/router"
)

const headerIdempotencyKey = "Idempotency-Key"

type uc interface {
	SendEmail(ctx context.Context, in usecase.SendEmailInput) (*usecase.SendEmailOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/send-email", end.SendEmail)
}
