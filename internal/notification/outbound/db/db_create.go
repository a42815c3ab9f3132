package db

import (
	"context"

	"github.com/shandysiswandi/otpbite/internal/notification/entity"
)

const queryCreateDeliveryLog = `
INSERT INTO email_delivery_logs
	(id, recipient, subject, provider, provider_message_id, status, error, idempotency_key, created_at)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (s *DB) CreateDeliveryLog(ctx context.Context, in entity.DeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateDeliveryLog,
		in.ID,
		in.Recipient,
		in.Subject,
		in.Provider,
		in.ProviderMessageID,
		in.Status.String(),
		in.Error,
		in.IdempotencyKey,
		in.CreatedAt,
	)
	return s.mapError(err)
}
