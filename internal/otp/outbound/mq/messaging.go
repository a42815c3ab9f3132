package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/otpbite/internal/otp/usecase"
	"github.com/shandysiswandi/otpbite/internal/pkg/instrument"
	"github.com/shandysiswandi/otpbite/internal/pkg/messaging"
	"github.com/shandysiswandi/otpbite/internal/pkg/uid"
	"github.com/shandysiswandi/otpbite/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const (
	keyOfCorrelationID string = "cID"
	keyOfEventType     string = "type"
)

type Messaging struct {
	client messaging.Publisher
	topic  string
	uuid   uid.StringID
	ins    instrument.Instrumentation
}

// NewMessaging publishes to topic, falling back to event.OTPLifecycleDestination.
func NewMessaging(client messaging.Publisher, topic string, uuid uid.StringID, ins instrument.Instrumentation) *Messaging {
	if topic == "" {
		topic = event.OTPLifecycleDestination
	}
	return &Messaging{client: client, topic: topic, uuid: uuid, ins: ins}
}

// PublishLifecycle keys messages by recipient so per-recipient order holds on
// brokers that partition or order by key.
func (m *Messaging) PublishLifecycle(ctx context.Context, ev usecase.LifecycleEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishLifecycle")
	defer span.End()

	span.SetAttributes(attribute.String("otp.event", string(ev.Type)))

	body, err := json.Marshal(event.OTPLifecycleMessage{
		ID:         m.uuid.Generate(),
		Type:       ev.Type,
		Email:      ev.Email,
		MessageID:  ev.MessageID,
		Attempts:   ev.Attempts,
		OccurredAt: ev.At.UnixMilli(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	headers := map[string]string{
		keyOfCorrelationID: instrument.GetCorrelationID(ctx),
		keyOfEventType:     string(ev.Type),
	}
	instrument.Propagator().Inject(ctx, propagation.MapCarrier(headers))

	if _, err := m.client.Publish(ctx, m.topic, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(ev.Email),
		Headers: headers,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
