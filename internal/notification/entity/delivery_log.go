package entity

import "time"

type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

func (s DeliveryStatus) String() string {
	return string(s)
}

// DeliveryLog is one row of email_delivery_logs.
type DeliveryLog struct {
	ID                int64
	Recipient         string
	Subject           string
	Provider          string
	ProviderMessageID string
	Status            DeliveryStatus
	Error             string
	IdempotencyKey    string
	CreatedAt         time.Time
}
