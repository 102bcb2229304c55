package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	Id                   uuid.UUID
	InvoiceId            uuid.UUID
	Gateway              string
	GatewayTransactionId string
	Status               PaymentStatus
	Amount               int64
	PaymentMethod        string
	ProcessedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
