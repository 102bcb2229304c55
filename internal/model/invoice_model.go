package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Invoice struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	InvoiceNumber  string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	Amount         int64          `gorm:"not null"`
	TaxAmount      int64          `gorm:"not null"`
	TotalAmount    int64          `gorm:"not null"`
	Status         string         `gorm:"type:varchar(50);not null;index"`
	DueDate        time.Time      `gorm:"not null"`
	PaidAt         *time.Time     ``
	LineItems      datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	Metadata       datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

func (Invoice) TableName() string {
	return "invoices"
}

type Payment struct {
	Id                   uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceId            uuid.UUID  `gorm:"type:uuid;not null;index"`
	Gateway              string     `gorm:"type:varchar(50);not null"`
	GatewayTransactionId string     `gorm:"type:varchar(255);index"`
	Status               string     `gorm:"type:varchar(50);not null;index"`
	Amount               int64      `gorm:"not null"`
	PaymentMethod        string     `gorm:"type:varchar(100)"`
	ProcessedAt          *time.Time ``
	CreatedAt            time.Time  `gorm:"autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
