package entity

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string
type InvoiceType string

const (
	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusFailed   InvoiceStatus = "failed"
	InvoiceStatusRefunded InvoiceStatus = "refunded"

	InvoiceTypeInitial InvoiceType = "initial"
	InvoiceTypeRenewal InvoiceType = "renewal"
	InvoiceTypeUpgrade InvoiceType = "upgrade"
	InvoiceTypeRetry   InvoiceType = "retry"
)

// TaxRate is Indonesian VAT (PPN). Applied integer-rounded on the pre-tax amount.
const TaxRate = 0.11

type LineItem struct {
	Id         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	UnitPrice  int64     `json:"unit_price"`
	TotalPrice int64     `json:"total_price"`
}

// InvoiceMetadata carries the invoice type plus type-specific traceability fields.
type InvoiceMetadata struct {
	Type              InvoiceType `json:"type"`
	UpgradedFrom      *uuid.UUID  `json:"upgraded_from,omitempty"`
	UpgradedTo        *uuid.UUID  `json:"upgraded_to,omitempty"`
	OriginalInvoiceId *uuid.UUID  `json:"original_invoice_id,omitempty"`
	FailedPaymentId   *uuid.UUID  `json:"failed_payment_id,omitempty"`
}

type Invoice struct {
	Id             uuid.UUID
	SubscriptionId uuid.UUID
	InvoiceNumber  string // INV-YYYYMMDD-<sequence>, unique
	Amount         int64  // pre-tax
	TaxAmount      int64
	TotalAmount    int64
	Status         InvoiceStatus
	DueDate        time.Time
	PaidAt         *time.Time
	LineItems      []LineItem
	Metadata       InvoiceMetadata
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CalculateTax returns the integer-rounded VAT for a pre-tax amount.
func CalculateTax(amount int64) int64 {
	return int64(float64(amount)*TaxRate + 0.5)
}
