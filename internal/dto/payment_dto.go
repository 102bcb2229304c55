package dto

import (
	"time"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	InvoiceId uuid.UUID `json:"invoice_id" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	FullName  string    `json:"full_name" validate:"required"`
	Phone     string    `json:"phone,omitempty"`
}

type CheckoutResponse struct {
	InvoiceId       uuid.UUID `json:"invoice_id"`
	InvoiceNumber   string    `json:"invoice_number"`
	SnapToken       string    `json:"snap_token"`
	SnapRedirectUrl string    `json:"snap_redirect_url"`
}

// MidtransWebhookRequest mirrors the gateway's HTTP notification payload.
type MidtransWebhookRequest struct {
	OrderId           string `json:"order_id"`
	TransactionId     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
}

type InvoiceResponse struct {
	Id            uuid.UUID  `json:"id"`
	InvoiceNumber string     `json:"invoice_number"`
	Amount        int64      `json:"amount"`
	TaxAmount     int64      `json:"tax_amount"`
	TotalAmount   int64      `json:"total_amount"`
	Status        string     `json:"status"`
	Type          string     `json:"type"`
	DueDate       time.Time  `json:"due_date"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// ReconcileResult summarizes one reconciliation sweep.
type ReconcileResult struct {
	Processed int      `json:"processed"`
	Updated   int      `json:"updated"`
	Errors    []string `json:"errors"`
}

// RetrySweepResult summarizes one failed-payment sweep.
type RetrySweepResult struct {
	Processed      int      `json:"processed"`
	RetriesCreated int      `json:"retries_created"`
	Errors         []string `json:"errors"`
}

type ReconciliationSummary struct {
	PendingPayments    int64      `json:"pending_payments"`
	FailedPayments7d   int64      `json:"failed_payments_7_days"`
	OverdueInvoices    int64      `json:"overdue_invoices"`
	LastReconciliation *time.Time `json:"last_reconciliation,omitempty"`
}
