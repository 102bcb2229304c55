package events

import "time"

// Billing event codes published to the message bus.
const (
	SubscriptionCreated   = "SUBSCRIPTION_CREATED"
	SubscriptionRenewed   = "SUBSCRIPTION_RENEWED"
	SubscriptionCancelled = "SUBSCRIPTION_CANCELLED"
	TrialProvisioned      = "TRIAL_PROVISIONED"
	SoftCapTriggered      = "SOFT_CAP_TRIGGERED"
	PaymentFailed         = "PAYMENT_FAILED"
	RetryInvoiceCreated   = "RETRY_INVOICE_CREATED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SOFT_CAP_TRIGGERED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the concrete event used by the billing services.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func NewBaseEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
