package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// ScheduledDowngrade is a pending plan change applied by the renewal sweep.
type ScheduledDowngrade struct {
	PlanId      uuid.UUID `json:"plan_id"`
	EffectiveAt time.Time `json:"effective_at"`
}

// SubscriptionMetadata holds transient intents. Persisted as JSONB.
type SubscriptionMetadata struct {
	UpgradedFrom       *uuid.UUID          `json:"upgraded_from,omitempty"`
	ScheduledDowngrade *ScheduledDowngrade `json:"scheduled_downgrade,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
}

type Subscription struct {
	Id           uuid.UUID
	StoreId      uuid.UUID
	PlanId       uuid.UUID
	Status       SubscriptionStatus
	BillingCycle BillingCycle
	Amount       int64 // price snapshot at creation, IDR
	StartsAt     time.Time
	EndsAt       time.Time
	TrialEndsAt  *time.Time
	Metadata     SubscriptionMetadata
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTrial reports whether the subscription is inside its trial window.
func (s *Subscription) IsTrial(now time.Time) bool {
	return s.TrialEndsAt != nil && now.Before(*s.TrialEndsAt)
}

// CycleDuration advances a time by one billing cycle unit.
func (s *Subscription) CycleDuration(from time.Time) time.Time {
	if s.BillingCycle == BillingCycleAnnual {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

// DeriveStatus computes the effective status at a point in time without
// mutating anything. Expiry is detected here rather than by a scheduler;
// callers on read boundaries persist the flip when it differs.
func DeriveStatus(s *Subscription, now time.Time) SubscriptionStatus {
	if s.Status == SubscriptionStatusCancelled {
		return SubscriptionStatusCancelled
	}
	if now.After(s.EndsAt) {
		return SubscriptionStatusExpired
	}
	return s.Status
}

type SubscriptionUsage struct {
	Id                 uuid.UUID
	SubscriptionId     uuid.UUID
	FeatureType        FeatureType
	CurrentUsage       int64
	AnnualQuota        *int64 // nil = unbounded; only meaningful for transactions
	YearStart          time.Time
	YearEnd            time.Time
	SoftCapTriggered   bool
	SoftCapTriggeredAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// QuotaExceeded reports whether the counter is past its annual quota.
func (u *SubscriptionUsage) QuotaExceeded() bool {
	return u.AnnualQuota != nil && u.CurrentUsage > *u.AnnualQuota
}
