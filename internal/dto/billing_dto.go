package dto

import (
	"github.com/google/uuid"
)

// AllowReason is the machine-readable outcome of a gate check. Denials are
// typed results, never errors.
type AllowReason string

const (
	ReasonWithinLimits              AllowReason = "within_limits"
	ReasonNoSubscription            AllowReason = "no_subscription"
	ReasonSubscriptionExpired       AllowReason = "subscription_expired"
	ReasonFeatureNotAvailable       AllowReason = "feature_not_available"
	ReasonLimitExceeded             AllowReason = "limit_exceeded"
	ReasonQuotaExceededPremiumBlock AllowReason = "quota_exceeded_premium_blocked"
)

// RequiredPlanInfo identifies the lowest plan tier carrying a denied feature.
type RequiredPlanInfo struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// AllowResult is returned by the plan limit validator. Warning is advisory
// (usage crossed 80% of the limit) and never implies denial.
type AllowResult struct {
	Allowed      bool              `json:"allowed"`
	Reason       AllowReason       `json:"reason"`
	CurrentUsage *int64            `json:"current_usage,omitempty"`
	Limit        *int64            `json:"limit,omitempty"`
	RequiredPlan *RequiredPlanInfo `json:"required_plan,omitempty"`
	Warning      bool              `json:"warning,omitempty"`
}

// UsageLimitStatus reports one feature type's standing.
type UsageLimitStatus struct {
	FeatureType  string `json:"feature_type"`
	CurrentUsage int64  `json:"current_usage"`
	Limit        *int64 `json:"limit"` // nil = unlimited
	Warning      bool   `json:"warning"`
}

// UsageStatusResponse is returned by GET /api/billing/usage
type UsageStatusResponse struct {
	PlanName   string             `json:"plan_name"`
	PlanSlug   string             `json:"plan_slug"`
	Status     string             `json:"status"`
	IsTrial    bool               `json:"is_trial"`
	Limits     []UsageLimitStatus `json:"limits"`
	QuotaUsage *UsageLimitStatus  `json:"transaction_quota,omitempty"`
	SoftCapHit bool               `json:"soft_cap_hit"`
}

// OrderCompletedRequest is the internal event input that drives the
// transactions counter. The previous/new status pair lets the endpoint
// reject anything that is not a genuine transition into completed.
type OrderCompletedRequest struct {
	OrderId        uuid.UUID `json:"order_id" validate:"required"`
	StoreId        uuid.UUID `json:"store_id" validate:"required"`
	PreviousStatus string    `json:"previous_status" validate:"required"`
	NewStatus      string    `json:"new_status" validate:"required"`
}

// IncrementResult reports what an increment did. Missing or inactive
// subscriptions skip the increment rather than failing the caller.
type IncrementResult struct {
	Applied          bool   `json:"applied"`
	SkipReason       string `json:"skip_reason,omitempty"`
	OldUsage         int64  `json:"old_usage,omitempty"`
	CurrentUsage     int64  `json:"current_usage,omitempty"`
	QuotaExceeded    bool   `json:"quota_exceeded,omitempty"`
	SoftCapTriggered bool   `json:"soft_cap_triggered,omitempty"`
}
