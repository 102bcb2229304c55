package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSubscriptionRequest struct {
	PlanId       uuid.UUID `json:"plan_id" validate:"required"`
	BillingCycle string    `json:"billing_cycle" validate:"required,oneof=monthly annual"`
	TrialDays    int       `json:"trial_days" validate:"omitempty,min=0,max=90"`
}

type ChangePlanRequest struct {
	NewPlanId uuid.UUID `json:"new_plan_id" validate:"required"`
}

type CancelSubscriptionRequest struct {
	Immediate bool `json:"immediate"`
}

type SubscriptionResponse struct {
	Id           uuid.UUID  `json:"id"`
	StoreId      uuid.UUID  `json:"store_id"`
	PlanId       uuid.UUID  `json:"plan_id"`
	PlanName     string     `json:"plan_name,omitempty"`
	Status       string     `json:"status"`
	BillingCycle string     `json:"billing_cycle"`
	Amount       int64      `json:"amount"`
	StartsAt     time.Time  `json:"starts_at"`
	EndsAt       time.Time  `json:"ends_at"`
	TrialEndsAt  *time.Time `json:"trial_ends_at,omitempty"`
	IsTrial      bool       `json:"is_trial"`
}

type PlanResponse struct {
	Id           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	Description  string            `json:"description,omitempty"`
	MonthlyPrice int64             `json:"monthly_price"`
	AnnualPrice  int64             `json:"annual_price"`
	Features     []string          `json:"features"`
	Limits       map[string]*int64 `json:"limits"`
	SortOrder    int               `json:"sort_order"`
}
