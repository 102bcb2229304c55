package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Subscription struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	PlanId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status       string         `gorm:"type:varchar(50);not null;index"`
	BillingCycle string         `gorm:"type:varchar(20);not null"`
	Amount       int64          `gorm:"not null"`
	StartsAt     time.Time      `gorm:"not null"`
	EndsAt       time.Time      `gorm:"not null"`
	TrialEndsAt  *time.Time     ``
	Metadata     datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

type SubscriptionUsage struct {
	Id                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_sub_feature,priority:1"`
	FeatureType        string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_sub_feature,priority:2"`
	CurrentUsage       int64      `gorm:"not null;default:0"`
	AnnualQuota        *int64     ``
	YearStart          time.Time  `gorm:"not null"`
	YearEnd            time.Time  `gorm:"not null"`
	SoftCapTriggered   bool       `gorm:"default:false"`
	SoftCapTriggeredAt *time.Time ``
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`
}

func (SubscriptionUsage) TableName() string {
	return "subscription_usages"
}
