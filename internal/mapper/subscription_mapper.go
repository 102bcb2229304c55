package mapper

import (
	"encoding/json"

	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}

	var meta entity.SubscriptionMetadata
	if len(s.Metadata) > 0 {
		_ = json.Unmarshal(s.Metadata, &meta)
	}

	return &entity.Subscription{
		Id:           s.Id,
		StoreId:      s.StoreId,
		PlanId:       s.PlanId,
		Status:       entity.SubscriptionStatus(s.Status),
		BillingCycle: entity.BillingCycle(s.BillingCycle),
		Amount:       s.Amount,
		StartsAt:     s.StartsAt,
		EndsAt:       s.EndsAt,
		TrialEndsAt:  s.TrialEndsAt,
		Metadata:     meta,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}

	meta, _ := json.Marshal(s.Metadata)

	return &model.Subscription{
		Id:           s.Id,
		StoreId:      s.StoreId,
		PlanId:       s.PlanId,
		Status:       string(s.Status),
		BillingCycle: string(s.BillingCycle),
		Amount:       s.Amount,
		StartsAt:     s.StartsAt,
		EndsAt:       s.EndsAt,
		TrialEndsAt:  s.TrialEndsAt,
		Metadata:     datatypes.JSON(meta),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) UsageToEntity(u *model.SubscriptionUsage) *entity.SubscriptionUsage {
	if u == nil {
		return nil
	}
	return &entity.SubscriptionUsage{
		Id:                 u.Id,
		SubscriptionId:     u.SubscriptionId,
		FeatureType:        entity.FeatureType(u.FeatureType),
		CurrentUsage:       u.CurrentUsage,
		AnnualQuota:        u.AnnualQuota,
		YearStart:          u.YearStart,
		YearEnd:            u.YearEnd,
		SoftCapTriggered:   u.SoftCapTriggered,
		SoftCapTriggeredAt: u.SoftCapTriggeredAt,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (m *SubscriptionMapper) UsageToModel(u *entity.SubscriptionUsage) *model.SubscriptionUsage {
	if u == nil {
		return nil
	}
	return &model.SubscriptionUsage{
		Id:                 u.Id,
		SubscriptionId:     u.SubscriptionId,
		FeatureType:        string(u.FeatureType),
		CurrentUsage:       u.CurrentUsage,
		AnnualQuota:        u.AnnualQuota,
		YearStart:          u.YearStart,
		YearEnd:            u.YearEnd,
		SoftCapTriggered:   u.SoftCapTriggered,
		SoftCapTriggeredAt: u.SoftCapTriggeredAt,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
