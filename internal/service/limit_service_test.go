package service

import (
	"context"
	"testing"
	"time"

	"pos-billing-be/internal/dto"
	"pos-billing-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newLimitService(f *fakeStore) ILimitService {
	return NewLimitService(f, NewPlanService(f), 0.8)
}

func TestCanPerformAction_NoSubscription(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	svc := newLimitService(f)

	res, err := svc.CanPerformAction(context.Background(), uuid.New(), "products", 1)
	assert.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, dto.ReasonNoSubscription, res.Reason)
	if assert.NotNil(t, res.RequiredPlan) {
		assert.Equal(t, basic.Id, res.RequiredPlan.Id)
	}
}

func TestCanPerformAction_ExpiredSubscription(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, basic, time.Now().AddDate(0, -2, 0))
	svc := newLimitService(f)

	res, err := svc.CanPerformAction(context.Background(), storeId, "products", 1)
	assert.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, dto.ReasonSubscriptionExpired, res.Reason)

	// The lapsed period is persisted on the read boundary.
	assert.Equal(t, entity.SubscriptionStatusExpired, subById(f, sub.Id).Status)
}

func TestCanPerformAction_ProductLimit(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	growth := seedGrowthPlan(f)
	storeId := uuid.New()
	seedSubscription(f, storeId, basic, time.Now())
	svc := newLimitService(f)
	ctx := context.Background()

	// 16 of 20 products crosses the 80% warning threshold but stays allowed.
	f.productCounts[storeId] = 16
	res, err := svc.CanPerformAction(ctx, storeId, "products", 1)
	assert.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, res.Warning)
	assert.Equal(t, int64(16), *res.CurrentUsage)
	assert.Equal(t, int64(20), *res.Limit)

	// At the limit, a plain read of standing is still fine.
	f.productCounts[storeId] = 20
	res, err = svc.CanPerformAction(ctx, storeId, "products", 0)
	assert.NoError(t, err)
	assert.True(t, res.Allowed)

	// Adding the 21st product is denied and points at the next tier up.
	res, err = svc.CanPerformAction(ctx, storeId, "products", 1)
	assert.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, dto.ReasonLimitExceeded, res.Reason)
	assert.Equal(t, int64(20), *res.CurrentUsage)
	assert.Equal(t, int64(20), *res.Limit)
	if assert.NotNil(t, res.RequiredPlan) {
		assert.Equal(t, growth.Id, res.RequiredPlan.Id)
	}
}

func TestCanPerformAction_UnlimitedPlan(t *testing.T) {
	f := newFakeStore()
	enterprise := seedEnterprisePlan(f)
	storeId := uuid.New()
	seedSubscription(f, storeId, enterprise, time.Now())
	svc := newLimitService(f)

	f.productCounts[storeId] = 100000
	res, err := svc.CanPerformAction(context.Background(), storeId, "products", 1)
	assert.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.False(t, res.Warning)
	assert.Nil(t, res.Limit)
}

func TestCanPerformAction_FeatureNotAvailable(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	growth := seedGrowthPlan(f)
	storeId := uuid.New()
	seedSubscription(f, storeId, basic, time.Now())
	svc := newLimitService(f)

	res, err := svc.CanPerformAction(context.Background(), storeId, "report_export", 0)
	assert.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, dto.ReasonFeatureNotAvailable, res.Reason)
	if assert.NotNil(t, res.RequiredPlan) {
		assert.Equal(t, growth.Id, res.RequiredPlan.Id)
	}
}

func TestCanPerformAction_SoftCapBlocksPremiumOnly(t *testing.T) {
	f := newFakeStore()
	seedBasicPlan(f)
	growth := seedGrowthPlan(f)
	seedEnterprisePlan(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, growth, time.Now())

	row := usageRow(f, sub.Id, entity.FeatureTypeTransactions)
	row.CurrentUsage = 120001
	row.SoftCapTriggered = true

	svc := newLimitService(f)
	ctx := context.Background()

	// Premium features are blocked once the annual quota is served.
	res, err := svc.CanPerformAction(ctx, storeId, "report_export", 0)
	assert.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, dto.ReasonQuotaExceededPremiumBlock, res.Reason)
	assert.Equal(t, int64(120001), *res.CurrentUsage)
	assert.Equal(t, int64(120000), *res.Limit)

	// Selling keeps flowing past the quota.
	res, err = svc.CanPerformAction(ctx, storeId, "transactions", 1)
	assert.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, res.Warning)

	// So do the plain countable resources.
	f.productCounts[storeId] = 3
	res, err = svc.CanPerformAction(ctx, storeId, "products", 1)
	assert.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.False(t, res.Warning)
}

func TestGetUsageStatus(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, basic, time.Now())

	f.productCounts[storeId] = 5
	f.userCounts[storeId] = 1
	f.outletCounts[storeId] = 1
	usageRow(f, sub.Id, entity.FeatureTypeTransactions).CurrentUsage = 9600

	svc := newLimitService(f)
	res, err := svc.GetUsageStatus(context.Background(), storeId)
	assert.NoError(t, err)
	assert.Equal(t, "Basic", res.PlanName)
	assert.Equal(t, "active", res.Status)
	assert.False(t, res.SoftCapHit)
	assert.Len(t, res.Limits, 3)

	if assert.NotNil(t, res.QuotaUsage) {
		assert.Equal(t, int64(9600), res.QuotaUsage.CurrentUsage)
		assert.Equal(t, int64(12000), *res.QuotaUsage.Limit)
		assert.True(t, res.QuotaUsage.Warning)
	}

	for _, limit := range res.Limits {
		if limit.FeatureType == "products" {
			assert.Equal(t, int64(5), limit.CurrentUsage)
			assert.Equal(t, int64(20), *limit.Limit)
			assert.False(t, limit.Warning)
		}
	}
}
