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

func newSubscriptionService(f *fakeStore) (ISubscriptionService, IInvoiceService) {
	invSvc := NewInvoiceService(f, &fakeSequencer{}, nil, nil, 7, 3)
	subSvc := NewSubscriptionService(f, NewPlanService(f), invSvc, nil, 14)
	return subSvc, invSvc
}

func TestCreateSubscription_Paid(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	svc, _ := newSubscriptionService(f)
	storeId := uuid.New()

	res, err := svc.CreateSubscription(context.Background(), storeId, &dto.CreateSubscriptionRequest{
		PlanId:       basic.Id,
		BillingCycle: "monthly",
	})
	assert.NoError(t, err)
	assert.Equal(t, "active", res.Status)
	assert.Equal(t, int64(99000), res.Amount)
	assert.False(t, res.IsTrial)

	// One counter row per trackable feature type, quota only on transactions.
	assert.Len(t, f.usage, 4)
	for _, row := range f.usage {
		if row.FeatureType == entity.FeatureTypeTransactions {
			assert.Equal(t, int64(12000), *row.AnnualQuota)
		} else {
			assert.Nil(t, row.AnnualQuota)
		}
	}

	// Paid subscriptions start with an initial invoice, VAT included.
	if assert.Len(t, f.invoices, 1) {
		inv := f.invoices[0]
		assert.Equal(t, entity.InvoiceStatusPending, inv.Status)
		assert.Equal(t, entity.InvoiceTypeInitial, inv.Metadata.Type)
		assert.Equal(t, int64(99000), inv.Amount)
		assert.Equal(t, int64(10890), inv.TaxAmount)
		assert.Equal(t, int64(109890), inv.TotalAmount)
	}
}

func TestCreateSubscription_Trial(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	svc, _ := newSubscriptionService(f)

	res, err := svc.CreateSubscription(context.Background(), uuid.New(), &dto.CreateSubscriptionRequest{
		PlanId:       basic.Id,
		BillingCycle: "monthly",
		TrialDays:    14,
	})
	assert.NoError(t, err)
	assert.True(t, res.IsTrial)
	if assert.NotNil(t, res.TrialEndsAt) {
		assert.Equal(t, *res.TrialEndsAt, res.EndsAt)
	}

	// Trials are not billed up front.
	assert.Empty(t, f.invoices)
}

func TestCreateSubscription_ReplacesActive(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	growth := seedGrowthPlan(f)
	svc, _ := newSubscriptionService(f)
	storeId := uuid.New()
	ctx := context.Background()

	first, err := svc.CreateSubscription(ctx, storeId, &dto.CreateSubscriptionRequest{
		PlanId: basic.Id, BillingCycle: "monthly",
	})
	assert.NoError(t, err)

	second, err := svc.CreateSubscription(ctx, storeId, &dto.CreateSubscriptionRequest{
		PlanId: growth.Id, BillingCycle: "monthly",
	})
	assert.NoError(t, err)

	// The previous subscription is closed out, never stacked.
	old := subById(f, first.Id)
	assert.Equal(t, entity.SubscriptionStatusCancelled, old.Status)
	assert.NotNil(t, old.Metadata.CancelledAt)
	assert.Equal(t, entity.SubscriptionStatusActive, subById(f, second.Id).Status)
}

func TestUpgradeSubscription(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	growth := seedGrowthPlan(f)
	svc, _ := newSubscriptionService(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, basic, time.Now())

	res, err := svc.UpgradeSubscription(context.Background(), storeId, &dto.ChangePlanRequest{NewPlanId: growth.Id})
	assert.NoError(t, err)
	assert.Equal(t, growth.Id, res.PlanId)
	assert.Equal(t, int64(299000), res.Amount)

	persisted := subById(f, sub.Id)
	assert.Equal(t, growth.Id, persisted.PlanId)
	if assert.NotNil(t, persisted.Metadata.UpgradedFrom) {
		assert.Equal(t, basic.Id, *persisted.Metadata.UpgradedFrom)
	}

	// The transaction ceiling moves immediately.
	row := usageRow(f, sub.Id, entity.FeatureTypeTransactions)
	assert.Equal(t, int64(120000), *row.AnnualQuota)

	// Billed as the plain price difference for the cycle.
	if assert.Len(t, f.invoices, 1) {
		inv := f.invoices[0]
		assert.Equal(t, entity.InvoiceTypeUpgrade, inv.Metadata.Type)
		assert.Equal(t, int64(200000), inv.Amount)
		assert.Equal(t, int64(22000), inv.TaxAmount)
		assert.Equal(t, int64(222000), inv.TotalAmount)
	}
}

func TestUpgradeSubscription_RejectsCheaperPlan(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	growth := seedGrowthPlan(f)
	svc, _ := newSubscriptionService(f)
	storeId := uuid.New()
	seedSubscription(f, storeId, growth, time.Now())

	_, err := svc.UpgradeSubscription(context.Background(), storeId, &dto.ChangePlanRequest{NewPlanId: basic.Id})
	assert.Error(t, err)
	assert.Empty(t, f.invoices)
}

func TestDowngradeSubscription_SchedulesAtPeriodEnd(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	growth := seedGrowthPlan(f)
	svc, _ := newSubscriptionService(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, growth, time.Now())

	f.productCounts[storeId] = 10
	f.userCounts[storeId] = 2
	f.outletCounts[storeId] = 1

	res, err := svc.DowngradeSubscription(context.Background(), storeId, &dto.ChangePlanRequest{NewPlanId: basic.Id})
	assert.NoError(t, err)

	// Nothing changes until renewal, the downgrade is only recorded.
	assert.Equal(t, growth.Id, res.PlanId)
	persisted := subById(f, sub.Id)
	assert.Equal(t, growth.Id, persisted.PlanId)
	assert.Equal(t, int64(299000), persisted.Amount)
	if assert.NotNil(t, persisted.Metadata.ScheduledDowngrade) {
		assert.Equal(t, basic.Id, persisted.Metadata.ScheduledDowngrade.PlanId)
		assert.Equal(t, persisted.EndsAt, persisted.Metadata.ScheduledDowngrade.EffectiveAt)
	}
}

func TestDowngradeSubscription_BlockedByUsage(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	growth := seedGrowthPlan(f)
	svc, _ := newSubscriptionService(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, growth, time.Now())

	f.productCounts[storeId] = 30
	f.userCounts[storeId] = 2

	_, err := svc.DowngradeSubscription(context.Background(), storeId, &dto.ChangePlanRequest{NewPlanId: basic.Id})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "cannot downgrade")
		assert.Contains(t, err.Error(), "products in use: 30")
	}
	assert.Nil(t, subById(f, sub.Id).Metadata.ScheduledDowngrade)
}

func TestCancelSubscription(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	svc, _ := newSubscriptionService(f)
	ctx := context.Background()

	// Immediate cancellation cuts access now.
	storeA := uuid.New()
	subA := seedSubscription(f, storeA, basic, time.Now())
	err := svc.CancelSubscription(ctx, storeA, &dto.CancelSubscriptionRequest{Immediate: true})
	assert.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusCancelled, subById(f, subA.Id).Status)

	// Cancellation at period end keeps the subscription running.
	storeB := uuid.New()
	subB := seedSubscription(f, storeB, basic, time.Now())
	err = svc.CancelSubscription(ctx, storeB, &dto.CancelSubscriptionRequest{})
	assert.NoError(t, err)
	persisted := subById(f, subB.Id)
	assert.Equal(t, entity.SubscriptionStatusActive, persisted.Status)
	assert.NotNil(t, persisted.Metadata.CancelledAt)
}

func TestRenewSubscription_AdvancesFromCurrentEnd(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	svc, _ := newSubscriptionService(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, basic, time.Now())
	anchor := subById(f, sub.Id).EndsAt

	err := svc.RenewSubscription(context.Background(), sub.Id)
	assert.NoError(t, err)

	// The new period is anchored on the previous end date, not on when the
	// payment happened to land.
	persisted := subById(f, sub.Id)
	assert.Equal(t, anchor.AddDate(0, 1, 0), persisted.EndsAt)
	assert.Equal(t, entity.SubscriptionStatusActive, persisted.Status)
}

func TestRenewSubscription_AppliesScheduledDowngrade(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	growth := seedGrowthPlan(f)
	svc, _ := newSubscriptionService(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, growth, time.Now())

	stored := subById(f, sub.Id)
	stored.Metadata.ScheduledDowngrade = &entity.ScheduledDowngrade{
		PlanId:      basic.Id,
		EffectiveAt: time.Now().Add(-time.Hour),
	}
	usageRow(f, sub.Id, entity.FeatureTypeTransactions).CurrentUsage = 100

	err := svc.RenewSubscription(context.Background(), sub.Id)
	assert.NoError(t, err)

	persisted := subById(f, sub.Id)
	assert.Equal(t, basic.Id, persisted.PlanId)
	assert.Equal(t, int64(99000), persisted.Amount)
	assert.Nil(t, persisted.Metadata.ScheduledDowngrade)

	// The counter keeps its usage, only the ceiling moves.
	row := usageRow(f, sub.Id, entity.FeatureTypeTransactions)
	assert.Equal(t, int64(100), row.CurrentUsage)
	assert.Equal(t, int64(12000), *row.AnnualQuota)
}

func TestRenewSubscription_ClosesOutCancelled(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	svc, _ := newSubscriptionService(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, basic, time.Now())

	now := time.Now()
	stored := subById(f, sub.Id)
	stored.Metadata.CancelledAt = &now
	anchor := stored.EndsAt

	err := svc.RenewSubscription(context.Background(), sub.Id)
	assert.NoError(t, err)

	persisted := subById(f, sub.Id)
	assert.Equal(t, entity.SubscriptionStatusCancelled, persisted.Status)
	assert.Equal(t, anchor, persisted.EndsAt)
}

func TestSweepExpiredSubscriptions(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	svc, _ := newSubscriptionService(f)

	lapsed := seedSubscription(f, uuid.New(), basic, time.Now().AddDate(0, -2, 0))
	running := seedSubscription(f, uuid.New(), basic, time.Now())

	flipped, err := svc.SweepExpiredSubscriptions(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, flipped)
	assert.Equal(t, entity.SubscriptionStatusExpired, subById(f, lapsed.Id).Status)
	assert.Equal(t, entity.SubscriptionStatusActive, subById(f, running.Id).Status)
}
