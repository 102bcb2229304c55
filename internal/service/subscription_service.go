package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pos-billing-be/internal/dto"
	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/repository/specification"
	"pos-billing-be/internal/repository/unitofwork"
	"pos-billing-be/pkg/events"
	pktNats "pos-billing-be/pkg/nats"

	"github.com/google/uuid"
)

type ISubscriptionService interface {
	CreateSubscription(ctx context.Context, storeId uuid.UUID, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	UpgradeSubscription(ctx context.Context, storeId uuid.UUID, req *dto.ChangePlanRequest) (*dto.SubscriptionResponse, error)
	DowngradeSubscription(ctx context.Context, storeId uuid.UUID, req *dto.ChangePlanRequest) (*dto.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, storeId uuid.UUID, req *dto.CancelSubscriptionRequest) error
	GetSubscriptionStatus(ctx context.Context, storeId uuid.UUID) (*dto.SubscriptionResponse, error)

	// RenewSubscription advances the billing period. Called when a renewal or
	// retry invoice settles, never by a timer.
	RenewSubscription(ctx context.Context, subscriptionId uuid.UUID) error

	// SweepExpiredSubscriptions persists the expired status for subscriptions
	// whose period has lapsed, so reads that bypass the API stay consistent.
	SweepExpiredSubscriptions(ctx context.Context) (int, error)
}

type subscriptionService struct {
	uowFactory     unitofwork.RepositoryFactory
	planService    IPlanService
	invoiceService IInvoiceService
	eventPublisher *pktNats.Publisher
	trialDays      int
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	planService IPlanService,
	invoiceService IInvoiceService,
	eventPublisher *pktNats.Publisher,
	trialDays int,
) ISubscriptionService {
	return &subscriptionService{
		uowFactory:     uowFactory,
		planService:    planService,
		invoiceService: invoiceService,
		eventPublisher: eventPublisher,
		trialDays:      trialDays,
	}
}

// findCurrentSubscription returns the store's newest subscription with its
// effective status. A lapsed period is flipped to expired in storage here,
// on the read boundary, rather than by a scheduler.
func findCurrentSubscription(ctx context.Context, uow unitofwork.UnitOfWork, storeId uuid.UUID, now time.Time) (*entity.Subscription, error) {
	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.StoreOwnedBy{StoreID: storeId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}

	derived := entity.DeriveStatus(sub, now)
	if derived != sub.Status {
		sub.Status = derived
		sub.UpdatedAt = now
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// seedUsageRows creates one counter row per trackable feature type. Only the
// transactions row carries an annual quota; the rest are checked against
// live table counts and keep their counter for reporting.
func seedUsageRows(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, plan *entity.Plan, now time.Time) error {
	for _, ft := range entity.TrackableFeatureTypes {
		usage := &entity.SubscriptionUsage{
			Id:             uuid.New(),
			SubscriptionId: sub.Id,
			FeatureType:    ft,
			CurrentUsage:   0,
			YearStart:      now,
			YearEnd:        now.AddDate(1, 0, 0),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if ft == entity.FeatureTypeTransactions {
			usage.AnnualQuota = plan.TransactionQuota()
		}
		if err := uow.UsageRepository().Create(ctx, usage); err != nil {
			return err
		}
	}
	return nil
}

// rolloverUsageRows resets counters whose tracking year has lapsed and
// clears a served soft cap so the new year starts clean.
func rolloverUsageRows(ctx context.Context, uow unitofwork.UnitOfWork, subscriptionId uuid.UUID, now time.Time) error {
	rows, err := uow.UsageRepository().FindAll(ctx, specification.BySubscription{SubscriptionID: subscriptionId})
	if err != nil {
		return err
	}
	for _, row := range rows {
		if now.Before(row.YearEnd) {
			continue
		}
		row.CurrentUsage = 0
		row.YearStart = row.YearEnd
		row.YearEnd = row.YearEnd.AddDate(1, 0, 0)
		row.SoftCapTriggered = false
		row.SoftCapTriggeredAt = nil
		row.UpdatedAt = now
		if err := uow.UsageRepository().Update(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// applyRenewal advances ends_at by one cycle from its current value, so a
// late payment never shifts the anchor date. A scheduled downgrade that has
// come due is applied before the new period starts. A subscription the owner
// cancelled at period end is closed out instead of renewed.
func applyRenewal(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, now time.Time) (renewed bool, err error) {
	if sub.Metadata.CancelledAt != nil {
		sub.Status = entity.SubscriptionStatusCancelled
		sub.UpdatedAt = now
		return false, uow.SubscriptionRepository().Update(ctx, sub)
	}

	if sd := sub.Metadata.ScheduledDowngrade; sd != nil && !now.Before(sd.EffectiveAt) {
		newPlan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: sd.PlanId})
		if err != nil {
			return false, err
		}
		if newPlan == nil {
			return false, fmt.Errorf("scheduled downgrade plan %s no longer exists", sd.PlanId)
		}
		sub.PlanId = newPlan.Id
		sub.Amount = newPlan.PriceFor(sub.BillingCycle)
		sub.Metadata.ScheduledDowngrade = nil

		if err := retargetTransactionQuota(ctx, uow, sub.Id, newPlan, now); err != nil {
			return false, err
		}
	}

	sub.Status = entity.SubscriptionStatusActive
	sub.EndsAt = sub.CycleDuration(sub.EndsAt)
	sub.TrialEndsAt = nil
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return false, err
	}

	if err := rolloverUsageRows(ctx, uow, sub.Id, now); err != nil {
		return false, err
	}
	return true, nil
}

// retargetTransactionQuota points the transactions counter at a new plan's
// quota. Usage carries over; only the ceiling moves. A soft cap is cleared
// when the new ceiling sits above current usage.
func retargetTransactionQuota(ctx context.Context, uow unitofwork.UnitOfWork, subscriptionId uuid.UUID, plan *entity.Plan, now time.Time) error {
	row, err := uow.UsageRepository().FindOne(ctx,
		specification.BySubscription{SubscriptionID: subscriptionId},
		specification.ByFeatureType{FeatureType: string(entity.FeatureTypeTransactions)},
	)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}
	row.AnnualQuota = plan.TransactionQuota()
	if row.SoftCapTriggered && !row.QuotaExceeded() {
		row.SoftCapTriggered = false
		row.SoftCapTriggeredAt = nil
	}
	row.UpdatedAt = now
	return uow.UsageRepository().Update(ctx, row)
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, storeId uuid.UUID, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	plan, err := s.planService.GetPlan(ctx, req.PlanId)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, errors.New("plan is not open for subscription")
	}

	now := time.Now()
	cycle := entity.BillingCycle(req.BillingCycle)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// One active subscription per store. A previous one is closed out, not
	// stacked.
	existing, err := findCurrentSubscription(ctx, uow, storeId, now)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == entity.SubscriptionStatusActive {
		existing.Status = entity.SubscriptionStatusCancelled
		existing.Metadata.CancelledAt = &now
		existing.UpdatedAt = now
		if err := uow.SubscriptionRepository().Update(ctx, existing); err != nil {
			return nil, err
		}
	}

	sub := &entity.Subscription{
		Id:           uuid.New(),
		StoreId:      storeId,
		PlanId:       plan.Id,
		Status:       entity.SubscriptionStatusActive,
		BillingCycle: cycle,
		Amount:       plan.PriceFor(cycle),
		StartsAt:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.TrialDays > 0 {
		trialEnd := now.AddDate(0, 0, req.TrialDays)
		sub.TrialEndsAt = &trialEnd
		sub.EndsAt = trialEnd
	} else {
		sub.EndsAt = sub.CycleDuration(now)
	}

	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := seedUsageRows(ctx, uow, sub, plan, now); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Paid subscriptions start with an invoice; trials get theirs at conversion.
	if req.TrialDays == 0 {
		if _, err := s.invoiceService.CreateInitialInvoice(ctx, sub, plan); err != nil {
			return nil, fmt.Errorf("subscription created but initial invoice failed: %w", err)
		}
	}

	s.publish(ctx, events.SubscriptionCreated, map[string]interface{}{
		"subscription_id": sub.Id,
		"store_id":        storeId,
		"plan_id":         plan.Id,
		"plan_name":       plan.Name,
		"billing_cycle":   string(cycle),
		"amount":          sub.Amount,
		"is_trial":        req.TrialDays > 0,
	})

	return toSubscriptionResponse(sub, plan), nil
}

func (s *subscriptionService) UpgradeSubscription(ctx context.Context, storeId uuid.UUID, req *dto.ChangePlanRequest) (*dto.SubscriptionResponse, error) {
	newPlan, err := s.planService.GetPlan(ctx, req.NewPlanId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	sub, err := findCurrentSubscription(ctx, uow, storeId, now)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.Status != entity.SubscriptionStatusActive {
		return nil, errors.New("no active subscription to upgrade")
	}
	if sub.PlanId == newPlan.Id {
		return nil, errors.New("store is already on this plan")
	}

	oldPlan, err := s.planService.GetPlan(ctx, sub.PlanId)
	if err != nil {
		return nil, err
	}
	if newPlan.PriceFor(sub.BillingCycle) <= oldPlan.PriceFor(sub.BillingCycle) {
		return nil, errors.New("target plan is not an upgrade, use downgrade instead")
	}

	oldPlanId := sub.PlanId
	sub.PlanId = newPlan.Id
	sub.Amount = newPlan.PriceFor(sub.BillingCycle)
	sub.Metadata.UpgradedFrom = &oldPlanId
	sub.Metadata.ScheduledDowngrade = nil
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}

	// Limits take effect immediately, including the transaction ceiling.
	if err := retargetTransactionQuota(ctx, uow, sub.Id, newPlan, now); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if _, err := s.invoiceService.CreateUpgradeInvoice(ctx, sub, oldPlan, newPlan); err != nil {
		return nil, fmt.Errorf("plan upgraded but invoice failed: %w", err)
	}

	return toSubscriptionResponse(sub, newPlan), nil
}

func (s *subscriptionService) DowngradeSubscription(ctx context.Context, storeId uuid.UUID, req *dto.ChangePlanRequest) (*dto.SubscriptionResponse, error) {
	newPlan, err := s.planService.GetPlan(ctx, req.NewPlanId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := findCurrentSubscription(ctx, uow, storeId, now)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.Status != entity.SubscriptionStatusActive {
		return nil, errors.New("no active subscription to downgrade")
	}

	oldPlan, err := s.planService.GetPlan(ctx, sub.PlanId)
	if err != nil {
		return nil, err
	}
	if newPlan.PriceFor(sub.BillingCycle) >= oldPlan.PriceFor(sub.BillingCycle) {
		return nil, errors.New("target plan is not a downgrade, use upgrade instead")
	}

	// A downgrade must not strand existing data above the new ceilings.
	if err := s.validateDowngradeFits(ctx, uow, sub, newPlan); err != nil {
		return nil, err
	}

	sub.Metadata.ScheduledDowngrade = &entity.ScheduledDowngrade{
		PlanId:      newPlan.Id,
		EffectiveAt: sub.EndsAt,
	}
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}

	return toSubscriptionResponse(sub, oldPlan), nil
}

func (s *subscriptionService) validateDowngradeFits(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, newPlan *entity.Plan) error {
	checks := []struct {
		ft    entity.FeatureType
		count func(context.Context, uuid.UUID) (int64, error)
	}{
		{entity.FeatureTypeProducts, uow.StoreRepository().CountProducts},
		{entity.FeatureTypeUsers, uow.StoreRepository().CountUsers},
		{entity.FeatureTypeOutlets, uow.StoreRepository().CountOutlets},
	}

	var violations []string
	for _, check := range checks {
		limit := newPlan.LimitFor(check.ft)
		if limit == nil {
			continue
		}
		current, err := check.count(ctx, sub.StoreId)
		if err != nil {
			return err
		}
		if current > *limit {
			violations = append(violations,
				fmt.Sprintf("%s in use: %d, %s allows %d", check.ft, current, newPlan.Name, *limit))
		}
	}

	if len(violations) > 0 {
		msg := "cannot downgrade: "
		for i, v := range violations {
			if i > 0 {
				msg += "; "
			}
			msg += v
		}
		return errors.New(msg)
	}
	return nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, storeId uuid.UUID, req *dto.CancelSubscriptionRequest) error {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := findCurrentSubscription(ctx, uow, storeId, now)
	if err != nil {
		return err
	}
	if sub == nil || sub.Status != entity.SubscriptionStatusActive {
		return errors.New("no active subscription to cancel")
	}

	sub.Metadata.CancelledAt = &now
	if req.Immediate {
		sub.Status = entity.SubscriptionStatusCancelled
	}
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	s.publish(ctx, events.SubscriptionCancelled, map[string]interface{}{
		"subscription_id": sub.Id,
		"store_id":        storeId,
		"immediate":       req.Immediate,
		"ends_at":         sub.EndsAt,
	})
	return nil
}

func (s *subscriptionService) GetSubscriptionStatus(ctx context.Context, storeId uuid.UUID) (*dto.SubscriptionResponse, error) {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := findCurrentSubscription(ctx, uow, storeId, now)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errors.New("store has no subscription")
	}

	plan, err := s.planService.GetPlan(ctx, sub.PlanId)
	if err != nil {
		return nil, err
	}
	return toSubscriptionResponse(sub, plan), nil
}

func (s *subscriptionService) RenewSubscription(ctx context.Context, subscriptionId uuid.UUID) error {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByID{ID: subscriptionId},
		specification.ForUpdate{},
	)
	if err != nil {
		return err
	}
	if sub == nil {
		return errors.New("subscription not found")
	}

	renewed, err := applyRenewal(ctx, uow, sub, now)
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if renewed {
		s.publish(ctx, events.SubscriptionRenewed, map[string]interface{}{
			"subscription_id": sub.Id,
			"store_id":        sub.StoreId,
			"plan_id":         sub.PlanId,
			"ends_at":         sub.EndsAt,
		})
	}
	return nil
}

func (s *subscriptionService) SweepExpiredSubscriptions(ctx context.Context) (int, error) {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subs, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.SubscriptionStatusActive)},
		specification.EndsBefore{Time: now},
	)
	if err != nil {
		return 0, err
	}

	flipped := 0
	for _, sub := range subs {
		sub.Status = entity.DeriveStatus(sub, now)
		if sub.Status == entity.SubscriptionStatusActive {
			continue
		}
		sub.UpdatedAt = now
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			return flipped, err
		}
		flipped++
	}
	return flipped, nil
}

func (s *subscriptionService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewBaseEvent(eventType, data)); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}

func toSubscriptionResponse(sub *entity.Subscription, plan *entity.Plan) *dto.SubscriptionResponse {
	res := &dto.SubscriptionResponse{
		Id:           sub.Id,
		StoreId:      sub.StoreId,
		PlanId:       sub.PlanId,
		Status:       string(sub.Status),
		BillingCycle: string(sub.BillingCycle),
		Amount:       sub.Amount,
		StartsAt:     sub.StartsAt,
		EndsAt:       sub.EndsAt,
		TrialEndsAt:  sub.TrialEndsAt,
		IsTrial:      sub.IsTrial(time.Now()),
	}
	if plan != nil {
		res.PlanName = plan.Name
	}
	return res
}
