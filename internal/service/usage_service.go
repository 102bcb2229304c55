package service

import (
	"context"
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

type IUsageService interface {
	// IncrementUsage adds delta to a store's counter for a feature type.
	// Stores without an active subscription get a skip, not an error, so
	// order processing never stalls on billing state.
	IncrementUsage(ctx context.Context, storeId uuid.UUID, ft entity.FeatureType, delta int64) (*dto.IncrementResult, error)

	// RolloverAnnualUsage resets counters whose tracking year has lapsed
	// across all subscriptions. Run by the sweep.
	RolloverAnnualUsage(ctx context.Context) (int, error)
}

type usageService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewUsageService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) IUsageService {
	return &usageService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (s *usageService) IncrementUsage(ctx context.Context, storeId uuid.UUID, ft entity.FeatureType, delta int64) (*dto.IncrementResult, error) {
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
	if sub == nil {
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return &dto.IncrementResult{SkipReason: "no_subscription"}, nil
	}
	if sub.Status != entity.SubscriptionStatusActive {
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return &dto.IncrementResult{SkipReason: "subscription_inactive"}, nil
	}

	// The row lock serializes the quota check against concurrent increments,
	// so the soft cap flips exactly once.
	row, err := uow.UsageRepository().FindOne(ctx,
		specification.BySubscription{SubscriptionID: sub.Id},
		specification.ByFeatureType{FeatureType: string(ft)},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, err
	}
	if row == nil {
		// Subscriptions predating a newly tracked feature type get their
		// row on first touch.
		row, err = s.createUsageRow(ctx, uow, sub, ft, now)
		if err != nil {
			return nil, err
		}
	}

	updated, err := uow.UsageRepository().AddUsage(ctx, row.Id, delta)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return &dto.IncrementResult{SkipReason: "no_usage_row"}, nil
	}

	softCapJustHit := false
	if updated.QuotaExceeded() && !row.SoftCapTriggered {
		updated.SoftCapTriggered = true
		updated.SoftCapTriggeredAt = &now
		updated.UpdatedAt = now
		if err := uow.UsageRepository().Update(ctx, updated); err != nil {
			return nil, err
		}
		softCapJustHit = true
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if softCapJustHit && s.eventPublisher != nil {
		evt := events.NewBaseEvent(events.SoftCapTriggered, map[string]interface{}{
			"subscription_id": sub.Id,
			"store_id":        storeId,
			"feature_type":    string(ft),
			"current_usage":   updated.CurrentUsage,
			"annual_quota":    updated.AnnualQuota,
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish %s event: %v\n", events.SoftCapTriggered, err)
		}
	}

	return &dto.IncrementResult{
		Applied:          true,
		OldUsage:         row.CurrentUsage,
		CurrentUsage:     updated.CurrentUsage,
		QuotaExceeded:    updated.QuotaExceeded(),
		SoftCapTriggered: updated.SoftCapTriggered,
	}, nil
}

func (s *usageService) createUsageRow(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, ft entity.FeatureType, now time.Time) (*entity.SubscriptionUsage, error) {
	row := &entity.SubscriptionUsage{
		Id:             uuid.New(),
		SubscriptionId: sub.Id,
		FeatureType:    ft,
		YearStart:      now,
		YearEnd:        now.AddDate(1, 0, 0),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if ft == entity.FeatureTypeTransactions {
		plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: sub.PlanId})
		if err != nil {
			return nil, err
		}
		if plan != nil {
			row.AnnualQuota = plan.TransactionQuota()
		}
	}
	if err := uow.UsageRepository().Create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *usageService) RolloverAnnualUsage(ctx context.Context) (int, error) {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subs, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.SubscriptionStatusActive)},
	)
	if err != nil {
		return 0, err
	}

	reset := 0
	for _, sub := range subs {
		txUow := s.uowFactory.NewUnitOfWork(ctx)
		if err := txUow.Begin(ctx); err != nil {
			return reset, err
		}
		if err := rolloverUsageRows(ctx, txUow, sub.Id, now); err != nil {
			txUow.Rollback()
			return reset, err
		}
		if err := txUow.Commit(); err != nil {
			return reset, err
		}
		reset++
	}
	return reset, nil
}
