package service

import (
	"context"
	"errors"
	"time"

	"pos-billing-be/internal/dto"
	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/repository/specification"
	"pos-billing-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ILimitService interface {
	// CanPerformAction is the gate the POS core calls before creating a
	// product, inviting a user, opening an outlet, or using a premium
	// feature. The increment is what the caller is about to add (0 for a
	// plain read of standing). Denials come back as typed results, not
	// errors; an error means the check itself could not be carried out.
	CanPerformAction(ctx context.Context, storeId uuid.UUID, featureKey string, increment int64) (*dto.AllowResult, error)

	GetUsageStatus(ctx context.Context, storeId uuid.UUID) (*dto.UsageStatusResponse, error)
}

type limitService struct {
	uowFactory    unitofwork.RepositoryFactory
	planService   IPlanService
	warnThreshold float64
}

func NewLimitService(uowFactory unitofwork.RepositoryFactory, planService IPlanService, warnThreshold float64) ILimitService {
	if warnThreshold <= 0 || warnThreshold >= 1 {
		warnThreshold = 0.8
	}
	return &limitService{
		uowFactory:    uowFactory,
		planService:   planService,
		warnThreshold: warnThreshold,
	}
}

func (s *limitService) CanPerformAction(ctx context.Context, storeId uuid.UUID, featureKey string, increment int64) (*dto.AllowResult, error) {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := findCurrentSubscription(ctx, uow, storeId, now)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return s.denied(ctx, dto.ReasonNoSubscription, featureKey, 0)
	}
	if sub.Status != entity.SubscriptionStatusActive {
		return s.denied(ctx, dto.ReasonSubscriptionExpired, featureKey, 0)
	}

	plan, err := s.planService.GetPlan(ctx, sub.PlanId)
	if err != nil {
		return nil, err
	}

	ft, ftErr := entity.ParseFeatureType(featureKey)
	if ftErr != nil {
		// Premium feature code, not a countable resource.
		return s.checkFeatureCode(ctx, uow, sub, plan, featureKey)
	}
	return s.checkCountable(ctx, uow, sub, plan, ft, increment)
}

func (s *limitService) checkFeatureCode(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, plan *entity.Plan, featureKey string) (*dto.AllowResult, error) {
	if !plan.HasFeature(featureKey) {
		return s.denied(ctx, dto.ReasonFeatureNotAvailable, featureKey, 0)
	}

	// A served soft cap blocks premium features until the next billing year
	// or an upgrade, while plain selling continues.
	txUsage, err := uow.UsageRepository().FindOne(ctx,
		specification.BySubscription{SubscriptionID: sub.Id},
		specification.ByFeatureType{FeatureType: string(entity.FeatureTypeTransactions)},
	)
	if err != nil {
		return nil, err
	}
	if txUsage != nil && txUsage.SoftCapTriggered {
		res, err := s.denied(ctx, dto.ReasonQuotaExceededPremiumBlock, string(entity.FeatureTypeTransactions), txUsage.CurrentUsage)
		if err != nil {
			return nil, err
		}
		res.CurrentUsage = &txUsage.CurrentUsage
		res.Limit = txUsage.AnnualQuota
		return res, nil
	}

	return &dto.AllowResult{Allowed: true, Reason: dto.ReasonWithinLimits}, nil
}

func (s *limitService) checkCountable(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, plan *entity.Plan, ft entity.FeatureType, increment int64) (*dto.AllowResult, error) {
	current, limit, softCapped, err := s.usageFor(ctx, uow, sub, plan, ft)
	if err != nil {
		return nil, err
	}

	// Transactions are never hard-blocked. Past the annual quota they keep
	// flowing; the soft cap only restricts premium features.
	if ft != entity.FeatureTypeTransactions && limit != nil && current+increment > *limit {
		res, err := s.denied(ctx, dto.ReasonLimitExceeded, string(ft), current)
		if err != nil {
			return nil, err
		}
		res.CurrentUsage = &current
		res.Limit = limit
		return res, nil
	}

	return &dto.AllowResult{
		Allowed:      true,
		Reason:       dto.ReasonWithinLimits,
		CurrentUsage: &current,
		Limit:        limit,
		Warning:      s.nearLimit(current, limit) || softCapped,
	}, nil
}

// usageFor reads the authoritative usage number for a feature type. Products,
// users and outlets come from live table counts; transactions come from the
// persisted counter because orders are not rows this service owns.
func (s *limitService) usageFor(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, plan *entity.Plan, ft entity.FeatureType) (current int64, limit *int64, softCapped bool, err error) {
	limit = plan.LimitFor(ft)

	switch ft {
	case entity.FeatureTypeProducts:
		current, err = uow.StoreRepository().CountProducts(ctx, sub.StoreId)
	case entity.FeatureTypeUsers:
		current, err = uow.StoreRepository().CountUsers(ctx, sub.StoreId)
	case entity.FeatureTypeOutlets:
		current, err = uow.StoreRepository().CountOutlets(ctx, sub.StoreId)
	case entity.FeatureTypeTransactions:
		var row *entity.SubscriptionUsage
		row, err = uow.UsageRepository().FindOne(ctx,
			specification.BySubscription{SubscriptionID: sub.Id},
			specification.ByFeatureType{FeatureType: string(ft)},
		)
		if err == nil && row != nil {
			current = row.CurrentUsage
			limit = row.AnnualQuota
			softCapped = row.SoftCapTriggered
		}
	default:
		err = errors.New("unsupported feature type")
	}
	return current, limit, softCapped, err
}

func (s *limitService) nearLimit(current int64, limit *int64) bool {
	if limit == nil || *limit <= 0 {
		return false
	}
	return float64(current) >= float64(*limit)*s.warnThreshold
}

func (s *limitService) denied(ctx context.Context, reason dto.AllowReason, featureKey string, currentUsage int64) (*dto.AllowResult, error) {
	res := &dto.AllowResult{Allowed: false, Reason: reason}

	plan, err := s.planService.RequiredPlanFor(ctx, featureKey, currentUsage)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		res.RequiredPlan = &dto.RequiredPlanInfo{
			Id:   plan.Id,
			Name: plan.Name,
			Slug: plan.Slug,
		}
	}
	return res, nil
}

func (s *limitService) GetUsageStatus(ctx context.Context, storeId uuid.UUID) (*dto.UsageStatusResponse, error) {
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

	res := &dto.UsageStatusResponse{
		PlanName: plan.Name,
		PlanSlug: plan.Slug,
		Status:   string(sub.Status),
		IsTrial:  sub.IsTrial(now),
	}

	for _, ft := range entity.TrackableFeatureTypes {
		current, limit, softCapped, err := s.usageFor(ctx, uow, sub, plan, ft)
		if err != nil {
			return nil, err
		}
		status := dto.UsageLimitStatus{
			FeatureType:  string(ft),
			CurrentUsage: current,
			Limit:        limit,
			Warning:      s.nearLimit(current, limit),
		}
		if ft == entity.FeatureTypeTransactions {
			res.QuotaUsage = &status
			res.SoftCapHit = softCapped
		} else {
			res.Limits = append(res.Limits, status)
		}
	}
	return res, nil
}
