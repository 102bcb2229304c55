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
	gocache "github.com/patrickmn/go-cache"
)

const planCacheKey = "plans:active"

type IPlanService interface {
	GetPlans(ctx context.Context) ([]*dto.PlanResponse, error)
	GetPlan(ctx context.Context, planId uuid.UUID) (*entity.Plan, error)
	GetPlanBySlug(ctx context.Context, slug string) (*entity.Plan, error)

	// ActivePlans returns the active catalog ordered by sort_order, served
	// from a short-lived cache. Gate checks hit this on every call.
	ActivePlans(ctx context.Context) ([]*entity.Plan, error)

	// RequiredPlanFor finds the first active plan by sort order that grants
	// a feature code, or whose limit for a feature type exceeds the given
	// usage. Returns nil when no plan qualifies.
	RequiredPlanFor(ctx context.Context, featureKey string, currentUsage int64) (*entity.Plan, error)
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *gocache.Cache
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory) IPlanService {
	return &planService{
		uowFactory: uowFactory,
		cache:      gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *planService) ActivePlans(ctx context.Context) ([]*entity.Plan, error) {
	if cached, found := s.cache.Get(planCacheKey); found {
		return cached.([]*entity.Plan), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	plans, err := uow.PlanRepository().FindAll(ctx,
		specification.Filter("is_active", true),
		specification.OrderBy{Field: "sort_order"},
	)
	if err != nil {
		return nil, err
	}

	s.cache.Set(planCacheKey, plans, gocache.DefaultExpiration)
	return plans, nil
}

func (s *planService) GetPlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	plans, err := s.ActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	var res []*dto.PlanResponse
	for _, p := range plans {
		features := make([]string, 0, len(p.Features))
		for _, f := range p.Features {
			features = append(features, string(f))
		}
		limits := make(map[string]*int64, len(p.Limits))
		for ft, limit := range p.Limits {
			limits[string(ft)] = limit
		}

		res = append(res, &dto.PlanResponse{
			Id:           p.Id,
			Name:         p.Name,
			Slug:         p.Slug,
			Description:  p.Description,
			MonthlyPrice: p.MonthlyPrice,
			AnnualPrice:  p.AnnualPrice,
			Features:     features,
			Limits:       limits,
			SortOrder:    p.SortOrder,
		})
	}
	return res, nil
}

func (s *planService) GetPlan(ctx context.Context, planId uuid.UUID) (*entity.Plan, error) {
	// Serve from the catalog cache when possible.
	if plans, err := s.ActivePlans(ctx); err == nil {
		for _, p := range plans {
			if p.Id == planId {
				return p, nil
			}
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: planId})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errors.New("plan not found")
	}
	return plan, nil
}

func (s *planService) GetPlanBySlug(ctx context.Context, slug string) (*entity.Plan, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindOne(ctx, specification.BySlug{Slug: slug})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errors.New("plan not found")
	}
	return plan, nil
}

func (s *planService) RequiredPlanFor(ctx context.Context, featureKey string, currentUsage int64) (*entity.Plan, error) {
	plans, err := s.ActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	// ActivePlans is already ordered by sort_order, so the first match is
	// the cheapest qualifying plan.
	for _, p := range plans {
		if ft, err := entity.ParseFeatureType(featureKey); err == nil {
			limit := p.LimitFor(ft)
			if limit != nil && *limit <= currentUsage {
				continue
			}
		} else if !p.HasFeature(featureKey) {
			continue
		}
		return p, nil
	}
	return nil, nil
}
