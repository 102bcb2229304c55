package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"pos-billing-be/internal/dto"
	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/pkg/mailer"
	"pos-billing-be/internal/repository/specification"
	"pos-billing-be/internal/repository/unitofwork"
	"pos-billing-be/pkg/events"
	pktNats "pos-billing-be/pkg/nats"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tempPasswordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"
const tempPasswordLength = 12

type IProvisioningService interface {
	CreateLead(ctx context.Context, req *dto.CreateLeadRequest) (*entity.Lead, error)

	// ProvisionLead converts a lead into a store, an owner account and a
	// trial subscription in a single transaction. A lead that cannot be
	// provisioned comes back as a failed result, not an error, so bulk runs
	// continue past it. Re-running a converted lead reports what it
	// originally produced.
	ProvisionLead(ctx context.Context, leadId uuid.UUID) (*dto.ProvisionResult, error)

	ProvisionAllNewLeads(ctx context.Context) ([]*dto.ProvisionResult, error)
}

type provisioningService struct {
	uowFactory     unitofwork.RepositoryFactory
	planService    IPlanService
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	trialDays      int
}

func NewProvisioningService(
	uowFactory unitofwork.RepositoryFactory,
	planService IPlanService,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	trialDays int,
) IProvisioningService {
	return &provisioningService{
		uowFactory:     uowFactory,
		planService:    planService,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		trialDays:      trialDays,
	}
}

func (s *provisioningService) CreateLead(ctx context.Context, req *dto.CreateLeadRequest) (*entity.Lead, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.LeadRepository().FindOne(ctx, specification.Filter("email", req.Email))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("a signup with this email already exists")
	}

	now := time.Now()
	lead := &entity.Lead{
		Id:        uuid.New(),
		Email:     req.Email,
		Name:      req.Name,
		Company:   req.Company,
		PlanSlug:  req.PlanSlug,
		Status:    entity.LeadStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.LeadRepository().Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *provisioningService) ProvisionLead(ctx context.Context, leadId uuid.UUID) (*dto.ProvisionResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	lead, err := uow.LeadRepository().FindOne(ctx, specification.ByID{ID: leadId})
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return &dto.ProvisionResult{Success: false, Message: "lead not found"}, nil
	}
	return s.provision(ctx, lead)
}

func (s *provisioningService) ProvisionAllNewLeads(ctx context.Context) ([]*dto.ProvisionResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	leads, err := uow.LeadRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.LeadStatusNew)},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.ProvisionResult, 0, len(leads))
	for _, lead := range leads {
		res, err := s.provision(ctx, lead)
		if err != nil {
			res = &dto.ProvisionResult{Success: false, Message: err.Error()}
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *provisioningService) provision(ctx context.Context, lead *entity.Lead) (*dto.ProvisionResult, error) {
	if lead.Status == entity.LeadStatusConverted {
		return &dto.ProvisionResult{
			Success:            true,
			AlreadyProvisioned: true,
			Message:            "lead was already provisioned",
			StoreId:            lead.ProvisionedStoreId,
			UserId:             lead.ProvisionedUserId,
		}, nil
	}

	planSlug := lead.PlanSlug
	if planSlug == "" {
		planSlug = "basic"
	}
	plan, err := s.planService.GetPlanBySlug(ctx, planSlug)
	if err != nil {
		return &dto.ProvisionResult{Success: false, Message: fmt.Sprintf("plan %q not found", planSlug)}, nil
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return nil, err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	trialEnd := now.AddDate(0, 0, s.trialDays)

	store := &entity.Store{
		Id:        uuid.New(),
		Name:      lead.Company,
		Slug:      slugify(lead.Company),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	owner := &entity.User{
		Id:           uuid.New(),
		StoreId:      store.Id,
		Email:        lead.Email,
		PasswordHash: string(passwordHash),
		FullName:     lead.Name,
		Role:         entity.UserRoleOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	store.OwnerUserId = &owner.Id

	sub := &entity.Subscription{
		Id:           uuid.New(),
		StoreId:      store.Id,
		PlanId:       plan.Id,
		Status:       entity.SubscriptionStatusActive,
		BillingCycle: entity.BillingCycleMonthly,
		Amount:       plan.MonthlyPrice,
		StartsAt:     now,
		EndsAt:       trialEnd,
		TrialEndsAt:  &trialEnd,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if existing, err := uow.UserRepository().FindOne(ctx, specification.Filter("email", lead.Email)); err != nil {
		return nil, err
	} else if existing != nil {
		return &dto.ProvisionResult{Success: false, Message: "an account with this email already exists"}, nil
	}

	if err := uow.StoreRepository().Create(ctx, store); err != nil {
		return nil, err
	}
	if err := uow.UserRepository().Create(ctx, owner); err != nil {
		return nil, err
	}
	if err := uow.StoreRepository().Update(ctx, store); err != nil {
		return nil, err
	}
	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := seedUsageRows(ctx, uow, sub, plan, now); err != nil {
		return nil, err
	}

	lead.Status = entity.LeadStatusConverted
	lead.ProvisionedAt = &now
	lead.ProvisionedStoreId = &store.Id
	lead.ProvisionedUserId = &owner.Id
	lead.UpdatedAt = now
	if err := uow.LeadRepository().Update(ctx, lead); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Mail delivery is best effort; a bounced welcome mail must not undo a
	// provisioned store.
	if s.emailService != nil {
		if err := s.emailService.SendTemporaryPassword(lead.Email, lead.Name, store.Name, tempPassword); err != nil {
			fmt.Printf("[WARN] Failed to mail temporary password to %s: %v\n", lead.Email, err)
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewBaseEvent(events.TrialProvisioned, map[string]interface{}{
			"lead_id":         lead.Id,
			"store_id":        store.Id,
			"user_id":         owner.Id,
			"subscription_id": sub.Id,
			"plan_id":         plan.Id,
			"trial_ends_at":   trialEnd,
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish %s event: %v\n", events.TrialProvisioned, err)
		}
	}

	return &dto.ProvisionResult{
		Success:           true,
		TemporaryPassword: tempPassword,
		StoreId:           &store.Id,
		UserId:            &owner.Id,
	}, nil
}

func generateTempPassword() (string, error) {
	out := make([]byte, tempPasswordLength)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
