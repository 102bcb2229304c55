package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/repository/contract"
	"pos-billing-be/internal/repository/specification"
	"pos-billing-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the persistence layer so the
// services can be exercised without a database. Queries interpret the same
// specifications the GORM repositories receive.
type fakeStore struct {
	mu sync.Mutex

	plans    []*entity.Plan
	subs     []*entity.Subscription
	usage    []*entity.SubscriptionUsage
	invoices []*entity.Invoice
	payments []*entity.Payment
	stores   []*entity.Store
	users    []*entity.User
	leads    []*entity.Lead

	productCounts map[uuid.UUID]int64
	userCounts    map[uuid.UUID]int64
	outletCounts  map[uuid.UUID]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		productCounts: make(map[uuid.UUID]int64),
		userCounts:    make(map[uuid.UUID]int64),
		outletCounts:  make(map[uuid.UUID]int64),
	}
}

func (f *fakeStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f}
}

type fakeUow struct {
	store *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) PlanRepository() contract.PlanRepository { return &fakePlanRepo{u.store} }
func (u *fakeUow) SubscriptionRepository() contract.SubscriptionRepository {
	return &fakeSubRepo{u.store}
}
func (u *fakeUow) UsageRepository() contract.UsageRepository     { return &fakeUsageRepo{u.store} }
func (u *fakeUow) InvoiceRepository() contract.InvoiceRepository { return &fakeInvoiceRepo{u.store} }
func (u *fakeUow) PaymentRepository() contract.PaymentRepository { return &fakePaymentRepo{u.store} }
func (u *fakeUow) StoreRepository() contract.StoreRepository     { return &fakeStoreRepo{u.store} }
func (u *fakeUow) UserRepository() contract.UserRepository       { return &fakeUserRepo{u.store} }
func (u *fakeUow) LeadRepository() contract.LeadRepository       { return &fakeLeadRepo{u.store} }

// specQuery is a specification set decoded into plain filter values.
type specQuery struct {
	id             *uuid.UUID
	slug           *string
	storeId        *uuid.UUID
	subscriptionId *uuid.UUID
	status         *string
	featureType    *string
	dueBefore      *time.Time
	endsBefore     *time.Time
	createdAfter   *time.Time
	createdBefore  *time.Time
	filters        map[string]interface{}
	orderField     string
	orderDesc      bool
}

func parseSpecs(specs []specification.Specification) specQuery {
	q := specQuery{filters: make(map[string]interface{})}
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			q.id = &sp.ID
		case specification.BySlug:
			q.slug = &sp.Slug
		case specification.StoreOwnedBy:
			q.storeId = &sp.StoreID
		case specification.BySubscription:
			q.subscriptionId = &sp.SubscriptionID
		case specification.ByStatus:
			q.status = &sp.Status
		case specification.ByFeatureType:
			q.featureType = &sp.FeatureType
		case specification.DueBefore:
			q.dueBefore = &sp.Time
		case specification.EndsBefore:
			q.endsBefore = &sp.Time
		case specification.CreatedAfter:
			q.createdAfter = &sp.Time
		case specification.CreatedBefore:
			q.createdBefore = &sp.Time
		case specification.FilterBy:
			q.filters[sp.Field] = sp.Value
		case specification.OrderBy:
			q.orderField = sp.Field
			q.orderDesc = sp.Desc
		case specification.ForUpdate:
			// Row locks mean nothing in memory.
		}
	}
	return q
}

// Plans

type fakePlanRepo struct{ f *fakeStore }

func (r *fakePlanRepo) Create(ctx context.Context, plan *entity.Plan) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c := *plan
	r.f.plans = append(r.f.plans, &c)
	return nil
}

func (r *fakePlanRepo) Update(ctx context.Context, plan *entity.Plan) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i, p := range r.f.plans {
		if p.Id == plan.Id {
			c := *plan
			r.f.plans[i] = &c
		}
	}
	return nil
}

func (r *fakePlanRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Plan, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakePlanRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Plan, error) {
	q := parseSpecs(specs)
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var out []*entity.Plan
	for _, p := range r.f.plans {
		if q.id != nil && p.Id != *q.id {
			continue
		}
		if q.slug != nil && p.Slug != *q.slug {
			continue
		}
		if v, ok := q.filters["is_active"]; ok && p.IsActive != v.(bool) {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	if q.orderField == "sort_order" {
		sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	}
	return out, nil
}

// Subscriptions

type fakeSubRepo struct{ f *fakeStore }

func (r *fakeSubRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c := *sub
	r.f.subs = append(r.f.subs, &c)
	return nil
}

func (r *fakeSubRepo) Update(ctx context.Context, sub *entity.Subscription) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i, s := range r.f.subs {
		if s.Id == sub.Id {
			c := *sub
			r.f.subs[i] = &c
		}
	}
	return nil
}

func (r *fakeSubRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeSubRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	q := parseSpecs(specs)
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var out []*entity.Subscription
	for _, s := range r.f.subs {
		if q.id != nil && s.Id != *q.id {
			continue
		}
		if q.storeId != nil && s.StoreId != *q.storeId {
			continue
		}
		if q.status != nil && string(s.Status) != *q.status {
			continue
		}
		if q.endsBefore != nil && !s.EndsAt.Before(*q.endsBefore) {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	if q.orderField == "created_at" {
		sort.Slice(out, func(i, j int) bool {
			if q.orderDesc {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}

// Usage rows

type fakeUsageRepo struct{ f *fakeStore }

func (r *fakeUsageRepo) Create(ctx context.Context, usage *entity.SubscriptionUsage) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c := *usage
	r.f.usage = append(r.f.usage, &c)
	return nil
}

func (r *fakeUsageRepo) Update(ctx context.Context, usage *entity.SubscriptionUsage) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i, u := range r.f.usage {
		if u.Id == usage.Id {
			c := *usage
			r.f.usage[i] = &c
		}
	}
	return nil
}

func (r *fakeUsageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionUsage, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeUsageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionUsage, error) {
	q := parseSpecs(specs)
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var out []*entity.SubscriptionUsage
	for _, u := range r.f.usage {
		if q.subscriptionId != nil && u.SubscriptionId != *q.subscriptionId {
			continue
		}
		if q.featureType != nil && string(u.FeatureType) != *q.featureType {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeUsageRepo) AddUsage(ctx context.Context, usageId uuid.UUID, delta int64) (*entity.SubscriptionUsage, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.usage {
		if u.Id == usageId {
			u.CurrentUsage += delta
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// Invoices

type fakeInvoiceRepo struct{ f *fakeStore }

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c := *invoice
	r.f.invoices = append(r.f.invoices, &c)
	return nil
}

func (r *fakeInvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i, inv := range r.f.invoices {
		if inv.Id == invoice.Id {
			c := *invoice
			r.f.invoices[i] = &c
		}
	}
	return nil
}

func (r *fakeInvoiceRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invoice, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeInvoiceRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error) {
	q := parseSpecs(specs)
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var out []*entity.Invoice
	for _, inv := range r.f.invoices {
		if q.id != nil && inv.Id != *q.id {
			continue
		}
		if q.subscriptionId != nil && inv.SubscriptionId != *q.subscriptionId {
			continue
		}
		if q.status != nil && string(inv.Status) != *q.status {
			continue
		}
		if q.dueBefore != nil && !inv.DueDate.Before(*q.dueBefore) {
			continue
		}
		c := *inv
		out = append(out, &c)
	}
	if q.orderField == "created_at" {
		sort.Slice(out, func(i, j int) bool {
			if q.orderDesc {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}

func (r *fakeInvoiceRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

// Payments

type fakePaymentRepo struct{ f *fakeStore }

func (r *fakePaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c := *payment
	r.f.payments = append(r.f.payments, &c)
	return nil
}

func (r *fakePaymentRepo) Update(ctx context.Context, payment *entity.Payment) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i, p := range r.f.payments {
		if p.Id == payment.Id {
			c := *payment
			r.f.payments[i] = &c
		}
	}
	return nil
}

func (r *fakePaymentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakePaymentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error) {
	q := parseSpecs(specs)
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var out []*entity.Payment
	for _, p := range r.f.payments {
		if q.status != nil && string(p.Status) != *q.status {
			continue
		}
		if q.createdAfter != nil && !p.CreatedAt.After(*q.createdAfter) {
			continue
		}
		if q.createdBefore != nil && !p.CreatedAt.Before(*q.createdBefore) {
			continue
		}
		if v, ok := q.filters["invoice_id"]; ok && p.InvoiceId != v.(uuid.UUID) {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	if q.orderField == "created_at" {
		sort.Slice(out, func(i, j int) bool {
			if q.orderDesc {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}

func (r *fakePaymentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakePaymentRepo) DeleteFailedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var kept []*entity.Payment
	var removed int64
	for _, p := range r.f.payments {
		if p.Status == entity.PaymentStatusFailed && p.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	r.f.payments = kept
	return removed, nil
}

// Stores

type fakeStoreRepo struct{ f *fakeStore }

func (r *fakeStoreRepo) Create(ctx context.Context, store *entity.Store) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c := *store
	r.f.stores = append(r.f.stores, &c)
	return nil
}

func (r *fakeStoreRepo) Update(ctx context.Context, store *entity.Store) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i, s := range r.f.stores {
		if s.Id == store.Id {
			c := *store
			r.f.stores[i] = &c
		}
	}
	return nil
}

func (r *fakeStoreRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Store, error) {
	q := parseSpecs(specs)
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, s := range r.f.stores {
		if q.id != nil && s.Id != *q.id {
			continue
		}
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (r *fakeStoreRepo) CountProducts(ctx context.Context, storeId uuid.UUID) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.f.productCounts[storeId], nil
}

func (r *fakeStoreRepo) CountUsers(ctx context.Context, storeId uuid.UUID) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.f.userCounts[storeId], nil
}

func (r *fakeStoreRepo) CountOutlets(ctx context.Context, storeId uuid.UUID) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.f.outletCounts[storeId], nil
}

// Users

type fakeUserRepo struct{ f *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c := *user
	r.f.users = append(r.f.users, &c)
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	q := parseSpecs(specs)
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if q.id != nil && u.Id != *q.id {
			continue
		}
		if q.storeId != nil && u.StoreId != *q.storeId {
			continue
		}
		if v, ok := q.filters["email"]; ok && u.Email != v.(string) {
			continue
		}
		if v, ok := q.filters["role"]; ok && string(u.Role) != v.(string) {
			continue
		}
		c := *u
		return &c, nil
	}
	return nil, nil
}

// Leads

type fakeLeadRepo struct{ f *fakeStore }

func (r *fakeLeadRepo) Create(ctx context.Context, lead *entity.Lead) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c := *lead
	r.f.leads = append(r.f.leads, &c)
	return nil
}

func (r *fakeLeadRepo) Update(ctx context.Context, lead *entity.Lead) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i, l := range r.f.leads {
		if l.Id == lead.Id {
			c := *lead
			r.f.leads[i] = &c
		}
	}
	return nil
}

func (r *fakeLeadRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Lead, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeLeadRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Lead, error) {
	q := parseSpecs(specs)
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var out []*entity.Lead
	for _, l := range r.f.leads {
		if q.id != nil && l.Id != *q.id {
			continue
		}
		if q.status != nil && string(l.Status) != *q.status {
			continue
		}
		if v, ok := q.filters["email"]; ok && l.Email != v.(string) {
			continue
		}
		c := *l
		out = append(out, &c)
	}
	if q.orderField == "created_at" {
		sort.Slice(out, func(i, j int) bool {
			if q.orderDesc {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}
