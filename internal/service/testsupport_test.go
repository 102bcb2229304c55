package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"pos-billing-be/internal/entity"
	"pos-billing-be/pkg/gateway/midtrans"

	"github.com/google/uuid"
)

func i64(v int64) *int64 { return &v }

// fakeSequencer hands out sequence numbers from a plain counter.
type fakeSequencer struct {
	mu  sync.Mutex
	seq int64
}

func (s *fakeSequencer) Next(ctx context.Context, date time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

// fakeGateway scripts gateway responses per order id.
type fakeGateway struct {
	mu       sync.Mutex
	statuses map[string]*midtrans.StatusResult
	snapErr  error
	checked  []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{statuses: make(map[string]*midtrans.StatusResult)}
}

func (g *fakeGateway) CreateSnapTransaction(req *midtrans.SnapRequest) (*midtrans.SnapSession, error) {
	if g.snapErr != nil {
		return nil, g.snapErr
	}
	return &midtrans.SnapSession{
		Token:       "snap-token-" + req.OrderId,
		RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/" + req.OrderId,
	}, nil
}

func (g *fakeGateway) CheckTransaction(ctx context.Context, orderId string) (*midtrans.StatusResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checked = append(g.checked, orderId)
	res, ok := g.statuses[orderId]
	if !ok {
		return nil, errors.New("transaction not found")
	}
	return res, nil
}

func (g *fakeGateway) VerifySignature(orderId, statusCode, grossAmount, signatureKey string) bool {
	return signatureKey == "valid"
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

// recordingMailer captures outbound mail instead of dialing SMTP.
type recordingMailer struct {
	mu           sync.Mutex
	passwords    []string
	invoiceMails []sentInvoiceMail
}

type sentInvoiceMail struct {
	to            string
	invoiceNumber string
}

func (m *recordingMailer) SendTemporaryPassword(toEmail, fullName, storeName, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passwords = append(m.passwords, password)
	return nil
}

func (m *recordingMailer) SendInvoiceNotification(toEmail, invoiceNumber string, totalAmount int64, dueDate string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoiceMails = append(m.invoiceMails, sentInvoiceMail{to: toEmail, invoiceNumber: invoiceNumber})
	return nil
}

// seedPlan registers a plan in the fake store and returns it.
func seedPlan(f *fakeStore, name, slug string, monthly, annual int64, features []entity.FeatureCode, limits map[entity.FeatureType]*int64, sortOrder int) *entity.Plan {
	plan := &entity.Plan{
		Id:           uuid.New(),
		Name:         name,
		Slug:         slug,
		MonthlyPrice: monthly,
		AnnualPrice:  annual,
		Features:     features,
		Limits:       limits,
		IsActive:     true,
		SortOrder:    sortOrder,
	}
	f.plans = append(f.plans, plan)
	return plan
}

// seedBasicPlan mirrors the entry tier of the seeded catalog.
func seedBasicPlan(f *fakeStore) *entity.Plan {
	return seedPlan(f, "Basic", "basic", 99000, 990000,
		[]entity.FeatureCode{entity.FeatureInventoryTracking},
		map[entity.FeatureType]*int64{
			entity.FeatureTypeProducts:     i64(20),
			entity.FeatureTypeUsers:        i64(2),
			entity.FeatureTypeOutlets:      i64(1),
			entity.FeatureTypeTransactions: i64(12000),
		}, 1)
}

func seedGrowthPlan(f *fakeStore) *entity.Plan {
	return seedPlan(f, "Growth", "growth", 299000, 2990000,
		[]entity.FeatureCode{entity.FeatureInventoryTracking, entity.FeatureMultiOutlet, entity.FeatureReportExport},
		map[entity.FeatureType]*int64{
			entity.FeatureTypeProducts:     i64(500),
			entity.FeatureTypeUsers:        i64(10),
			entity.FeatureTypeOutlets:      i64(5),
			entity.FeatureTypeTransactions: i64(120000),
		}, 2)
}

func seedEnterprisePlan(f *fakeStore) *entity.Plan {
	return seedPlan(f, "Enterprise", "enterprise", 999000, 9990000,
		[]entity.FeatureCode{entity.FeatureInventoryTracking, entity.FeatureMultiOutlet, entity.FeatureReportExport},
		nil, 3)
}

// seedSubscription registers an active monthly subscription with its usage rows.
func seedSubscription(f *fakeStore, storeId uuid.UUID, plan *entity.Plan, createdAt time.Time) *entity.Subscription {
	sub := &entity.Subscription{
		Id:           uuid.New(),
		StoreId:      storeId,
		PlanId:       plan.Id,
		Status:       entity.SubscriptionStatusActive,
		BillingCycle: entity.BillingCycleMonthly,
		Amount:       plan.MonthlyPrice,
		StartsAt:     createdAt,
		EndsAt:       createdAt.AddDate(0, 1, 0),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	f.subs = append(f.subs, sub)

	for _, ft := range entity.TrackableFeatureTypes {
		row := &entity.SubscriptionUsage{
			Id:             uuid.New(),
			SubscriptionId: sub.Id,
			FeatureType:    ft,
			YearStart:      createdAt,
			YearEnd:        createdAt.AddDate(1, 0, 0),
			CreatedAt:      createdAt,
			UpdatedAt:      createdAt,
		}
		if ft == entity.FeatureTypeTransactions {
			row.AnnualQuota = plan.TransactionQuota()
		}
		f.usage = append(f.usage, row)
	}
	return sub
}

func usageRow(f *fakeStore, subId uuid.UUID, ft entity.FeatureType) *entity.SubscriptionUsage {
	for _, u := range f.usage {
		if u.SubscriptionId == subId && u.FeatureType == ft {
			return u
		}
	}
	return nil
}

func subById(f *fakeStore, id uuid.UUID) *entity.Subscription {
	for _, s := range f.subs {
		if s.Id == id {
			return s
		}
	}
	return nil
}

func invoicesFor(f *fakeStore, subId uuid.UUID) []*entity.Invoice {
	var out []*entity.Invoice
	for _, inv := range f.invoices {
		if inv.SubscriptionId == subId {
			out = append(out, inv)
		}
	}
	return out
}
