package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pos-billing-be/internal/dto"
	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/pkg/mailer"
	"pos-billing-be/internal/repository/specification"
	"pos-billing-be/internal/repository/unitofwork"
	"pos-billing-be/pkg/billing/invoice"
	"pos-billing-be/pkg/events"
	pktNats "pos-billing-be/pkg/nats"

	"github.com/google/uuid"
)

// defaultMaxRetryInvoices bounds how many retry invoices one failed original
// can accrue before the sweep gives up on it.
const defaultMaxRetryInvoices = 3

type IInvoiceService interface {
	CreateInitialInvoice(ctx context.Context, sub *entity.Subscription, plan *entity.Plan) (*entity.Invoice, error)
	CreateRenewalInvoice(ctx context.Context, sub *entity.Subscription, plan *entity.Plan) (*entity.Invoice, error)
	CreateUpgradeInvoice(ctx context.Context, sub *entity.Subscription, oldPlan, newPlan *entity.Plan) (*entity.Invoice, error)

	// CreateRetryInvoice re-bills a failed payment. Returns (nil, nil) when
	// the retry budget for the original invoice is spent or a retry is
	// already pending.
	CreateRetryInvoice(ctx context.Context, original *entity.Invoice, failedPaymentId uuid.UUID) (*entity.Invoice, error)

	// ApplyGatewayStatus transitions an invoice and its payment according to
	// the gateway's verdict. Safe to call repeatedly with the same verdict.
	ApplyGatewayStatus(ctx context.Context, invoiceId uuid.UUID, status entity.PaymentStatus, gatewayTransactionId, paymentMethod string) error

	GetStoreInvoices(ctx context.Context, storeId uuid.UUID) ([]*dto.InvoiceResponse, error)
	GetPendingInvoices(ctx context.Context) ([]*entity.Invoice, error)
	GetOverdueInvoices(ctx context.Context) ([]*entity.Invoice, error)

	// GenerateRenewalInvoices creates renewal invoices for active
	// subscriptions ending inside the window that do not have one pending yet.
	GenerateRenewalInvoices(ctx context.Context, window time.Duration) (int, error)
}

type invoiceService struct {
	uowFactory       unitofwork.RepositoryFactory
	sequencer        invoice.Sequencer
	eventPublisher   *pktNats.Publisher
	emailService     mailer.IEmailService
	dueDays          int
	maxRetryInvoices int
}

func NewInvoiceService(
	uowFactory unitofwork.RepositoryFactory,
	sequencer invoice.Sequencer,
	eventPublisher *pktNats.Publisher,
	emailService mailer.IEmailService,
	dueDays int,
	maxRetryInvoices int,
) IInvoiceService {
	if maxRetryInvoices <= 0 {
		maxRetryInvoices = defaultMaxRetryInvoices
	}
	return &invoiceService{
		uowFactory:       uowFactory,
		sequencer:        sequencer,
		eventPublisher:   eventPublisher,
		emailService:     emailService,
		dueDays:          dueDays,
		maxRetryInvoices: maxRetryInvoices,
	}
}

func (s *invoiceService) create(ctx context.Context, sub *entity.Subscription, amount int64, itemName string, meta entity.InvoiceMetadata) (*entity.Invoice, error) {
	now := time.Now()
	seq, err := s.sequencer.Next(ctx, now)
	if err != nil {
		return nil, err
	}

	tax := entity.CalculateTax(amount)
	inv := &entity.Invoice{
		Id:             uuid.New(),
		SubscriptionId: sub.Id,
		InvoiceNumber:  invoice.FormatNumber(now, seq),
		Amount:         amount,
		TaxAmount:      tax,
		TotalAmount:    amount + tax,
		Status:         entity.InvoiceStatusPending,
		DueDate:        now.AddDate(0, 0, s.dueDays),
		LineItems: []entity.LineItem{
			{
				Id:         uuid.New(),
				Name:       itemName,
				Quantity:   1,
				UnitPrice:  amount,
				TotalPrice: amount,
			},
		},
		Metadata:  meta,
		CreatedAt: now,
		UpdatedAt: now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.InvoiceRepository().Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) CreateInitialInvoice(ctx context.Context, sub *entity.Subscription, plan *entity.Plan) (*entity.Invoice, error) {
	name := fmt.Sprintf("%s plan (%s)", plan.Name, sub.BillingCycle)
	return s.create(ctx, sub, sub.Amount, name, entity.InvoiceMetadata{Type: entity.InvoiceTypeInitial})
}

func (s *invoiceService) CreateRenewalInvoice(ctx context.Context, sub *entity.Subscription, plan *entity.Plan) (*entity.Invoice, error) {
	amount := sub.Amount
	name := fmt.Sprintf("%s plan renewal (%s)", plan.Name, sub.BillingCycle)

	// A downgrade that takes effect at renewal is billed at the new price.
	if sd := sub.Metadata.ScheduledDowngrade; sd != nil {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		newPlan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: sd.PlanId})
		if err != nil {
			return nil, err
		}
		if newPlan != nil {
			amount = newPlan.PriceFor(sub.BillingCycle)
			name = fmt.Sprintf("%s plan renewal (%s)", newPlan.Name, sub.BillingCycle)
		}
	}

	return s.create(ctx, sub, amount, name, entity.InvoiceMetadata{Type: entity.InvoiceTypeRenewal})
}

func (s *invoiceService) CreateUpgradeInvoice(ctx context.Context, sub *entity.Subscription, oldPlan, newPlan *entity.Plan) (*entity.Invoice, error) {
	// The upgrade is billed as the plain price difference for the running
	// cycle. No day-level proration.
	diff := newPlan.PriceFor(sub.BillingCycle) - oldPlan.PriceFor(sub.BillingCycle)
	if diff <= 0 {
		return nil, errors.New("upgrade invoice requires a positive price difference")
	}

	name := fmt.Sprintf("Upgrade %s to %s", oldPlan.Name, newPlan.Name)
	meta := entity.InvoiceMetadata{
		Type:         entity.InvoiceTypeUpgrade,
		UpgradedFrom: &oldPlan.Id,
		UpgradedTo:   &newPlan.Id,
	}
	return s.create(ctx, sub, diff, name, meta)
}

func (s *invoiceService) CreateRetryInvoice(ctx context.Context, original *entity.Invoice, failedPaymentId uuid.UUID) (*entity.Invoice, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	siblings, err := uow.InvoiceRepository().FindAll(ctx,
		specification.BySubscription{SubscriptionID: original.SubscriptionId},
	)
	if err != nil {
		return nil, err
	}

	// The budget counts every retry the subscription has accrued, not just
	// retries of this original, so a persistently failing payment method
	// cannot generate unbounded invoice spam.
	retries := 0
	for _, inv := range siblings {
		if inv.Metadata.Type != entity.InvoiceTypeRetry {
			continue
		}
		if inv.Status == entity.InvoiceStatusPending &&
			inv.Metadata.OriginalInvoiceId != nil && *inv.Metadata.OriginalInvoiceId == original.Id {
			// One open retry per original at a time.
			return nil, nil
		}
		retries++
	}
	if retries >= s.maxRetryInvoices {
		return nil, nil
	}

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: original.SubscriptionId})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errors.New("subscription for retry invoice not found")
	}
	// Cancelled subscriptions are not re-billed.
	if sub.Status == entity.SubscriptionStatusCancelled || sub.Metadata.CancelledAt != nil {
		return nil, nil
	}

	meta := entity.InvoiceMetadata{
		Type:              entity.InvoiceTypeRetry,
		OriginalInvoiceId: &original.Id,
		FailedPaymentId:   &failedPaymentId,
	}
	name := fmt.Sprintf("Payment retry for %s", original.InvoiceNumber)
	inv, err := s.create(ctx, sub, original.Amount, name, meta)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.RetryInvoiceCreated, map[string]interface{}{
		"invoice_id":          inv.Id,
		"invoice_number":      inv.InvoiceNumber,
		"original_invoice_id": original.Id,
		"subscription_id":     sub.Id,
		"attempt":             retries + 1,
	})
	return inv, nil
}

func (s *invoiceService) ApplyGatewayStatus(ctx context.Context, invoiceId uuid.UUID, status entity.PaymentStatus, gatewayTransactionId, paymentMethod string) error {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	inv, err := uow.InvoiceRepository().FindOne(ctx,
		specification.ByID{ID: invoiceId},
		specification.ForUpdate{},
	)
	if err != nil {
		return err
	}
	if inv == nil {
		return errors.New("invoice not found")
	}

	var renewed bool
	var sub *entity.Subscription

	switch status {
	case entity.PaymentStatusCompleted:
		if inv.Status == entity.InvoiceStatusPaid {
			// Webhook replays and reconciliation overlap land here. A
			// leftover pending row from another checkout attempt still
			// gets closed so sweeps stop revisiting it.
			if err := s.closeLeftoverPayments(ctx, uow, inv, now); err != nil {
				return err
			}
			return uow.Commit()
		}
		inv.Status = entity.InvoiceStatusPaid
		inv.PaidAt = &now

		if inv.Metadata.Type == entity.InvoiceTypeRenewal || inv.Metadata.Type == entity.InvoiceTypeRetry {
			sub, err = uow.SubscriptionRepository().FindOne(ctx,
				specification.ByID{ID: inv.SubscriptionId},
				specification.ForUpdate{},
			)
			if err != nil {
				return err
			}
			if sub == nil {
				return errors.New("subscription for paid invoice not found")
			}
			renewed, err = applyRenewal(ctx, uow, sub, now)
			if err != nil {
				return err
			}
		}
	case entity.PaymentStatusFailed:
		if inv.Status != entity.InvoiceStatusPending {
			return uow.Commit()
		}
		inv.Status = entity.InvoiceStatusFailed
	case entity.PaymentStatusRefunded:
		inv.Status = entity.InvoiceStatusRefunded
	default:
		return uow.Commit()
	}

	inv.UpdatedAt = now
	if err := uow.InvoiceRepository().Update(ctx, inv); err != nil {
		return err
	}
	if err := s.settlePayment(ctx, uow, inv, status, gatewayTransactionId, paymentMethod, now); err != nil {
		return err
	}
	if status == entity.PaymentStatusCompleted {
		if err := s.closeLeftoverPayments(ctx, uow, inv, now); err != nil {
			return err
		}
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if status == entity.PaymentStatusFailed {
		s.publish(ctx, events.PaymentFailed, map[string]interface{}{
			"invoice_id":     inv.Id,
			"invoice_number": inv.InvoiceNumber,
			"amount":         inv.TotalAmount,
		})
	}
	if renewed && sub != nil {
		s.publish(ctx, events.SubscriptionRenewed, map[string]interface{}{
			"subscription_id": sub.Id,
			"store_id":        sub.StoreId,
			"plan_id":         sub.PlanId,
			"ends_at":         sub.EndsAt,
		})
	}
	return nil
}

// settlePayment lands the gateway verdict on the payment row. Checkout
// creates the row up front; a verdict arriving without one (gateway-side
// payment links, replays after cleanup) gets a fresh row.
func (s *invoiceService) settlePayment(ctx context.Context, uow unitofwork.UnitOfWork, inv *entity.Invoice, status entity.PaymentStatus, gatewayTransactionId, paymentMethod string, now time.Time) error {
	payment, err := uow.PaymentRepository().FindOne(ctx,
		specification.Filter("invoice_id", inv.Id),
		specification.ByStatus{Status: string(entity.PaymentStatusPending)},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return err
	}

	if payment == nil {
		payment = &entity.Payment{
			Id:        uuid.New(),
			InvoiceId: inv.Id,
			Gateway:   "midtrans",
			Amount:    inv.TotalAmount,
			CreatedAt: now,
		}
		payment.Status = status
		payment.GatewayTransactionId = gatewayTransactionId
		payment.PaymentMethod = paymentMethod
		payment.ProcessedAt = &now
		payment.UpdatedAt = now
		return uow.PaymentRepository().Create(ctx, payment)
	}

	payment.Status = status
	payment.GatewayTransactionId = gatewayTransactionId
	payment.PaymentMethod = paymentMethod
	payment.ProcessedAt = &now
	payment.UpdatedAt = now
	return uow.PaymentRepository().Update(ctx, payment)
}

// closeLeftoverPayments fails any pending rows still attached to a paid
// invoice. A store that checked out twice holds one row per attempt; the
// invoice settles through one of them and the rest are superseded.
func (s *invoiceService) closeLeftoverPayments(ctx context.Context, uow unitofwork.UnitOfWork, inv *entity.Invoice, now time.Time) error {
	pending, err := uow.PaymentRepository().FindAll(ctx,
		specification.Filter("invoice_id", inv.Id),
		specification.ByStatus{Status: string(entity.PaymentStatusPending)},
	)
	if err != nil {
		return err
	}
	for _, p := range pending {
		p.Status = entity.PaymentStatusFailed
		p.ProcessedAt = &now
		p.UpdatedAt = now
		if err := uow.PaymentRepository().Update(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *invoiceService) GetStoreInvoices(ctx context.Context, storeId uuid.UUID) ([]*dto.InvoiceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subs, err := uow.SubscriptionRepository().FindAll(ctx, specification.StoreOwnedBy{StoreID: storeId})
	if err != nil {
		return nil, err
	}

	var res []*dto.InvoiceResponse
	for _, sub := range subs {
		invoices, err := uow.InvoiceRepository().FindAll(ctx,
			specification.BySubscription{SubscriptionID: sub.Id},
			specification.OrderBy{Field: "created_at", Desc: true},
		)
		if err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			res = append(res, toInvoiceResponse(inv))
		}
	}
	return res, nil
}

func (s *invoiceService) GetPendingInvoices(ctx context.Context) ([]*entity.Invoice, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.InvoiceRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.InvoiceStatusPending)},
	)
}

func (s *invoiceService) GetOverdueInvoices(ctx context.Context) ([]*entity.Invoice, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.InvoiceRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.InvoiceStatusPending)},
		specification.DueBefore{Time: time.Now()},
	)
}

func (s *invoiceService) GenerateRenewalInvoices(ctx context.Context, window time.Duration) (int, error) {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subs, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.SubscriptionStatusActive)},
		specification.EndsBefore{Time: now.Add(window)},
	)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, sub := range subs {
		if sub.Metadata.CancelledAt != nil {
			continue
		}

		pending, err := uow.InvoiceRepository().FindAll(ctx,
			specification.BySubscription{SubscriptionID: sub.Id},
			specification.ByStatus{Status: string(entity.InvoiceStatusPending)},
		)
		if err != nil {
			return created, err
		}
		hasRenewal := false
		for _, inv := range pending {
			if inv.Metadata.Type == entity.InvoiceTypeRenewal || inv.Metadata.Type == entity.InvoiceTypeRetry {
				hasRenewal = true
				break
			}
		}
		if hasRenewal {
			continue
		}

		plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: sub.PlanId})
		if err != nil {
			return created, err
		}
		if plan == nil {
			continue
		}
		inv, err := s.CreateRenewalInvoice(ctx, sub, plan)
		if err != nil {
			return created, err
		}
		created++
		s.notifyOwner(ctx, uow, sub, inv)
	}
	return created, nil
}

// notifyOwner mails the store owner that a renewal invoice is due. Mail is
// best effort, an unreachable SMTP server never fails the sweep.
func (s *invoiceService) notifyOwner(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, inv *entity.Invoice) {
	if s.emailService == nil {
		return
	}

	owner, err := uow.UserRepository().FindOne(ctx,
		specification.StoreOwnedBy{StoreID: sub.StoreId},
		specification.Filter("role", string(entity.UserRoleOwner)),
	)
	if err != nil || owner == nil {
		fmt.Printf("[WARN] No owner to notify for store %s: %v\n", sub.StoreId, err)
		return
	}

	if err := s.emailService.SendInvoiceNotification(owner.Email, inv.InvoiceNumber, inv.TotalAmount, inv.DueDate.Format("2 January 2006")); err != nil {
		fmt.Printf("[WARN] Failed to send invoice %s to %s: %v\n", inv.InvoiceNumber, owner.Email, err)
	}
}

func (s *invoiceService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewBaseEvent(eventType, data)); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		Id:            inv.Id,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Amount,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		Status:        string(inv.Status),
		Type:          string(inv.Metadata.Type),
		DueDate:       inv.DueDate,
		PaidAt:        inv.PaidAt,
	}
}
