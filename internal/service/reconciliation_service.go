package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pos-billing-be/internal/dto"
	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/pkg/logger"
	"pos-billing-be/internal/repository/specification"
	"pos-billing-be/internal/repository/unitofwork"
	"pos-billing-be/pkg/gateway/midtrans"

	"github.com/google/uuid"
)

type IReconciliationService interface {
	// ReconcileAllPendingPayments queries the gateway for every pending
	// payment and applies terminal verdicts. One bad payment never aborts
	// the sweep; its error is collected and the loop moves on.
	ReconcileAllPendingPayments(ctx context.Context) (*dto.ReconcileResult, error)

	// ProcessFailedPayments creates bounded retry invoices for payments that
	// failed inside the lookback window.
	ProcessFailedPayments(ctx context.Context) (*dto.RetrySweepResult, error)

	// CleanupOldPayments removes failed payment rows older than days.
	// days <= 0 falls back to the configured retention window.
	CleanupOldPayments(ctx context.Context, days int) (int64, error)

	GetReconciliationSummary(ctx context.Context) (*dto.ReconciliationSummary, error)
}

type reconciliationService struct {
	uowFactory        unitofwork.RepositoryFactory
	invoiceService    IInvoiceService
	gateway           midtrans.Gateway
	log               logger.ILogger
	failedPaymentDays int
	retainDays        int

	mu      sync.Mutex
	lastRun *time.Time
}

func NewReconciliationService(
	uowFactory unitofwork.RepositoryFactory,
	invoiceService IInvoiceService,
	gateway midtrans.Gateway,
	log logger.ILogger,
	failedPaymentDays int,
	retainDays int,
) IReconciliationService {
	return &reconciliationService{
		uowFactory:        uowFactory,
		invoiceService:    invoiceService,
		gateway:           gateway,
		log:               log,
		failedPaymentDays: failedPaymentDays,
		retainDays:        retainDays,
	}
}

func (s *reconciliationService) ReconcileAllPendingPayments(ctx context.Context) (*dto.ReconcileResult, error) {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Skip payments younger than a few minutes, their webhook is likely
	// still in flight.
	pending, err := uow.PaymentRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.PaymentStatusPending)},
		specification.CreatedBefore{Time: now.Add(-5 * time.Minute)},
	)
	if err != nil {
		return nil, err
	}

	result := &dto.ReconcileResult{}
	for _, payment := range pending {
		result.Processed++
		updated, err := s.reconcilePayment(ctx, payment)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("payment %s: %v", payment.Id, err))
			s.log.Error("reconciliation", "Failed to reconcile payment", map[string]interface{}{
				"payment_id": payment.Id,
				"invoice_id": payment.InvoiceId,
				"error":      err.Error(),
			})
			continue
		}
		if updated {
			result.Updated++
		}
	}

	s.mu.Lock()
	s.lastRun = &now
	s.mu.Unlock()

	s.log.Info("reconciliation", "Pending payment sweep finished", map[string]interface{}{
		"processed": result.Processed,
		"updated":   result.Updated,
		"errors":    len(result.Errors),
	})
	return result, nil
}

func (s *reconciliationService) reconcilePayment(ctx context.Context, payment *entity.Payment) (bool, error) {
	status, err := s.gateway.CheckTransaction(ctx, payment.InvoiceId.String())
	if err != nil {
		return false, err
	}

	mapped, terminal := midtrans.MapTransactionStatus(status.TransactionStatus, status.FraudStatus)
	if !terminal {
		return false, nil
	}

	if err := s.invoiceService.ApplyGatewayStatus(ctx, payment.InvoiceId, mapped, status.TransactionId, status.PaymentType); err != nil {
		return false, err
	}
	return true, nil
}

func (s *reconciliationService) ProcessFailedPayments(ctx context.Context) (*dto.RetrySweepResult, error) {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	failed, err := uow.PaymentRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.PaymentStatusFailed)},
		specification.CreatedAfter{Time: now.AddDate(0, 0, -s.failedPaymentDays)},
	)
	if err != nil {
		return nil, err
	}

	result := &dto.RetrySweepResult{}
	seen := make(map[uuid.UUID]bool)
	for _, payment := range failed {
		if seen[payment.InvoiceId] {
			continue
		}
		seen[payment.InvoiceId] = true
		result.Processed++

		created, err := s.retryInvoiceFor(ctx, uow, payment)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("payment %s: %v", payment.Id, err))
			continue
		}
		if created {
			result.RetriesCreated++
		}
	}

	s.log.Info("reconciliation", "Failed payment sweep finished", map[string]interface{}{
		"processed":       result.Processed,
		"retries_created": result.RetriesCreated,
		"errors":          len(result.Errors),
	})
	return result, nil
}

func (s *reconciliationService) retryInvoiceFor(ctx context.Context, uow unitofwork.UnitOfWork, payment *entity.Payment) (bool, error) {
	inv, err := uow.InvoiceRepository().FindOne(ctx, specification.ByID{ID: payment.InvoiceId})
	if err != nil {
		return false, err
	}
	if inv == nil {
		return false, fmt.Errorf("invoice %s not found", payment.InvoiceId)
	}
	// The store may have paid through another channel since the failure.
	if inv.Status == entity.InvoiceStatusPaid || inv.Status == entity.InvoiceStatusRefunded {
		return false, nil
	}
	// Retry invoices are not themselves retried; the budget hangs off the
	// original.
	if inv.Metadata.Type == entity.InvoiceTypeRetry && inv.Metadata.OriginalInvoiceId != nil {
		original, err := uow.InvoiceRepository().FindOne(ctx, specification.ByID{ID: *inv.Metadata.OriginalInvoiceId})
		if err != nil {
			return false, err
		}
		if original == nil {
			return false, nil
		}
		inv = original
	}

	retry, err := s.invoiceService.CreateRetryInvoice(ctx, inv, payment.Id)
	if err != nil {
		return false, err
	}
	return retry != nil, nil
}

func (s *reconciliationService) CleanupOldPayments(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = s.retainDays
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	removed, err := uow.PaymentRepository().DeleteFailedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.log.Info("reconciliation", "Old failed payments removed", map[string]interface{}{
		"removed": removed,
		"cutoff":  cutoff,
	})
	return removed, nil
}

func (s *reconciliationService) GetReconciliationSummary(ctx context.Context) (*dto.ReconciliationSummary, error) {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	pending, err := uow.PaymentRepository().Count(ctx,
		specification.ByStatus{Status: string(entity.PaymentStatusPending)},
	)
	if err != nil {
		return nil, err
	}

	failed, err := uow.PaymentRepository().Count(ctx,
		specification.ByStatus{Status: string(entity.PaymentStatusFailed)},
		specification.CreatedAfter{Time: now.AddDate(0, 0, -7)},
	)
	if err != nil {
		return nil, err
	}

	overdue, err := uow.InvoiceRepository().Count(ctx,
		specification.ByStatus{Status: string(entity.InvoiceStatusPending)},
		specification.DueBefore{Time: now},
	)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	lastRun := s.lastRun
	s.mu.Unlock()

	return &dto.ReconciliationSummary{
		PendingPayments:    pending,
		FailedPayments7d:   failed,
		OverdueInvoices:    overdue,
		LastReconciliation: lastRun,
	}, nil
}
