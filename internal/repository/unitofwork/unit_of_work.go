package unitofwork

import (
	"context"

	"pos-billing-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PlanRepository() contract.PlanRepository
	SubscriptionRepository() contract.SubscriptionRepository
	UsageRepository() contract.UsageRepository
	InvoiceRepository() contract.InvoiceRepository
	PaymentRepository() contract.PaymentRepository
	StoreRepository() contract.StoreRepository
	UserRepository() contract.UserRepository
	LeadRepository() contract.LeadRepository
}
