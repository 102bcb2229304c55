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
	"pos-billing-be/pkg/gateway/midtrans"

	"github.com/google/uuid"
)

type IPaymentService interface {
	// Checkout opens a Snap session for a pending invoice. The invoice id is
	// the gateway order id, so webhooks and reconciliation can always find
	// their way back.
	Checkout(ctx context.Context, storeId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)

	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
}

type paymentService struct {
	uowFactory     unitofwork.RepositoryFactory
	invoiceService IInvoiceService
	gateway        midtrans.Gateway
	finishURL      string
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	invoiceService IInvoiceService,
	gateway midtrans.Gateway,
	finishURL string,
) IPaymentService {
	return &paymentService{
		uowFactory:     uowFactory,
		invoiceService: invoiceService,
		gateway:        gateway,
		finishURL:      finishURL,
	}
}

func (s *paymentService) Checkout(ctx context.Context, storeId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	now := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	inv, err := uow.InvoiceRepository().FindOne(ctx, specification.ByID{ID: req.InvoiceId})
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, errors.New("invoice not found")
	}
	if inv.Status != entity.InvoiceStatusPending {
		return nil, fmt.Errorf("invoice %s is %s, only pending invoices can be paid", inv.InvoiceNumber, inv.Status)
	}

	// The invoice must belong to the calling store.
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: inv.SubscriptionId})
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.StoreId != storeId {
		return nil, errors.New("invoice not found")
	}

	payment := &entity.Payment{
		Id:        uuid.New(),
		InvoiceId: inv.Id,
		Gateway:   midtrans.GatewayName,
		Status:    entity.PaymentStatusPending,
		Amount:    inv.TotalAmount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateSnapTransaction(&midtrans.SnapRequest{
		OrderId:     inv.Id.String(),
		GrossAmount: inv.TotalAmount,
		ItemId:      inv.SubscriptionId.String(),
		ItemName:    inv.InvoiceNumber,
		Email:       req.Email,
		FullName:    req.FullName,
		Phone:       req.Phone,
		FinishURL:   s.finishURL,
	})
	if err != nil {
		return nil, err
	}

	return &dto.CheckoutResponse{
		InvoiceId:       inv.Id,
		InvoiceNumber:   inv.InvoiceNumber,
		SnapToken:       session.Token,
		SnapRedirectUrl: session.RedirectURL,
	}, nil
}

func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	fmt.Printf("[WEBHOOK] OrderId: %s | Status: %s\n", req.OrderId, req.TransactionStatus)

	if !s.gateway.VerifySignature(req.OrderId, req.StatusCode, req.GrossAmount, req.SignatureKey) {
		fmt.Printf("[WEBHOOK ERROR] Signature mismatch for OrderId=%s\n", req.OrderId)
		return errors.New("invalid signature")
	}

	invoiceId, err := uuid.Parse(req.OrderId)
	if err != nil {
		return errors.New("invalid order id format")
	}

	status, terminal := midtrans.MapTransactionStatus(req.TransactionStatus, req.FraudStatus)
	if !terminal {
		// Pending and challenge notifications carry no verdict yet.
		return nil
	}

	return s.invoiceService.ApplyGatewayStatus(ctx, invoiceId, status, req.TransactionId, req.PaymentType)
}
