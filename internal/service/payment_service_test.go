package service

import (
	"context"
	"testing"
	"time"

	"pos-billing-be/internal/dto"
	"pos-billing-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newPaymentService(f *fakeStore, gw *fakeGateway) (IPaymentService, IInvoiceService) {
	invSvc := NewInvoiceService(f, &fakeSequencer{}, nil, nil, 7, 3)
	paySvc := NewPaymentService(f, invSvc, gw, "https://pos.example/billing?payment=done")
	return paySvc, invSvc
}

func TestCheckout(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, basic, time.Now())
	gw := newFakeGateway()
	paySvc, invSvc := newPaymentService(f, gw)
	ctx := context.Background()

	inv, err := invSvc.CreateInitialInvoice(ctx, subById(f, sub.Id), basic)
	assert.NoError(t, err)

	res, err := paySvc.Checkout(ctx, storeId, &dto.CheckoutRequest{
		InvoiceId: inv.Id,
		Email:     "owner@example.com",
		FullName:  "Owner",
	})
	assert.NoError(t, err)
	assert.Equal(t, inv.Id, res.InvoiceId)
	assert.Equal(t, "snap-token-"+inv.Id.String(), res.SnapToken)

	// A pending payment row is opened for the reconciliation sweep to track.
	if assert.Len(t, f.payments, 1) {
		assert.Equal(t, entity.PaymentStatusPending, f.payments[0].Status)
		assert.Equal(t, inv.TotalAmount, f.payments[0].Amount)
		assert.Equal(t, "midtrans", f.payments[0].Gateway)
	}
}

func TestCheckout_RejectsForeignInvoice(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	sub := seedSubscription(f, uuid.New(), basic, time.Now())
	gw := newFakeGateway()
	paySvc, invSvc := newPaymentService(f, gw)
	ctx := context.Background()

	inv, err := invSvc.CreateInitialInvoice(ctx, subById(f, sub.Id), basic)
	assert.NoError(t, err)

	_, err = paySvc.Checkout(ctx, uuid.New(), &dto.CheckoutRequest{
		InvoiceId: inv.Id,
		Email:     "other@example.com",
		FullName:  "Other",
	})
	assert.Error(t, err)
}

func TestCheckout_RejectsSettledInvoice(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, basic, time.Now())
	gw := newFakeGateway()
	paySvc, invSvc := newPaymentService(f, gw)
	ctx := context.Background()

	inv, err := invSvc.CreateInitialInvoice(ctx, subById(f, sub.Id), basic)
	assert.NoError(t, err)
	err = invSvc.ApplyGatewayStatus(ctx, inv.Id, entity.PaymentStatusCompleted, "tx", "qris")
	assert.NoError(t, err)

	_, err = paySvc.Checkout(ctx, storeId, &dto.CheckoutRequest{
		InvoiceId: inv.Id,
		Email:     "owner@example.com",
		FullName:  "Owner",
	})
	assert.Error(t, err)
}

func TestHandleNotification_RejectsBadSignature(t *testing.T) {
	f := newFakeStore()
	gw := newFakeGateway()
	paySvc, _ := newPaymentService(f, gw)

	err := paySvc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           uuid.New().String(),
		TransactionStatus: "settlement",
		SignatureKey:      "forged",
	})
	assert.Error(t, err)
}

func TestHandleNotification_IgnoresNonTerminalStatus(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, basic, time.Now())
	gw := newFakeGateway()
	paySvc, invSvc := newPaymentService(f, gw)
	ctx := context.Background()

	inv, err := invSvc.CreateInitialInvoice(ctx, subById(f, sub.Id), basic)
	assert.NoError(t, err)

	err = paySvc.HandleNotification(ctx, &dto.MidtransWebhookRequest{
		OrderId:           inv.Id.String(),
		TransactionStatus: "pending",
		SignatureKey:      "valid",
	})
	assert.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPending, invoiceById(f, inv.Id).Status)
}

func TestHandleNotification_SettlementPaysInvoice(t *testing.T) {
	f := newFakeStore()
	basic := seedBasicPlan(f)
	storeId := uuid.New()
	sub := seedSubscription(f, storeId, basic, time.Now())
	gw := newFakeGateway()
	paySvc, invSvc := newPaymentService(f, gw)
	ctx := context.Background()

	inv, err := invSvc.CreateInitialInvoice(ctx, subById(f, sub.Id), basic)
	assert.NoError(t, err)

	_, err = paySvc.Checkout(ctx, storeId, &dto.CheckoutRequest{
		InvoiceId: inv.Id,
		Email:     "owner@example.com",
		FullName:  "Owner",
	})
	assert.NoError(t, err)

	err = paySvc.HandleNotification(ctx, &dto.MidtransWebhookRequest{
		OrderId:           inv.Id.String(),
		TransactionId:     "mid-settle-1",
		TransactionStatus: "settlement",
		SignatureKey:      "valid",
		PaymentType:       "qris",
	})
	assert.NoError(t, err)

	assert.Equal(t, entity.InvoiceStatusPaid, invoiceById(f, inv.Id).Status)

	// The pending row from checkout carries the verdict, no duplicate appears.
	if assert.Len(t, f.payments, 1) {
		assert.Equal(t, entity.PaymentStatusCompleted, f.payments[0].Status)
		assert.Equal(t, "mid-settle-1", f.payments[0].GatewayTransactionId)
	}
}

func TestHandleNotification_RejectsMalformedOrderId(t *testing.T) {
	f := newFakeStore()
	gw := newFakeGateway()
	paySvc, _ := newPaymentService(f, gw)

	err := paySvc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           "ORDER-123",
		TransactionStatus: "settlement",
		SignatureKey:      "valid",
	})
	assert.Error(t, err)
}
