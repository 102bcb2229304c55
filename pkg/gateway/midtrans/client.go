package midtrans

import (
	"context"
	"crypto/sha512"
	"fmt"
	"time"

	mid "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// GatewayName is recorded on payment rows created through this client.
const GatewayName = "midtrans"

// Gateway is the payment-gateway surface the billing services depend on.
// Reconciliation only needs CheckTransaction; checkout needs Snap sessions.
type Gateway interface {
	CreateSnapTransaction(req *SnapRequest) (*SnapSession, error)
	CheckTransaction(ctx context.Context, orderId string) (*StatusResult, error)
	VerifySignature(orderId, statusCode, grossAmount, signatureKey string) bool
}

type SnapRequest struct {
	OrderId     string
	GrossAmount int64
	ItemId      string
	ItemName    string
	Email       string
	FullName    string
	Phone       string
	FinishURL   string
}

type SnapSession struct {
	Token       string
	RedirectURL string
}

// StatusResult is the gateway's authoritative view of a transaction.
type StatusResult struct {
	OrderId           string
	TransactionId     string
	TransactionStatus string
	FraudStatus       string
	PaymentType       string
}

type Client struct {
	snapClient snap.Client
	coreClient coreapi.Client
	serverKey  string
	timeout    time.Duration
}

func NewClient(serverKey string, production bool, timeout time.Duration) *Client {
	env := mid.Sandbox
	if production {
		env = mid.Production
	}

	c := &Client{
		serverKey: serverKey,
		timeout:   timeout,
	}
	c.snapClient.New(serverKey, env)
	c.coreClient.New(serverKey, env)
	return c
}

func (c *Client) CreateSnapTransaction(req *SnapRequest) (*SnapSession, error) {
	snapReq := &snap.Request{
		TransactionDetails: mid.TransactionDetails{
			OrderID:  req.OrderId,
			GrossAmt: req.GrossAmount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		CustomerDetail: &mid.CustomerDetails{
			FName: req.FullName,
			Email: req.Email,
			Phone: req.Phone,
		},
		Items: &[]mid.ItemDetails{
			{
				ID:    req.ItemId,
				Price: req.GrossAmount,
				Qty:   1,
				Name:  req.ItemName,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}
	if req.FinishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: req.FinishURL}
	}

	resp, midErr := c.snapClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans snap error: %v", midErr.GetMessage())
	}

	return &SnapSession{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// CheckTransaction queries the gateway with a bounded timeout. The SDK call
// itself is not context-aware, so it runs on a goroutine and the result is
// abandoned if the deadline passes first.
func (c *Client) CheckTransaction(ctx context.Context, orderId string) (*StatusResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		res *coreapi.TransactionStatusResponse
		err error
	}
	ch := make(chan outcome, 1)

	go func() {
		res, midErr := c.coreClient.CheckTransaction(orderId)
		if midErr != nil {
			ch <- outcome{err: fmt.Errorf("midtrans status error: %v", midErr.GetMessage())}
			return
		}
		ch <- outcome{res: res}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("gateway status query timed out for order %s: %w", orderId, ctx.Err())
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		return &StatusResult{
			OrderId:           out.res.OrderID,
			TransactionId:     out.res.TransactionID,
			TransactionStatus: out.res.TransactionStatus,
			FraudStatus:       out.res.FraudStatus,
			PaymentType:       out.res.PaymentType,
		}, nil
	}
}

// VerifySignature checks the webhook signature:
// SHA512(order_id + status_code + gross_amount + server_key).
func (c *Client) VerifySignature(orderId, statusCode, grossAmount, signatureKey string) bool {
	input := orderId + statusCode + grossAmount + c.serverKey
	expected := fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
	return signatureKey == expected
}
