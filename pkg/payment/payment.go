package payment

import (
	"context"
)

// Order is the gateway-side handle created in phase 1 of a coin purchase.
type Order struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

// PaymentDetails is the gateway's record of a captured payment.
type PaymentDetails struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Method      string `json:"method"`
	Email       string `json:"email"`
	Contact     string `json:"contact"`
}

// Gateway is the payment gateway collaborator. The gateway is opaque and
// untrusted: a failed signature check always aborts the credit.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error)
}
