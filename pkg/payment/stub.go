package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// StubGateway is an in-memory gateway for development and tests. Signatures
// are HMAC-SHA256 with a fixed secret, same scheme as the real gateway.
type StubGateway struct {
	Secret string
}

func NewStubGateway(secret string) *StubGateway {
	if secret == "" {
		secret = "stub-secret"
	}
	return &StubGateway{Secret: secret}
}

func (g *StubGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*Order, error) {
	return &Order{
		ID:          "order_stub_" + uuid.New().String(),
		AmountMinor: amountMinor,
		Currency:    currency,
		Receipt:     receipt,
		Status:      "created",
	}, nil
}

func (g *StubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return hmac.Equal([]byte(g.Sign(orderID, paymentID)), []byte(signature))
}

// Sign produces a valid signature for the given pair; tests use it to play
// the gateway side of the handshake.
func (g *StubGateway) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(g.Secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *StubGateway) FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("payment not found")
	}
	return &PaymentDetails{ID: paymentID, Status: "captured"}, nil
}
