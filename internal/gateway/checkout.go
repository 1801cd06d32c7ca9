// Package gateway models the hosted payment checkout boundary. The widget
// itself runs in the buyer's browser; this package only carries the
// parameters the backend supplies for opening it and the signed tuple the
// widget hands back, which is forwarded verbatim for authoritative
// verification upstream.
package gateway

import (
	"errors"

	"github.com/shopspring/decimal"
)

// CheckoutSession holds the server-supplied parameters required to open the
// hosted checkout for an invoice.
type CheckoutSession struct {
	GatewayOrderID string          `json:"gatewayOrderId"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	KeyID          string          `json:"keyId"`
}

// Callback is the signed confirmation tuple produced by the checkout widget
// after a successful capture.
type Callback struct {
	GatewayOrderID   string `json:"gatewayOrderId" validate:"required"`
	GatewayPaymentID string `json:"gatewayPaymentId" validate:"required"`
	GatewaySignature string `json:"gatewaySignature" validate:"required"`
}

// Validate checks that every field of the tuple is present. The signature's
// cryptographic validity is decided upstream, never here.
func (c Callback) Validate() error {
	if c.GatewayOrderID == "" || c.GatewayPaymentID == "" || c.GatewaySignature == "" {
		return errors.New("gateway: callback tuple incomplete")
	}
	return nil
}
