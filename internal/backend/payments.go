package backend

import (
	"context"
	"net/http"

	"github.com/procureflow/procureflow/internal/gateway"
	"github.com/procureflow/procureflow/internal/pipeline"
)

// CreateCheckout asks the backend for a gateway checkout session covering
// the invoice's grand total. The gateway order id and amount are
// server-supplied; the coordinator never computes them.
func (c *Client) CreateCheckout(ctx context.Context, token, invoiceID string) (gateway.CheckoutSession, error) {
	var session gateway.CheckoutSession
	body := map[string]string{"invoiceId": invoiceID}
	err := c.do(ctx, token, http.MethodPost, "/payments/checkout", body, &session)
	return session, err
}

// VerifyPayment forwards the widget's signed tuple for authoritative
// verification and returns the settled invoice on success.
func (c *Client) VerifyPayment(ctx context.Context, token string, input pipeline.VerifyPaymentInput) (pipeline.Invoice, error) {
	var invoice pipeline.Invoice
	err := c.do(ctx, token, http.MethodPost, "/payments/verify", input, &invoice)
	return invoice, err
}
