package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/procureflow/procureflow/internal/pipeline"
)

// CreateInvoice creates an invoice against a pending challan. The backend
// moves the challan to processing as a side effect.
func (c *Client) CreateInvoice(ctx context.Context, token string, input pipeline.CreateInvoiceInput) (pipeline.Invoice, error) {
	var invoice pipeline.Invoice
	err := c.do(ctx, token, http.MethodPost, "/invoices", input, &invoice)
	return invoice, err
}

// GetInvoice fetches a single invoice snapshot.
func (c *Client) GetInvoice(ctx context.Context, token, id string) (pipeline.Invoice, error) {
	var invoice pipeline.Invoice
	err := c.do(ctx, token, http.MethodGet, "/invoices/"+url.PathEscape(id), nil, &invoice)
	return invoice, err
}

// GetInvoiceForChallan fetches the challan's active invoice. Absence
// surfaces as *Error with a 404 status.
func (c *Client) GetInvoiceForChallan(ctx context.Context, token, challanID string) (pipeline.Invoice, error) {
	var invoice pipeline.Invoice
	err := c.do(ctx, token, http.MethodGet, "/challans/"+url.PathEscape(challanID)+"/invoice", nil, &invoice)
	return invoice, err
}

// ListInvoices fetches invoices, optionally filtered by status.
func (c *Client) ListInvoices(ctx context.Context, token string, status pipeline.InvoiceStatus) ([]pipeline.Invoice, error) {
	path := "/invoices"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var invoices []pipeline.Invoice
	err := c.do(ctx, token, http.MethodGet, path, nil, &invoices)
	return invoices, err
}

// DeleteInvoice deletes an unpaid invoice.
func (c *Client) DeleteInvoice(ctx context.Context, token, id string) error {
	return c.do(ctx, token, http.MethodDelete, "/invoices/"+url.PathEscape(id), nil, nil)
}
