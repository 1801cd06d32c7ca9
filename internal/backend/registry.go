package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/procureflow/procureflow/internal/registry"
)

// ListPendingVendors fetches vendor registrations awaiting review.
func (c *Client) ListPendingVendors(ctx context.Context, token string) ([]registry.VendorApplication, error) {
	var apps []registry.VendorApplication
	err := c.do(ctx, token, http.MethodGet, "/registry/vendors?status=pending", nil, &apps)
	return apps, err
}

// ListPendingCompanies fetches company registrations awaiting review.
func (c *Client) ListPendingCompanies(ctx context.Context, token string) ([]registry.CompanyApplication, error) {
	var apps []registry.CompanyApplication
	err := c.do(ctx, token, http.MethodGet, "/registry/companies?status=pending", nil, &apps)
	return apps, err
}

// ListPendingProducts fetches product submissions awaiting review.
func (c *Client) ListPendingProducts(ctx context.Context, token string) ([]registry.ProductSubmission, error) {
	var subs []registry.ProductSubmission
	err := c.do(ctx, token, http.MethodGet, "/registry/products?status=pending", nil, &subs)
	return subs, err
}

// DecideRegistry approves or rejects a registry submission of the given
// kind ("vendors", "companies" or "products").
func (c *Client) DecideRegistry(ctx context.Context, token, kind, id string, approve bool, reason string) error {
	body := map[string]any{"approve": approve, "reason": reason}
	return c.do(ctx, token, http.MethodPost, "/registry/"+url.PathEscape(kind)+"/"+url.PathEscape(id)+"/decision", body, nil)
}
