package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/procureflow/procureflow/internal/pipeline"
)

// CreateChallan creates a delivery challan from an approved order. The
// backend enforces the one-active-challan-per-order invariant; a duplicate
// surfaces as *Error with the backend's message.
func (c *Client) CreateChallan(ctx context.Context, token, orderID string) (pipeline.Challan, error) {
	var challan pipeline.Challan
	body := map[string]string{"orderId": orderID}
	err := c.do(ctx, token, http.MethodPost, "/challans", body, &challan)
	return challan, err
}

// GetChallan fetches a single challan snapshot.
func (c *Client) GetChallan(ctx context.Context, token, id string) (pipeline.Challan, error) {
	var challan pipeline.Challan
	err := c.do(ctx, token, http.MethodGet, "/challans/"+url.PathEscape(id), nil, &challan)
	return challan, err
}

// GetChallanForOrder fetches the order's active challan. Absence surfaces
// as *Error with a 404 status.
func (c *Client) GetChallanForOrder(ctx context.Context, token, orderID string) (pipeline.Challan, error) {
	var challan pipeline.Challan
	err := c.do(ctx, token, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/challan", nil, &challan)
	return challan, err
}

// ListChallans fetches challans, optionally filtered by status.
func (c *Client) ListChallans(ctx context.Context, token string, status pipeline.ChallanStatus) ([]pipeline.Challan, error) {
	path := "/challans"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var challans []pipeline.Challan
	err := c.do(ctx, token, http.MethodGet, path, nil, &challans)
	return challans, err
}
