package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/procureflow/procureflow/internal/pipeline"
)

// CreateOrder places a new order.
func (c *Client) CreateOrder(ctx context.Context, token string, input pipeline.PlaceOrderInput) (pipeline.Order, error) {
	var order pipeline.Order
	err := c.do(ctx, token, http.MethodPost, "/orders", input, &order)
	return order, err
}

// GetOrder fetches a single order snapshot.
func (c *Client) GetOrder(ctx context.Context, token, id string) (pipeline.Order, error) {
	var order pipeline.Order
	err := c.do(ctx, token, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &order)
	return order, err
}

// ListOrders fetches orders, optionally filtered by status.
func (c *Client) ListOrders(ctx context.Context, token string, status pipeline.OrderStatus) ([]pipeline.Order, error) {
	path := "/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var orders []pipeline.Order
	err := c.do(ctx, token, http.MethodGet, path, nil, &orders)
	return orders, err
}

// ApproveOrder marks a pending order approved by its vendor.
func (c *Client) ApproveOrder(ctx context.Context, token, id string) (pipeline.Order, error) {
	var order pipeline.Order
	err := c.do(ctx, token, http.MethodPost, "/orders/"+url.PathEscape(id)+"/approve", nil, &order)
	return order, err
}

// RejectOrder marks a pending order rejected, attaching the reason.
func (c *Client) RejectOrder(ctx context.Context, token, id, reason string) (pipeline.Order, error) {
	var order pipeline.Order
	body := map[string]string{"reason": reason}
	err := c.do(ctx, token, http.MethodPost, "/orders/"+url.PathEscape(id)+"/reject", body, &order)
	return order, err
}

// AssignDeliveryPartner sets the order's delivery partner.
func (c *Client) AssignDeliveryPartner(ctx context.Context, token, orderID, partnerID string) (pipeline.Order, error) {
	var order pipeline.Order
	body := map[string]string{"partnerId": partnerID}
	err := c.do(ctx, token, http.MethodPatch, "/orders/"+url.PathEscape(orderID)+"/delivery-partner", body, &order)
	return order, err
}

// RemoveDeliveryPartner clears the order's delivery partner assignment.
func (c *Client) RemoveDeliveryPartner(ctx context.Context, token, orderID string) (pipeline.Order, error) {
	var order pipeline.Order
	err := c.do(ctx, token, http.MethodDelete, "/orders/"+url.PathEscape(orderID)+"/delivery-partner", nil, &order)
	return order, err
}
