package pipeline

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order lifecycle statuses as reported by the backend.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusApproved   OrderStatus = "approved"
	OrderStatusRejected   OrderStatus = "rejected"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Payment statuses shared by orders and invoices.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Delivery challan statuses.
type ChallanStatus string

const (
	ChallanStatusPending    ChallanStatus = "pending"
	ChallanStatusProcessing ChallanStatus = "processing"
	ChallanStatusCompleted  ChallanStatus = "completed"
	ChallanStatusCancelled  ChallanStatus = "cancelled"
)

// Invoice statuses.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusIssued    InvoiceStatus = "issued"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Escalation statuses.
type EscalationStatus string

const (
	EscalationStatusPending   EscalationStatus = "pending"
	EscalationStatusApproved  EscalationStatus = "approved"
	EscalationStatusRejected  EscalationStatus = "rejected"
	EscalationStatusCancelled EscalationStatus = "cancelled"
)

// Delivery assignment states for an order.
type DeliveryStatus string

const (
	DeliveryNotAssigned DeliveryStatus = "not-assigned"
	DeliveryAssigned    DeliveryStatus = "assigned"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Order is a read-only snapshot of a backend order. The coordinator never
// mutates it in place; every change round-trips through the backend and the
// snapshot is refetched.
type Order struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	CompanyID         string          `json:"companyId"`
	PlacedBy          string          `json:"placedBy"`
	VendorID          string          `json:"vendorId"`
	Items             []OrderItem     `json:"items"`
	Total             decimal.Decimal `json:"total"`
	Status            OrderStatus     `json:"status"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	DeliveryPartnerID string          `json:"deliveryPartnerId,omitempty"`
	DeliveryStatus    DeliveryStatus  `json:"deliveryStatus"`
	Escalated         bool            `json:"escalated"`
	RejectReason      string          `json:"rejectReason,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Challan is a delivery challan snapshot issued by a vendor for an
// approved order.
type Challan struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	OrderID   string          `json:"orderId"`
	VendorID  string          `json:"vendorId"`
	CompanyID string          `json:"companyId"`
	Items     []OrderItem     `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Status    ChallanStatus   `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// PaymentRecord captures the gateway references attached to a paid invoice.
type PaymentRecord struct {
	GatewayOrderID   string     `json:"gatewayOrderId"`
	GatewayPaymentID string     `json:"gatewayPaymentId"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
}

// Invoice snapshot, created by an admin against a challan.
type Invoice struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	OrderID       string          `json:"orderId"`
	ChallanID     string          `json:"challanId"`
	CompanyID     string          `json:"companyId"`
	VendorID      string          `json:"vendorId"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"taxTotal"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	Status        InvoiceStatus   `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	Payment       *PaymentRecord  `json:"payment,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Escalation is a request to exceed a spending limit, holding a snapshot of
// the order the requester wanted to place.
type Escalation struct {
	ID              string           `json:"id"`
	Number          string           `json:"number"`
	RequestedBy     string           `json:"requestedBy"`
	CompanyID       string           `json:"companyId"`
	Items           []OrderItem      `json:"items"`
	Total           decimal.Decimal  `json:"total"`
	Status          EscalationStatus `json:"status"`
	Reason          string           `json:"reason"`
	RespondedBy     string           `json:"respondedBy,omitempty"`
	ResponseMessage string           `json:"responseMessage,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}
