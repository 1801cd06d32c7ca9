package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow/internal/audit"
	"github.com/procureflow/procureflow/internal/gateway"
	"github.com/procureflow/procureflow/internal/limits"
	"github.com/procureflow/procureflow/internal/shared"
)

// OrderItemInput is one cart line submitted at placement.
type OrderItemInput struct {
	ProductID string          `json:"productId" validate:"required"`
	Qty       int             `json:"qty" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// PlaceOrderInput is the placement payload.
type PlaceOrderInput struct {
	Items []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Notes string           `json:"notes,omitempty"`
}

// CreateInvoiceInput is the admin invoicing payload.
type CreateInvoiceInput struct {
	ChallanID string `json:"challanId" validate:"required"`
	Notes     string `json:"notes,omitempty"`
}

// VerifyPaymentInput carries the signed tuple plus the invoice it settles.
type VerifyPaymentInput struct {
	InvoiceID string           `json:"invoiceId" validate:"required"`
	Callback  gateway.Callback `json:"callback"`
}

// CreateEscalationInput snapshots the over-limit order being requested.
type CreateEscalationInput struct {
	Items  []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Reason string           `json:"reason" validate:"required"`
}

// EscalationDecision is the outcome of deciding an escalation. Order is
// non-nil only on approval: the backend places the order from the stored
// snapshot so the requester does not re-run the limit check.
type EscalationDecision struct {
	Escalation Escalation `json:"escalation"`
	Order      *Order     `json:"order,omitempty"`
}

// BackendPort describes the upstream calls the coordinator performs. Every
// call is authenticated with the session's bearer token and is the sole way
// authoritative state changes.
type BackendPort interface {
	CreateOrder(ctx context.Context, token string, input PlaceOrderInput) (Order, error)
	GetOrder(ctx context.Context, token, id string) (Order, error)
	ListOrders(ctx context.Context, token string, status OrderStatus) ([]Order, error)
	ApproveOrder(ctx context.Context, token, id string) (Order, error)
	RejectOrder(ctx context.Context, token, id, reason string) (Order, error)
	AssignDeliveryPartner(ctx context.Context, token, orderID, partnerID string) (Order, error)
	RemoveDeliveryPartner(ctx context.Context, token, orderID string) (Order, error)

	CreateChallan(ctx context.Context, token, orderID string) (Challan, error)
	GetChallan(ctx context.Context, token, id string) (Challan, error)
	GetChallanForOrder(ctx context.Context, token, orderID string) (Challan, error)

	CreateInvoice(ctx context.Context, token string, input CreateInvoiceInput) (Invoice, error)
	GetInvoice(ctx context.Context, token, id string) (Invoice, error)
	GetInvoiceForChallan(ctx context.Context, token, challanID string) (Invoice, error)
	ListInvoices(ctx context.Context, token string, status InvoiceStatus) ([]Invoice, error)
	DeleteInvoice(ctx context.Context, token, id string) error

	CreateCheckout(ctx context.Context, token, invoiceID string) (gateway.CheckoutSession, error)
	VerifyPayment(ctx context.Context, token string, input VerifyPaymentInput) (Invoice, error)

	CreateEscalation(ctx context.Context, token string, input CreateEscalationInput) (Escalation, error)
	GetEscalation(ctx context.Context, token, id string) (Escalation, error)
	ListEscalations(ctx context.Context, token string, status EscalationStatus) ([]Escalation, error)
	DecideEscalation(ctx context.Context, token, id string, approve bool, message string) (EscalationDecision, error)
}

// AuditPort records successful transitions. Best effort.
type AuditPort interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// upstreamError is implemented by the backend client's error type.
type upstreamError interface {
	error
	HTTPStatus() int
	UpstreamMessage() string
}

// Service coordinates the fulfillment pipeline: it enforces each
// operation's local precondition, performs the backend side effect, records
// the transition and returns a refetched snapshot. It never retries and
// never patches local state ahead of backend confirmation.
type Service struct {
	backend BackendPort
	audit   AuditPort
	logger  *slog.Logger
}

// NewService constructs the coordinator.
func NewService(backendPort BackendPort, auditPort AuditPort, logger *slog.Logger) *Service {
	return &Service{backend: backendPort, audit: auditPort, logger: logger}
}

func (s *Service) session(ctx context.Context) (string, *shared.Profile, error) {
	token := shared.TokenFromContext(ctx)
	actor := shared.ActorFromContext(ctx)
	if token == "" || actor == nil {
		return "", nil, shared.ErrSessionMissing
	}
	return token, actor, nil
}

// fail converts a backend error into the operation's RequestFailure,
// keeping the backend's message verbatim when present.
func fail(op Operation, err error, fallback string) error {
	var ue upstreamError
	if errors.As(err, &ue) {
		message := ue.UpstreamMessage()
		if message == "" {
			message = fallback
		}
		return &RequestFailure{Op: op, Status: ue.HTTPStatus(), Message: message}
	}
	return &RequestFailure{Op: op, Message: fallback + ": " + err.Error()}
}

func orderTotal(items []OrderItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return total
}

// PlaceOrder places an order when the actor's spend controls allow it.
// When the total exceeds the remaining monthly limit (and no unlimited
// override applies) it performs no network call and reports
// ErrEscalationRequired so the caller can take the escalation path.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (Order, error) {
	const op = OpPlaceOrder
	token, actor, err := s.session(ctx)
	if err != nil {
		return Order{}, err
	}
	if len(input.Items) == 0 {
		return Order{}, validationErr(op, "cart is empty")
	}
	for _, item := range input.Items {
		if item.ProductID == "" || item.Qty <= 0 {
			return Order{}, validationErr(op, "invalid cart line")
		}
	}
	total := orderTotal(input.Items)
	if !limits.FromProfile(actor).Allows(total) {
		return Order{}, ErrEscalationRequired
	}

	created, err := s.backend.CreateOrder(ctx, token, input)
	if err != nil {
		return Order{}, fail(op, err, "failed to place order")
	}
	s.record(ctx, actor, op, "order", created.ID, map[string]any{"number": created.Number, "total": created.Total})
	return s.refetchOrder(ctx, token, created)
}

// RequestEscalation files a spend-limit escalation for an over-limit cart.
func (s *Service) RequestEscalation(ctx context.Context, input CreateEscalationInput) (Escalation, error) {
	const op = OpRequestEscalation
	token, actor, err := s.session(ctx)
	if err != nil {
		return Escalation{}, err
	}
	if len(input.Items) == 0 {
		return Escalation{}, validationErr(op, "cart is empty")
	}
	if input.Reason == "" {
		return Escalation{}, validationErr(op, "reason is required")
	}
	total := orderTotal(input.Items)
	if limits.FromProfile(actor).Allows(total) {
		return Escalation{}, validationErr(op, "order is within the monthly limit; place it directly")
	}

	created, err := s.backend.CreateEscalation(ctx, token, input)
	if err != nil {
		return Escalation{}, fail(op, err, "failed to request escalation")
	}
	s.record(ctx, actor, op, "escalation", created.ID, map[string]any{"number": created.Number, "total": created.Total})
	if fresh, err := s.backend.GetEscalation(ctx, token, created.ID); err == nil {
		return fresh, nil
	}
	return created, nil
}

// DecideEscalation approves or rejects a pending escalation. Rejection
// requires a response message.
func (s *Service) DecideEscalation(ctx context.Context, id string, approve bool, message string) (EscalationDecision, error) {
	const op = OpDecideEscalation
	token, actor, err := s.session(ctx)
	if err != nil {
		return EscalationDecision{}, err
	}
	escalation, err := s.backend.GetEscalation(ctx, token, id)
	if err != nil {
		return EscalationDecision{}, fail(op, err, "failed to load escalation")
	}
	if escalation.Status != EscalationStatusPending {
		return EscalationDecision{}, validationErr(op, "escalation is %s, not pending", escalation.Status)
	}
	if !approve && message == "" {
		return EscalationDecision{}, validationErr(op, "a message is required when rejecting")
	}

	decision, err := s.backend.DecideEscalation(ctx, token, id, approve, message)
	if err != nil {
		return EscalationDecision{}, fail(op, err, "failed to decide escalation")
	}
	s.record(ctx, actor, op, "escalation", id, map[string]any{"approve": approve})
	if fresh, err := s.backend.GetEscalation(ctx, token, id); err == nil {
		decision.Escalation = fresh
	}
	if decision.Order != nil {
		if fresh, err := s.backend.GetOrder(ctx, token, decision.Order.ID); err == nil {
			decision.Order = &fresh
		}
	}
	return decision, nil
}

// VendorApprove marks a pending order approved.
func (s *Service) VendorApprove(ctx context.Context, orderID string) (Order, error) {
	const op = OpVendorApprove
	token, actor, err := s.session(ctx)
	if err != nil {
		return Order{}, err
	}
	order, err := s.backend.GetOrder(ctx, token, orderID)
	if err != nil {
		return Order{}, fail(op, err, "failed to load order")
	}
	if !Allows(StateOf(&order, nil, nil), op) {
		return Order{}, validationErr(op, "order is %s, not pending", order.Status)
	}

	if _, err := s.backend.ApproveOrder(ctx, token, orderID); err != nil {
		return Order{}, fail(op, err, "failed to approve order")
	}
	s.record(ctx, actor, op, "order", orderID, map[string]any{"number": order.Number})
	return s.refetchOrder(ctx, token, order)
}

// VendorReject marks a pending order rejected. A reason is mandatory and
// calling it out of state fails loudly rather than being ignored.
func (s *Service) VendorReject(ctx context.Context, orderID, reason string) (Order, error) {
	const op = OpVendorReject
	token, actor, err := s.session(ctx)
	if err != nil {
		return Order{}, err
	}
	if reason == "" {
		return Order{}, validationErr(op, "a rejection reason is required")
	}
	order, err := s.backend.GetOrder(ctx, token, orderID)
	if err != nil {
		return Order{}, fail(op, err, "failed to load order")
	}
	if !Allows(StateOf(&order, nil, nil), op) {
		return Order{}, validationErr(op, "order is %s, not pending", order.Status)
	}

	if _, err := s.backend.RejectOrder(ctx, token, orderID, reason); err != nil {
		return Order{}, fail(op, err, "failed to reject order")
	}
	s.record(ctx, actor, op, "order", orderID, map[string]any{"number": order.Number, "reason": reason})
	return s.refetchOrder(ctx, token, order)
}

// CreateChallan issues a delivery challan for an approved order. The
// backend is the source of truth for "a challan already exists"; its error
// message is surfaced verbatim.
func (s *Service) CreateChallan(ctx context.Context, orderID string) (Challan, error) {
	const op = OpCreateChallan
	token, actor, err := s.session(ctx)
	if err != nil {
		return Challan{}, err
	}
	order, err := s.backend.GetOrder(ctx, token, orderID)
	if err != nil {
		return Challan{}, fail(op, err, "failed to load order")
	}
	if !Allows(StateOf(&order, nil, nil), op) {
		return Challan{}, validationErr(op, "order is %s, not approved", order.Status)
	}

	created, err := s.backend.CreateChallan(ctx, token, orderID)
	if err != nil {
		return Challan{}, fail(op, err, "failed to create delivery challan")
	}
	s.record(ctx, actor, op, "challan", created.ID, map[string]any{"number": created.Number, "orderId": orderID})
	if fresh, err := s.backend.GetChallan(ctx, token, created.ID); err == nil {
		return fresh, nil
	}
	return created, nil
}

// CreateInvoice creates an invoice against a pending challan.
func (s *Service) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (Invoice, error) {
	const op = OpCreateInvoice
	token, actor, err := s.session(ctx)
	if err != nil {
		return Invoice{}, err
	}
	challan, err := s.backend.GetChallan(ctx, token, input.ChallanID)
	if err != nil {
		return Invoice{}, fail(op, err, "failed to load challan")
	}
	if challan.Status != ChallanStatusPending {
		return Invoice{}, validationErr(op, "challan is %s, not pending", challan.Status)
	}
	if challan.OrderID == "" {
		return Invoice{}, validationErr(op, "challan has no linked order")
	}

	created, err := s.backend.CreateInvoice(ctx, token, input)
	if err != nil {
		return Invoice{}, fail(op, err, "failed to create invoice")
	}
	s.record(ctx, actor, op, "invoice", created.ID, map[string]any{"number": created.Number, "challanId": input.ChallanID})
	if fresh, err := s.backend.GetInvoice(ctx, token, created.ID); err == nil {
		return fresh, nil
	}
	return created, nil
}

// InitiatePayment opens a gateway checkout for an unpaid invoice. The
// gateway order id and amount are supplied by the backend.
func (s *Service) InitiatePayment(ctx context.Context, invoiceID string) (gateway.CheckoutSession, error) {
	const op = OpInitiatePayment
	token, _, err := s.session(ctx)
	if err != nil {
		return gateway.CheckoutSession{}, err
	}
	invoice, err := s.backend.GetInvoice(ctx, token, invoiceID)
	if err != nil {
		return gateway.CheckoutSession{}, fail(op, err, "failed to load invoice")
	}
	if invoice.Status == InvoiceStatusCancelled {
		return gateway.CheckoutSession{}, validationErr(op, "invoice is cancelled")
	}
	if invoice.PaymentStatus != PaymentStatusPending && invoice.PaymentStatus != PaymentStatusFailed {
		return gateway.CheckoutSession{}, validationErr(op, "invoice payment is %s", invoice.PaymentStatus)
	}

	session, err := s.backend.CreateCheckout(ctx, token, invoiceID)
	if err != nil {
		return gateway.CheckoutSession{}, fail(op, err, "failed to initiate payment")
	}
	return session, nil
}

// VerifyPayment forwards the checkout widget's signed tuple for
// authoritative verification. A backend rejection after a successful
// capture is reported as PaymentVerificationFailure, never as a plain
// request failure, and the invoice snapshot is left untouched.
func (s *Service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (Invoice, error) {
	const op = OpVerifyPayment
	token, actor, err := s.session(ctx)
	if err != nil {
		return Invoice{}, err
	}
	if input.InvoiceID == "" {
		return Invoice{}, validationErr(op, "invoice id is required")
	}
	if err := input.Callback.Validate(); err != nil {
		return Invoice{}, validationErr(op, "%s", err.Error())
	}

	invoice, err := s.backend.VerifyPayment(ctx, token, input)
	if err != nil {
		var ue upstreamError
		if errors.As(err, &ue) {
			message := ue.UpstreamMessage()
			if message == "" {
				message = "payment verification rejected"
			}
			return Invoice{}, &PaymentVerificationFailure{InvoiceID: input.InvoiceID, Message: message}
		}
		return Invoice{}, fail(op, err, "failed to verify payment")
	}
	s.record(ctx, actor, op, "invoice", input.InvoiceID, map[string]any{
		"gatewayOrderId":   input.Callback.GatewayOrderID,
		"gatewayPaymentId": input.Callback.GatewayPaymentID,
	})
	if fresh, err := s.backend.GetInvoice(ctx, token, input.InvoiceID); err == nil {
		return fresh, nil
	}
	return invoice, nil
}

// DeleteInvoice removes an invoice whose payment has not completed.
func (s *Service) DeleteInvoice(ctx context.Context, invoiceID string) error {
	const op = OpDeleteInvoice
	token, actor, err := s.session(ctx)
	if err != nil {
		return err
	}
	invoice, err := s.backend.GetInvoice(ctx, token, invoiceID)
	if err != nil {
		return fail(op, err, "failed to load invoice")
	}
	if invoice.PaymentStatus == PaymentStatusCompleted {
		return validationErr(op, "invoice payment is completed; it can no longer be deleted")
	}

	if err := s.backend.DeleteInvoice(ctx, token, invoiceID); err != nil {
		return fail(op, err, "failed to delete invoice")
	}
	s.record(ctx, actor, op, "invoice", invoiceID, map[string]any{"number": invoice.Number})
	return nil
}

// AssignDeliveryPartner sets the delivery partner on an order whose
// payment is no longer pending.
func (s *Service) AssignDeliveryPartner(ctx context.Context, orderID, partnerID string) (Order, error) {
	const op = OpAssignDeliveryPartner
	token, actor, err := s.session(ctx)
	if err != nil {
		return Order{}, err
	}
	if partnerID == "" {
		return Order{}, validationErr(op, "partner id is required")
	}
	order, err := s.backend.GetOrder(ctx, token, orderID)
	if err != nil {
		return Order{}, fail(op, err, "failed to load order")
	}
	if order.PaymentStatus == PaymentStatusPending {
		return Order{}, validationErr(op, "order payment is still pending")
	}

	if _, err := s.backend.AssignDeliveryPartner(ctx, token, orderID, partnerID); err != nil {
		return Order{}, fail(op, err, "failed to assign delivery partner")
	}
	s.record(ctx, actor, op, "order", orderID, map[string]any{"partnerId": partnerID})
	return s.refetchOrder(ctx, token, order)
}

// RemoveDeliveryPartner clears an order's delivery partner assignment.
func (s *Service) RemoveDeliveryPartner(ctx context.Context, orderID string) (Order, error) {
	const op = OpRemoveDeliveryPartner
	token, actor, err := s.session(ctx)
	if err != nil {
		return Order{}, err
	}
	order, err := s.backend.GetOrder(ctx, token, orderID)
	if err != nil {
		return Order{}, fail(op, err, "failed to load order")
	}
	if order.DeliveryPartnerID == "" {
		return Order{}, validationErr(op, "no delivery partner assigned")
	}

	if _, err := s.backend.RemoveDeliveryPartner(ctx, token, orderID); err != nil {
		return Order{}, fail(op, err, "failed to remove delivery partner")
	}
	s.record(ctx, actor, op, "order", orderID, nil)
	return s.refetchOrder(ctx, token, order)
}

// isNotFound reports whether the backend said the resource does not exist.
func isNotFound(err error) bool {
	var ue upstreamError
	return errors.As(err, &ue) && ue.HTTPStatus() == 404
}

// PipelineState resolves the order together with its active challan and
// invoice and derives the composite state. A missing challan or invoice is
// a normal stage of the pipeline, not an error.
func (s *Service) PipelineState(ctx context.Context, orderID string) (State, []Operation, error) {
	token, _, err := s.session(ctx)
	if err != nil {
		return StateUnknown, nil, err
	}
	order, err := s.backend.GetOrder(ctx, token, orderID)
	if err != nil {
		return StateUnknown, nil, fail("getOrder", err, "failed to load order")
	}

	var challan *Challan
	var invoice *Invoice
	ch, err := s.backend.GetChallanForOrder(ctx, token, orderID)
	switch {
	case err == nil:
		challan = &ch
	case !isNotFound(err):
		return StateUnknown, nil, fail("getChallan", err, "failed to load challan")
	}
	if challan != nil {
		inv, err := s.backend.GetInvoiceForChallan(ctx, token, challan.ID)
		switch {
		case err == nil:
			invoice = &inv
		case !isNotFound(err):
			return StateUnknown, nil, fail("getInvoice", err, "failed to load invoice")
		}
	}

	state := StateOf(&order, challan, invoice)
	return state, NextOperations(state), nil
}

// GetOrder returns the order's current snapshot.
func (s *Service) GetOrder(ctx context.Context, id string) (Order, error) {
	token, _, err := s.session(ctx)
	if err != nil {
		return Order{}, err
	}
	order, err := s.backend.GetOrder(ctx, token, id)
	if err != nil {
		return Order{}, fail("getOrder", err, "failed to load order")
	}
	return order, nil
}

// ListOrders returns order snapshots visible to the session, optionally
// filtered by status. The backend scopes the result to the actor's role.
func (s *Service) ListOrders(ctx context.Context, status OrderStatus) ([]Order, error) {
	token, _, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.backend.ListOrders(ctx, token, status)
	if err != nil {
		return nil, fail("listOrders", err, "failed to list orders")
	}
	return orders, nil
}

// ListInvoices returns invoice snapshots, optionally filtered by status.
func (s *Service) ListInvoices(ctx context.Context, status InvoiceStatus) ([]Invoice, error) {
	token, _, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := s.backend.ListInvoices(ctx, token, status)
	if err != nil {
		return nil, fail("listInvoices", err, "failed to list invoices")
	}
	return invoices, nil
}

// ListEscalations returns escalation snapshots, optionally filtered by
// status.
func (s *Service) ListEscalations(ctx context.Context, status EscalationStatus) ([]Escalation, error) {
	token, _, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	escalations, err := s.backend.ListEscalations(ctx, token, status)
	if err != nil {
		return nil, fail("listEscalations", err, "failed to list escalations")
	}
	return escalations, nil
}

// refetchOrder returns the order's fresh snapshot, falling back to the
// stale one only when the refetch itself fails.
func (s *Service) refetchOrder(ctx context.Context, token string, stale Order) (Order, error) {
	fresh, err := s.backend.GetOrder(ctx, token, stale.ID)
	if err != nil {
		return stale, nil
	}
	return fresh, nil
}

func (s *Service) record(ctx context.Context, actor *shared.Profile, op Operation, entity, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := audit.Entry{
		Operation: string(op),
		Entity:    entity,
		EntityID:  entityID,
		Meta:      meta,
	}
	if actor != nil {
		entry.ActorID = actor.UserID
	}
	if err := s.audit.Record(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("record transition", slog.String("operation", string(op)), slog.Any("error", err))
	}
}
