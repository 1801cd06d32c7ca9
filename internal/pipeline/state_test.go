package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateOfDerivation(t *testing.T) {
	require.Equal(t, StateUnknown, StateOf(nil, nil, nil))

	order := &Order{Status: OrderStatusPending}
	require.Equal(t, StateVendorReview, StateOf(order, nil, nil))

	order.Status = OrderStatusRejected
	require.Equal(t, StateVendorRejected, StateOf(order, nil, nil))

	order.Status = OrderStatusCancelled
	require.Equal(t, StateCancelled, StateOf(order, nil, nil))

	order.Status = OrderStatusApproved
	require.Equal(t, StateVendorApproved, StateOf(order, nil, nil))

	challan := &Challan{Status: ChallanStatusPending}
	require.Equal(t, StateChallanCreated, StateOf(order, challan, nil))

	// Cancelled documents are treated as absent.
	challan.Status = ChallanStatusCancelled
	require.Equal(t, StateVendorApproved, StateOf(order, challan, nil))

	challan.Status = ChallanStatusProcessing
	invoice := &Invoice{Status: InvoiceStatusIssued, PaymentStatus: PaymentStatusPending}
	require.Equal(t, StateInvoiceIssued, StateOf(order, challan, invoice))

	invoice.PaymentStatus = PaymentStatusFailed
	require.Equal(t, StatePaymentFailed, StateOf(order, challan, invoice))

	invoice.PaymentStatus = PaymentStatusCompleted
	require.Equal(t, StateCompleted, StateOf(order, challan, invoice))

	invoice.Status = InvoiceStatusCancelled
	require.Equal(t, StateChallanCreated, StateOf(order, challan, invoice))
}

func TestNextOperations(t *testing.T) {
	require.ElementsMatch(t, []Operation{OpVendorApprove, OpVendorReject}, NextOperations(StateVendorReview))
	require.ElementsMatch(t, []Operation{OpCreateChallan}, NextOperations(StateVendorApproved))
	require.ElementsMatch(t, []Operation{OpCreateInvoice}, NextOperations(StateChallanCreated))
	require.Nil(t, NextOperations(StateVendorRejected))
	require.Nil(t, NextOperations(StateCancelled))

	// The returned slice is a copy; mutating it must not corrupt the table.
	ops := NextOperations(StateVendorReview)
	ops[0] = OpDeleteInvoice
	require.ElementsMatch(t, []Operation{OpVendorApprove, OpVendorReject}, NextOperations(StateVendorReview))
}

func TestAllows(t *testing.T) {
	require.True(t, Allows(StateVendorReview, OpVendorApprove))
	require.True(t, Allows(StateVendorReview, OpVendorReject))
	require.False(t, Allows(StateVendorReview, OpCreateChallan))
	require.False(t, Allows(StateVendorApproved, OpVendorApprove))
	require.True(t, Allows(StateInvoiceIssued, OpDeleteInvoice))
	require.False(t, Allows(StateCompleted, OpDeleteInvoice))
	require.True(t, Allows(StateCompleted, OpAssignDeliveryPartner))
	require.False(t, Allows(StateUnknown, OpPlaceOrder))
}
