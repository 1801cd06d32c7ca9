package pipeline

// State is the composite fulfillment state of an order and its derived
// challan and invoice, as observable from backend snapshots. It is derived,
// never stored: the backend's status fields are the only source of truth.
type State string

const (
	// StateUnknown means no order snapshot is available.
	StateUnknown State = "UNKNOWN"
	// StateVendorReview covers a placed order awaiting the vendor's decision.
	StateVendorReview State = "VENDOR_REVIEW"
	// StateVendorApproved means the vendor approved and no challan exists yet.
	StateVendorApproved State = "VENDOR_APPROVED"
	// StateVendorRejected is terminal.
	StateVendorRejected State = "VENDOR_REJECTED"
	// StateChallanCreated means an active challan exists and no invoice does.
	StateChallanCreated State = "CHALLAN_CREATED"
	// StateInvoiceIssued means an active invoice awaits payment.
	StateInvoiceIssued State = "INVOICE_ISSUED"
	// StatePaymentFailed means the backend reported a failed payment; the
	// invoice can be paid again.
	StatePaymentFailed State = "PAYMENT_FAILED"
	// StateCompleted means payment was verified.
	StateCompleted State = "COMPLETED"
	// StateCancelled covers a cancelled order.
	StateCancelled State = "CANCELLED"
)

// Operation names every transition the coordinator can perform.
type Operation string

const (
	OpPlaceOrder            Operation = "placeOrder"
	OpRequestEscalation     Operation = "requestEscalation"
	OpDecideEscalation      Operation = "decideEscalation"
	OpVendorApprove         Operation = "vendorApprove"
	OpVendorReject          Operation = "vendorReject"
	OpCreateChallan         Operation = "createChallan"
	OpCreateInvoice         Operation = "createInvoice"
	OpInitiatePayment       Operation = "initiatePayment"
	OpVerifyPayment         Operation = "verifyPayment"
	OpDeleteInvoice         Operation = "deleteInvoice"
	OpAssignDeliveryPartner Operation = "assignDeliveryPartner"
	OpRemoveDeliveryPartner Operation = "removeDeliveryPartner"
)

// transitions maps each composite state to the operations that are legal
// from it. Both the coordinator guards and the UI read this table, so status
// checks live in exactly one place.
var transitions = map[State][]Operation{
	StateVendorReview:   {OpVendorApprove, OpVendorReject},
	StateVendorApproved: {OpCreateChallan},
	StateChallanCreated: {OpCreateInvoice},
	StateInvoiceIssued:  {OpInitiatePayment, OpVerifyPayment, OpDeleteInvoice},
	StatePaymentFailed:  {OpInitiatePayment, OpVerifyPayment, OpDeleteInvoice, OpAssignDeliveryPartner, OpRemoveDeliveryPartner},
	StateCompleted:      {OpAssignDeliveryPartner, OpRemoveDeliveryPartner},
}

// StateOf derives the composite state from the given snapshots. Challan and
// invoice may be nil when they do not exist; cancelled documents are treated
// as absent, matching the backend's at-most-one-active invariant.
func StateOf(order *Order, challan *Challan, invoice *Invoice) State {
	if order == nil {
		return StateUnknown
	}
	switch order.Status {
	case OrderStatusRejected:
		return StateVendorRejected
	case OrderStatusCancelled:
		return StateCancelled
	case OrderStatusPending:
		return StateVendorReview
	}

	if invoice != nil && invoice.Status != InvoiceStatusCancelled {
		switch invoice.PaymentStatus {
		case PaymentStatusCompleted:
			return StateCompleted
		case PaymentStatusFailed:
			return StatePaymentFailed
		default:
			return StateInvoiceIssued
		}
	}
	if challan != nil && challan.Status != ChallanStatusCancelled {
		return StateChallanCreated
	}
	return StateVendorApproved
}

// NextOperations returns the operations legal from the given state. The
// returned slice is a copy.
func NextOperations(state State) []Operation {
	ops := transitions[state]
	if len(ops) == 0 {
		return nil
	}
	out := make([]Operation, len(ops))
	copy(out, ops)
	return out
}

// Allows reports whether op is legal from state.
func Allows(state State, op Operation) bool {
	for _, candidate := range transitions[state] {
		if candidate == op {
			return true
		}
	}
	return false
}
