// Package registry handles the admin approval workflows for vendor
// registrations, company registrations and vendor product submissions.
package registry

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the review state of a registry submission.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// VendorApplication is a vendor registration awaiting admin review.
type VendorApplication struct {
	ID           string            `json:"id"`
	BusinessName string            `json:"businessName"`
	Email        string            `json:"email"`
	GSTNumber    string            `json:"gstNumber,omitempty"`
	Status       ApplicationStatus `json:"status"`
	RejectReason string            `json:"rejectReason,omitempty"`
	SubmittedAt  time.Time         `json:"submittedAt"`
}

// CompanyApplication is a company registration awaiting admin review.
type CompanyApplication struct {
	ID           string            `json:"id"`
	CompanyName  string            `json:"companyName"`
	Email        string            `json:"email"`
	Status       ApplicationStatus `json:"status"`
	RejectReason string            `json:"rejectReason,omitempty"`
	SubmittedAt  time.Time         `json:"submittedAt"`
}

// ProductSubmission is a vendor catalog item awaiting admin approval.
type ProductSubmission struct {
	ID           string            `json:"id"`
	VendorID     string            `json:"vendorId"`
	Name         string            `json:"name"`
	Category     string            `json:"category,omitempty"`
	UnitPrice    decimal.Decimal   `json:"unitPrice"`
	Status       ApplicationStatus `json:"status"`
	RejectReason string            `json:"rejectReason,omitempty"`
	SubmittedAt  time.Time         `json:"submittedAt"`
}
