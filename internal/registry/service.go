package registry

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/procureflow/procureflow/internal/shared"
)

// Kind names a registry collection.
type Kind string

const (
	KindVendors   Kind = "vendors"
	KindCompanies Kind = "companies"
	KindProducts  Kind = "products"
)

func (k Kind) valid() bool {
	switch k {
	case KindVendors, KindCompanies, KindProducts:
		return true
	}
	return false
}

// BackendPort is the slice of the backend client the registry flows need.
type BackendPort interface {
	ListPendingVendors(ctx context.Context, token string) ([]VendorApplication, error)
	ListPendingCompanies(ctx context.Context, token string) ([]CompanyApplication, error)
	ListPendingProducts(ctx context.Context, token string) ([]ProductSubmission, error)
	DecideRegistry(ctx context.Context, token, kind, id string, approve bool, reason string) error
}

// Service proxies the approval workflows to the backend.
type Service struct {
	backend BackendPort
}

// NewService constructs a new Service.
func NewService(backendPort BackendPort) *Service {
	return &Service{backend: backendPort}
}

// PendingQueue is every submission awaiting admin review.
type PendingQueue struct {
	Vendors   []VendorApplication  `json:"vendors"`
	Companies []CompanyApplication `json:"companies"`
	Products  []ProductSubmission  `json:"products"`
}

// Pending lists all submissions awaiting review.
func (s *Service) Pending(ctx context.Context) (PendingQueue, error) {
	token := shared.TokenFromContext(ctx)
	if token == "" {
		return PendingQueue{}, shared.ErrSessionMissing
	}
	var queue PendingQueue
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		queue.Vendors, err = s.backend.ListPendingVendors(ctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		queue.Companies, err = s.backend.ListPendingCompanies(ctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		queue.Products, err = s.backend.ListPendingProducts(ctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return PendingQueue{}, err
	}
	return queue, nil
}

// Decide approves or rejects a submission. Rejection requires a reason.
func (s *Service) Decide(ctx context.Context, kind Kind, id string, approve bool, reason string) error {
	token := shared.TokenFromContext(ctx)
	if token == "" {
		return shared.ErrSessionMissing
	}
	if !kind.valid() {
		return fmt.Errorf("unknown registry kind %q", kind)
	}
	if !approve && reason == "" {
		return ErrReasonRequired
	}
	return s.backend.DecideRegistry(ctx, token, string(kind), id, approve, reason)
}
