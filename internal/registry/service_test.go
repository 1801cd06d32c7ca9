package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/procureflow/procureflow/internal/shared"
	_ "github.com/procureflow/procureflow/internal/testing/guard"
)

type stubBackend struct {
	vendors   []VendorApplication
	companies []CompanyApplication
	products  []ProductSubmission
	decisions int
	lastKind  string
	lastWhy   string
}

func (s *stubBackend) ListPendingVendors(ctx context.Context, token string) ([]VendorApplication, error) {
	return s.vendors, nil
}

func (s *stubBackend) ListPendingCompanies(ctx context.Context, token string) ([]CompanyApplication, error) {
	return s.companies, nil
}

func (s *stubBackend) ListPendingProducts(ctx context.Context, token string) ([]ProductSubmission, error) {
	return s.products, nil
}

func (s *stubBackend) DecideRegistry(ctx context.Context, token, kind, id string, approve bool, reason string) error {
	s.decisions++
	s.lastKind = kind
	s.lastWhy = reason
	return nil
}

func adminCtx() context.Context {
	sess := &shared.Session{}
	sess.SetToken("tok")
	sess.SetProfile(&shared.Profile{UserID: "u-admin", Role: shared.RoleAdmin})
	return shared.ContextWithSession(context.Background(), sess)
}

func TestPendingAggregatesAllKinds(t *testing.T) {
	stub := &stubBackend{
		vendors:   []VendorApplication{{ID: "v-1", BusinessName: "Acme Traders"}},
		companies: []CompanyApplication{{ID: "c-1", CompanyName: "Initech"}},
	}
	svc := NewService(stub)

	queue, err := svc.Pending(adminCtx())
	require.NoError(t, err)
	require.Len(t, queue.Vendors, 1)
	require.Len(t, queue.Companies, 1)
	require.Empty(t, queue.Products)
}

func TestPendingRequiresSession(t *testing.T) {
	svc := NewService(&stubBackend{})

	_, err := svc.Pending(context.Background())
	require.ErrorIs(t, err, shared.ErrSessionMissing)
}

func TestDecideRejectRequiresReason(t *testing.T) {
	stub := &stubBackend{}
	svc := NewService(stub)

	err := svc.Decide(adminCtx(), KindVendors, "v-1", false, "")
	require.ErrorIs(t, err, ErrReasonRequired)
	require.Zero(t, stub.decisions)

	require.NoError(t, svc.Decide(adminCtx(), KindVendors, "v-1", false, "incomplete GST details"))
	require.Equal(t, 1, stub.decisions)
	require.Equal(t, "incomplete GST details", stub.lastWhy)
}

func TestDecideRejectsUnknownKind(t *testing.T) {
	stub := &stubBackend{}
	svc := NewService(stub)

	err := svc.Decide(adminCtx(), Kind("warehouses"), "w-1", true, "")
	require.Error(t, err)
	require.Zero(t, stub.decisions)
}

func TestDecideApproveNeedsNoReason(t *testing.T) {
	stub := &stubBackend{}
	svc := NewService(stub)

	require.NoError(t, svc.Decide(adminCtx(), KindProducts, "p-1", true, ""))
	require.Equal(t, "products", stub.lastKind)
}
