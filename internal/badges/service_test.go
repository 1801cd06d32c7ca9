package badges

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/procureflow/procureflow/internal/backend"
	"github.com/procureflow/procureflow/internal/shared"
	_ "github.com/procureflow/procureflow/internal/testing/guard"
)

type stubBackend struct {
	counts   backend.PendingCounts
	calls    int
	lastRole shared.Role
}

func (s *stubBackend) FetchPendingCounts(ctx context.Context, token string, role shared.Role) (backend.PendingCounts, error) {
	s.calls++
	s.lastRole = role
	return s.counts, nil
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCountsCachesPerRole(t *testing.T) {
	stub := &stubBackend{counts: backend.PendingCounts{OrdersAwaitingReview: 3, InvoicesAwaitingPayment: 1}}
	svc := NewService(stub, newTestRedis(t), time.Minute, nil)
	ctx := context.Background()

	counts, err := svc.Counts(ctx, "tok", shared.RoleVendor)
	require.NoError(t, err)
	require.Equal(t, 3, counts.OrdersAwaitingReview)
	require.Equal(t, 1, stub.calls)
	require.Equal(t, shared.RoleVendor, stub.lastRole)

	// Second read is served from cache.
	counts, err = svc.Counts(ctx, "tok", shared.RoleVendor)
	require.NoError(t, err)
	require.Equal(t, 3, counts.OrdersAwaitingReview)
	require.Equal(t, 1, stub.calls)

	// A different role has its own cache entry, fetched for that role.
	_, err = svc.Counts(ctx, "tok", shared.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, 2, stub.calls)
	require.Equal(t, shared.RoleAdmin, stub.lastRole)
}

func TestRefreshRewritesCache(t *testing.T) {
	stub := &stubBackend{counts: backend.PendingCounts{EscalationsAwaitingAction: 2}}
	svc := NewService(stub, newTestRedis(t), time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx, "svc-tok", shared.RoleAdmin))
	require.Equal(t, shared.RoleAdmin, stub.lastRole)

	stub.counts.EscalationsAwaitingAction = 7
	counts, err := svc.Counts(ctx, "tok", shared.RoleAdmin)
	require.NoError(t, err)
	// Cache still holds the value from Refresh, not the live figure.
	require.Equal(t, 2, counts.EscalationsAwaitingAction)
	require.Equal(t, 1, stub.calls)

	require.NoError(t, svc.Refresh(ctx, "svc-tok", shared.RoleAdmin))
	counts, err = svc.Counts(ctx, "tok", shared.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, 7, counts.EscalationsAwaitingAction)
}

func TestCountsWithoutRedisFetchesEveryTime(t *testing.T) {
	stub := &stubBackend{counts: backend.PendingCounts{ChallansAwaitingInvoice: 4}}
	svc := NewService(stub, nil, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		counts, err := svc.Counts(ctx, "tok", shared.RoleCompany)
		require.NoError(t, err)
		require.Equal(t, 4, counts.ChallansAwaitingInvoice)
	}
	require.Equal(t, 2, stub.calls)
}
