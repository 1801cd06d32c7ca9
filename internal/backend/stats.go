package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/procureflow/procureflow/internal/shared"
)

// PendingCounts are the badge numbers shown in each role's navigation.
type PendingCounts struct {
	OrdersAwaitingReview      int `json:"ordersAwaitingReview"`
	EscalationsAwaitingAction int `json:"escalationsAwaitingAction"`
	ChallansAwaitingInvoice   int `json:"challansAwaitingInvoice"`
	InvoicesAwaitingPayment   int `json:"invoicesAwaitingPayment"`
	RegistryAwaitingApproval  int `json:"registryAwaitingApproval"`
}

// FetchPendingCounts reads the backend's pending workload counters scoped
// to the given role, so a service token sees the same numbers a session of
// that role would.
func (c *Client) FetchPendingCounts(ctx context.Context, token string, role shared.Role) (PendingCounts, error) {
	var counts PendingCounts
	path := "/stats/pending"
	if role != "" {
		path += "?role=" + url.QueryEscape(string(role))
	}
	err := c.do(ctx, token, http.MethodGet, path, nil, &counts)
	return counts, err
}
