package shared

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow/internal/platform/httpx"
)

// Role identifies which surface of the application a session belongs to.
type Role string

const (
	// RoleAdmin manages approvals, invoicing and the registry.
	RoleAdmin Role = "admin"
	// RoleVendor reviews orders and issues delivery challans.
	RoleVendor Role = "vendor"
	// RoleCompany places orders and pays invoices.
	RoleCompany Role = "company"
)

// Profile is the backend-issued identity snapshot cached in the session.
// It is display/derivation data only; the backend re-checks authorization
// on every call.
type Profile struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CompanyID string `json:"companyId,omitempty"`
	VendorID  string `json:"vendorId,omitempty"`

	// Spend controls for company users. A nil MonthlyLimit means no limit
	// is configured, which is distinct from the explicit unlimited flag.
	MonthlyLimit       *decimal.Decimal `json:"monthlyLimit,omitempty"`
	SpentThisMonth     decimal.Decimal  `json:"spentThisMonth"`
	HasUnlimitedAccess bool             `json:"hasUnlimitedAccess"`
}

// RequireRole gates a route subtree to sessions holding one of the roles.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if actor == nil || actor.UserID == "" {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if _, ok := allowed[actor.Role]; !ok {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
