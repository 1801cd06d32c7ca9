package pipeline_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/procureflow/procureflow/internal/pipeline"
	"github.com/procureflow/procureflow/internal/shared"
)

func newTestRouter(backend *fakeBackend, ctx context.Context) http.Handler {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	handler := pipeline.NewHandler(logger, pipeline.NewService(backend, nil, logger), gatewaySecret)

	r := chi.NewRouter()
	// Inject the prepared session the way the app's session middleware does.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if sess := shared.SessionFromContext(ctx); sess != nil {
				req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
			}
			next.ServeHTTP(w, req)
		})
	})
	handler.MountRoutes(r)
	return r
}

func TestPlaceOrderOverLimitRespondsConflict(t *testing.T) {
	backend := newFakeBackend()
	router := newTestRouter(backend, companyCtx(decPtr(8000), dec(0), false))

	body := `{"items":[{"productId":"p-1","qty":1,"unitPrice":"10000"}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "Escalation Required")
	require.Zero(t, backend.mutations())
}

func TestRejectOutOfStateRespondsBadRequest(t *testing.T) {
	backend := newFakeBackend()
	backend.orders["ord-1"] = pipeline.Order{ID: "ord-1", Status: pipeline.OrderStatusApproved}
	router := newTestRouter(backend, actorCtx(shared.RoleVendor))

	req := httptest.NewRequest(http.MethodPost, "/orders/ord-1/reject", strings.NewReader(`{"reason":"late"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestBackendConflictPassesThrough(t *testing.T) {
	backend := newFakeBackend()
	backend.orders["ord-1"] = pipeline.Order{ID: "ord-1", Status: pipeline.OrderStatusApproved, Total: dec(100)}
	backend.challans["ch-1"] = pipeline.Challan{ID: "ch-1", OrderID: "ord-1", Status: pipeline.ChallanStatusPending}
	router := newTestRouter(backend, actorCtx(shared.RoleVendor))

	req := httptest.NewRequest(http.MethodPost, "/orders/ord-1/challan", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "Challan already exists for this order")
}

func TestVerifyPaymentFailureRespondsPaymentRequired(t *testing.T) {
	backend := newFakeBackend()
	backend.invoices["inv-1"] = pipeline.Invoice{ID: "inv-1", Status: pipeline.InvoiceStatusIssued, PaymentStatus: pipeline.PaymentStatusPending}
	router := newTestRouter(backend, companyCtx(nil, dec(0), false))

	body := `{"callback":{"gatewayOrderId":"gw-1","gatewayPaymentId":"pay-1","gatewaySignature":"garbled"}}`
	req := httptest.NewRequest(http.MethodPost, "/invoices/inv-1/payment/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestRoleGateForbidsWrongRole(t *testing.T) {
	backend := newFakeBackend()
	backend.orders["ord-1"] = pipeline.Order{ID: "ord-1", Status: pipeline.OrderStatusPending}
	router := newTestRouter(backend, companyCtx(nil, dec(0), false))

	req := httptest.NewRequest(http.MethodPost, "/orders/ord-1/approve", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Zero(t, backend.mutations())
}

func TestNextOperationsEndpoint(t *testing.T) {
	backend := newFakeBackend()
	backend.orders["ord-1"] = pipeline.Order{ID: "ord-1", Status: pipeline.OrderStatusPending}
	router := newTestRouter(backend, actorCtx(shared.RoleVendor))

	req := httptest.NewRequest(http.MethodGet, "/orders/ord-1/next-operations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "VENDOR_REVIEW")
	require.Contains(t, rec.Body.String(), "vendorApprove")
	require.Contains(t, rec.Body.String(), "vendorReject")
}

func TestNextOperationsResolvesChallanAndInvoice(t *testing.T) {
	backend := newFakeBackend()
	backend.orders["ord-1"] = pipeline.Order{ID: "ord-1", Status: pipeline.OrderStatusApproved}
	backend.challans["ch-1"] = pipeline.Challan{ID: "ch-1", OrderID: "ord-1", Status: pipeline.ChallanStatusProcessing}
	backend.invoices["inv-1"] = pipeline.Invoice{
		ID:            "inv-1",
		OrderID:       "ord-1",
		ChallanID:     "ch-1",
		Status:        pipeline.InvoiceStatusIssued,
		PaymentStatus: pipeline.PaymentStatusPending,
	}
	router := newTestRouter(backend, actorCtx(shared.RoleVendor))

	req := httptest.NewRequest(http.MethodGet, "/orders/ord-1/next-operations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "INVOICE_ISSUED")
	require.Contains(t, rec.Body.String(), "initiatePayment")
	require.Contains(t, rec.Body.String(), "verifyPayment")
	require.Contains(t, rec.Body.String(), "deleteInvoice")
	require.NotContains(t, rec.Body.String(), "createChallan")
}
