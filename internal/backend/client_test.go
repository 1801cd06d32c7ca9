package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/procureflow/procureflow/internal/pipeline"
	_ "github.com/procureflow/procureflow/internal/testing/guard"
)

func TestDoUnwrapsEnvelopeAndSendsBearer(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/orders/ord-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": "ord-1", "status": "pending"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	order, err := client.GetOrder(context.Background(), "tok-123", "ord-1")
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.Equal(t, "ord-1", order.ID)
	require.Equal(t, pipeline.OrderStatusPending, order.Status)
}

func TestDoSurfacesBackendMessageVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Challan already exists for this order",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.CreateChallan(context.Background(), "tok", "ord-1")

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, http.StatusConflict, backendErr.HTTPStatus())
	require.Equal(t, "Challan already exists for this order", backendErr.UpstreamMessage())
	require.Equal(t, "Challan already exists for this order", backendErr.Error())
}

func TestDoTreatsSuccessFalseAsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Order is not pending",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.ApproveOrder(context.Background(), "tok", "ord-1")

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, "Order is not pending", backendErr.Message)
}

func TestDoNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.GetOrder(context.Background(), "tok", "ord-1")

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, http.StatusBadGateway, backendErr.Status)
	require.Empty(t, backendErr.Message)
}

func TestLoginSendsNoBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token":   "tok-issued",
				"profile": map[string]any{"userId": "u-1", "role": "company"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	result, err := client.Login(context.Background(), "a@b.example", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, "tok-issued", result.Token)
	require.Equal(t, "u-1", result.Profile.UserID)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	require.NoError(t, client.Ping(context.Background()))
}
