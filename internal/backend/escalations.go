package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/procureflow/procureflow/internal/pipeline"
)

// CreateEscalation files a spend-limit escalation.
func (c *Client) CreateEscalation(ctx context.Context, token string, input pipeline.CreateEscalationInput) (pipeline.Escalation, error) {
	var escalation pipeline.Escalation
	err := c.do(ctx, token, http.MethodPost, "/escalations", input, &escalation)
	return escalation, err
}

// GetEscalation fetches a single escalation snapshot.
func (c *Client) GetEscalation(ctx context.Context, token, id string) (pipeline.Escalation, error) {
	var escalation pipeline.Escalation
	err := c.do(ctx, token, http.MethodGet, "/escalations/"+url.PathEscape(id), nil, &escalation)
	return escalation, err
}

// ListEscalations fetches escalations, optionally filtered by status.
func (c *Client) ListEscalations(ctx context.Context, token string, status pipeline.EscalationStatus) ([]pipeline.Escalation, error) {
	path := "/escalations"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var escalations []pipeline.Escalation
	err := c.do(ctx, token, http.MethodGet, path, nil, &escalations)
	return escalations, err
}

// DecideEscalation approves or rejects a pending escalation.
func (c *Client) DecideEscalation(ctx context.Context, token, id string, approve bool, message string) (pipeline.EscalationDecision, error) {
	var decision pipeline.EscalationDecision
	body := map[string]any{"approve": approve, "message": message}
	err := c.do(ctx, token, http.MethodPost, "/escalations/"+url.PathEscape(id)+"/decision", body, &decision)
	return decision, err
}
