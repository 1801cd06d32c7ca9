package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/procureflow/procureflow/internal/badges"
	jobmetrics "github.com/procureflow/procureflow/internal/jobs"
	"github.com/procureflow/procureflow/internal/shared"
)

// BadgeRefreshJob keeps the per-role badge caches warm so page loads serve
// counts from redis instead of fanning out to the backend.
type BadgeRefreshJob struct {
	Badges  *badges.Service
	Token   string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewBadgeRefreshJob wires dependencies for the refresh handler.
func NewBadgeRefreshJob(badgeSvc *badges.Service, serviceToken string, logger *slog.Logger, metrics *jobmetrics.Metrics) *BadgeRefreshJob {
	return &BadgeRefreshJob{Badges: badgeSvc, Token: serviceToken, Logger: logger, Metrics: metrics}
}

// Handle processes badge refresh tasks.
func (j *BadgeRefreshJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Badges == nil {
		return errors.New("badge refresh: handler not configured")
	}
	var payload BadgeRefreshPayload
	if jsonErr := json.Unmarshal(t.Payload(), &payload); jsonErr != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskBadgeRefresh)
	defer func() { err = tracker.End(err) }()

	roles := []shared.Role{shared.RoleAdmin, shared.RoleVendor, shared.RoleCompany}
	if payload.Role != "" {
		roles = []shared.Role{shared.Role(payload.Role)}
	}
	for _, role := range roles {
		if refreshErr := j.Badges.Refresh(ctx, j.Token, role); refreshErr != nil {
			if j.Logger != nil {
				j.Logger.Warn("refresh badge counts", slog.String("role", string(role)), slog.Any("error", refreshErr))
			}
			err = refreshErr
		}
	}
	return err
}
