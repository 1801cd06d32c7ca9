package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBadgeRefresh is the task type for refreshing cached badge counts.
	TaskBadgeRefresh = "badges:refresh"
)

// BadgeRefreshPayload scopes a refresh to one role's navigation counts. An
// empty role refreshes every role.
type BadgeRefreshPayload struct {
	Role string `json:"role"`
}

// NewBadgeRefreshTask constructs an Asynq task.
func NewBadgeRefreshTask(payload BadgeRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBadgeRefresh, data), nil
}
