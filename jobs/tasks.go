package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup recomputes and caches dashboard summaries.
	TaskDashboardWarmup = "dashboard:warmup"
)

// DashboardWarmupPayload selects which tenants to warm. Empty means all.
type DashboardWarmupPayload struct {
	OrganizationIDs []string `json:"organization_ids,omitempty"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
