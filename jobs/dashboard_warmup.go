package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/FusherTm/kimerav1/internal/finance/statement"
)

// DashboardWarmupJob pre-populates the dashboard summary cache per tenant.
type DashboardWarmupJob struct {
	Statement *statement.Service
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(statementSvc *statement.Service, logger *slog.Logger) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Statement: statementSvc,
		Logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Statement == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger()
	logger.Info("starting dashboard warmup")
	start := j.now()

	orgIDs, err := j.resolveOrgs(ctx, payload)
	if err != nil {
		logger.Error("resolve warmup tenants", slog.Any("error", err))
		return err
	}
	if len(orgIDs) == 0 {
		logger.Info("no tenants discovered for warmup")
		return nil
	}

	warmed := 0
	for _, orgID := range orgIDs {
		orgCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		err := j.Statement.WarmDashboard(orgCtx, orgID)
		cancel()
		if err != nil {
			logger.Error("warm tenant", slog.String("organization_id", orgID.String()), slog.Any("error", err))
			return err
		}
		warmed++
	}

	logger.Info("completed dashboard warmup",
		slog.Int("tenants", warmed),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *DashboardWarmupJob) resolveOrgs(ctx context.Context, payload DashboardWarmupPayload) ([]uuid.UUID, error) {
	if len(payload.OrganizationIDs) == 0 {
		return j.Statement.OrganizationIDs(ctx)
	}
	out := make([]uuid.UUID, 0, len(payload.OrganizationIDs))
	for _, raw := range payload.OrganizationIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
