package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuditPrune removes audit records older than the retention window.
	TaskTypeAuditPrune = "audit:prune"
	// TaskTypeSessionsSweep removes expired session records.
	TaskTypeSessionsSweep = "sessions:sweep"
)

// AuditPrunePayload configures an audit prune run.
type AuditPrunePayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewAuditPruneTask constructs an Asynq task.
func NewAuditPruneTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(AuditPrunePayload{RetentionHours: int(retention.Hours())})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditPrune, data), nil
}

// NewAuditPruneHandler processes TaskTypeAuditPrune tasks.
func NewAuditPruneHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditPrunePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.RetentionHours <= 0 {
			return asynq.SkipRetry
		}
		cutoff := time.Now().Add(-time.Duration(payload.RetentionHours) * time.Hour)
		tag, err := pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("audit prune complete", slog.Int64("removed", tag.RowsAffected()))
		}
		return nil
	}
}

// NewSessionsSweepTask constructs an Asynq task.
func NewSessionsSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionsSweep, nil)
}

// NewSessionsSweepHandler processes TaskTypeSessionsSweep tasks.
func NewSessionsSweepHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tag, err := pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("session sweep complete", slog.Int64("removed", tag.RowsAffected()))
		}
		return nil
	}
}
