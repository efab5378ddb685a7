package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/praxis-compliance/praxis/internal/jobs"
	"github.com/praxis-compliance/praxis/internal/platform/db"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueAlerts carries security incident alerts; it drains before the
	// default queue.
	QueueAlerts = "alerts"

	// TaskIncidentAlert notifies the on-call channel about a cross-tenant
	// access attempt.
	TaskIncidentAlert = "authz:incident_alert"
	// TaskAuditRetention prunes access decisions past the retention window.
	TaskAuditRetention = "authz:audit_retention"
)

// IncidentAlertPayload carries the facts of a cross-tenant access attempt.
type IncidentAlertPayload struct {
	DecisionID        string    `json:"decision_id"`
	UserID            int64     `json:"user_id"`
	RequestedTenantID int64     `json:"requested_tenant_id"`
	ResolvedTenantID  int64     `json:"resolved_tenant_id"`
	ResourceType      string    `json:"resource_type"`
	ResourceID        int64     `json:"resource_id"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// NewIncidentAlertTask constructs an Asynq task for one incident.
func NewIncidentAlertTask(payload IncidentAlertPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIncidentAlert, data), nil
}

// NewIncidentAlertHandler processes TaskIncidentAlert tasks. The alert is
// emitted as an elevated log entry that the on-call pipeline tails.
// TODO: wire the PagerDuty events API once the integration key lands.
func NewIncidentAlertHandler(logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("incident_alert")
		var payload IncidentAlertPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		logger.Error("cross-tenant access incident",
			slog.String("decision_id", payload.DecisionID),
			slog.Int64("user_id", payload.UserID),
			slog.Int64("requested_tenant_id", payload.RequestedTenantID),
			slog.Int64("resolved_tenant_id", payload.ResolvedTenantID),
			slog.String("resource_type", payload.ResourceType),
			slog.Int64("resource_id", payload.ResourceID),
			slog.Time("occurred_at", payload.OccurredAt),
		)
		return tracker.End(nil)
	}
}

// AuditRetentionPayload bounds the retention sweep.
type AuditRetentionPayload struct {
	// DecisionDays is how long routine access decisions are kept.
	DecisionDays int `json:"decision_days"`
	// IncidentDays is how long security incidents are kept. Incidents
	// outlive routine decisions.
	IncidentDays int `json:"incident_days"`
}

// NewAuditRetentionTask constructs the nightly retention sweep task.
func NewAuditRetentionTask(payload AuditRetentionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRetention, data), nil
}

// NewAuditRetentionHandler processes TaskAuditRetention tasks, deleting
// audit rows older than the configured windows.
func NewAuditRetentionHandler(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("audit_retention")
		var payload AuditRetentionPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		if payload.DecisionDays <= 0 {
			payload.DecisionDays = 90
		}
		if payload.IncidentDays <= 0 {
			payload.IncidentDays = 365
		}

		var decisionsDeleted, incidentsDeleted int64
		// Both deletes run in one transaction so the NOT EXISTS check on
		// surviving incidents sees a consistent snapshot.
		err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
			incidents, err := tx.Exec(ctx,
				`DELETE FROM security_incidents WHERE occurred_at < now() - make_interval(days => $1)`,
				payload.IncidentDays)
			if err != nil {
				return err
			}
			// Decisions referenced by a surviving incident stay until the
			// incident itself ages out.
			decisions, err := tx.Exec(ctx,
				`DELETE FROM access_decisions d
				 WHERE d.occurred_at < now() - make_interval(days => $1)
				   AND NOT EXISTS (SELECT 1 FROM security_incidents i WHERE i.decision_id = d.id)`,
				payload.DecisionDays)
			if err != nil {
				return err
			}
			incidentsDeleted = incidents.RowsAffected()
			decisionsDeleted = decisions.RowsAffected()
			return nil
		})
		if err != nil {
			return tracker.End(err)
		}

		logger.Info("audit retention sweep",
			slog.Int64("decisions_deleted", decisionsDeleted),
			slog.Int64("incidents_deleted", incidentsDeleted),
		)
		return tracker.End(nil)
	}
}
