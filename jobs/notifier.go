package jobs

import (
	"context"
	"log/slog"

	"github.com/praxis-compliance/praxis/internal/authz"
)

// IncidentNotifier forwards security incidents from the audit recorder to
// the alerts queue. A full queue or dead Redis must never block or fail
// the recorder, so enqueue errors are logged and swallowed.
type IncidentNotifier struct {
	client *Client
	logger *slog.Logger
}

// NewIncidentNotifier constructs an IncidentNotifier.
func NewIncidentNotifier(client *Client, logger *slog.Logger) *IncidentNotifier {
	return &IncidentNotifier{client: client, logger: logger}
}

// NotifyIncident enqueues an alert task for the decision.
func (n *IncidentNotifier) NotifyIncident(ctx context.Context, d authz.AccessDecision) {
	if n == nil || n.client == nil {
		return
	}
	_, err := n.client.EnqueueIncidentAlert(ctx, IncidentAlertPayload{
		DecisionID:        d.ID.String(),
		UserID:            d.UserID,
		RequestedTenantID: d.TenantID,
		ResolvedTenantID:  d.ResolvedTenantID,
		ResourceType:      d.ResourceType,
		ResourceID:        d.ResourceID,
		OccurredAt:        d.At,
	})
	if err != nil {
		n.logger.Error("enqueue incident alert", slog.Any("error", err))
	}
}
