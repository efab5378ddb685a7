package authz

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// AccessDecision is the append-only record of a single permission check.
type AccessDecision struct {
	ID               uuid.UUID
	UserID           int64
	TenantID         int64
	Role             Role
	Module           string
	Action           string
	ResourceType     string
	ResourceID       int64
	Granted          bool
	Incident         bool
	ResolvedTenantID int64
	Reason           string
	At               time.Time
}

// Sink receives access decisions. Implementations must never propagate a
// write failure into the request path.
type Sink interface {
	Record(ctx context.Context, d AccessDecision)
}

// DecisionStore persists decisions and incidents.
type DecisionStore interface {
	InsertDecision(ctx context.Context, d AccessDecision) error
	InsertIncident(ctx context.Context, d AccessDecision) error
}

// IncidentNotifier forwards security incidents to an external alert channel.
type IncidentNotifier interface {
	NotifyIncident(ctx context.Context, d AccessDecision)
}

// DecisionMetrics counts decisions for operational dashboards. Implemented
// by observability.Metrics; a nil implementation is a no-op.
type DecisionMetrics interface {
	AuthzDecision(granted bool)
	AuthzIncident()
	AuthzAuditDropped()
}

// Recorder is the async audit sink: Record enqueues without blocking and a
// background drain loop writes to the store. Overflow drops the record and
// increments a counter rather than stalling the request.
type Recorder struct {
	store    DecisionStore
	notifier IncidentNotifier
	metrics  DecisionMetrics
	logger   *slog.Logger

	queue   chan AccessDecision
	dropped atomic.Uint64
	once    sync.Once
	done    chan struct{}
}

// RecorderOption customises a Recorder.
type RecorderOption func(*Recorder)

// WithIncidentNotifier routes security incidents to the notifier.
func WithIncidentNotifier(n IncidentNotifier) RecorderOption {
	return func(r *Recorder) { r.notifier = n }
}

// WithDecisionMetrics wires decision counters.
func WithDecisionMetrics(m DecisionMetrics) RecorderOption {
	return func(r *Recorder) { r.metrics = m }
}

// WithQueueDepth overrides the enqueue buffer size.
func WithQueueDepth(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.queue = make(chan AccessDecision, n)
		}
	}
}

// NewRecorder constructs a Recorder over the store. Call Run to start the
// drain loop.
func NewRecorder(store DecisionStore, logger *slog.Logger, opts ...RecorderOption) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		store:  store,
		logger: logger,
		queue:  make(chan AccessDecision, 1024),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record implements Sink. It never blocks and never fails the caller.
func (r *Recorder) Record(_ context.Context, d AccessDecision) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.At.IsZero() {
		d.At = time.Now().UTC()
	}
	if r.metrics != nil {
		r.metrics.AuthzDecision(d.Granted)
		if d.Incident {
			r.metrics.AuthzIncident()
		}
	}
	if d.Incident {
		r.logger.Error("cross-tenant access attempt",
			slog.Int64("user_id", d.UserID),
			slog.Int64("tenant_id", d.TenantID),
			slog.Int64("resolved_tenant_id", d.ResolvedTenantID),
			slog.String("resource", d.ResourceType),
			slog.Int64("resource_id", d.ResourceID))
	}
	select {
	case r.queue <- d:
	default:
		r.dropped.Add(1)
		if r.metrics != nil {
			r.metrics.AuthzAuditDropped()
		}
		r.logger.Warn("audit queue full, decision dropped", slog.String("module", d.Module), slog.String("action", d.Action))
	}
}

// Dropped returns the number of decisions lost to queue overflow.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Run drains the queue until the context is cancelled, then flushes what
// remains in the buffer.
func (r *Recorder) Run(ctx context.Context) {
	defer r.once.Do(func() { close(r.done) })
	for {
		select {
		case d := <-r.queue:
			r.write(d)
		case <-ctx.Done():
			for {
				select {
				case d := <-r.queue:
					r.write(d)
				default:
					return
				}
			}
		}
	}
}

// Done is closed once Run has returned.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}

func (r *Recorder) write(d AccessDecision) {
	// Writes use a fresh context: the originating request may be gone.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.store.InsertDecision(ctx, d); err != nil {
		r.logger.Warn("persist access decision", slog.Any("error", err))
	}
	if !d.Incident {
		return
	}
	if err := r.store.InsertIncident(ctx, d); err != nil {
		r.logger.Warn("persist security incident", slog.Any("error", err))
	}
	if r.notifier != nil {
		r.notifier.NotifyIncident(ctx, d)
	}
}

// MemorySink collects decisions in memory. Used in tests and as a stand-in
// when no store is configured.
type MemorySink struct {
	mu        sync.Mutex
	decisions []AccessDecision
}

// Record implements Sink.
func (s *MemorySink) Record(_ context.Context, d AccessDecision) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.At.IsZero() {
		d.At = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, d)
}

// Decisions returns a copy of everything recorded so far.
func (s *MemorySink) Decisions() []AccessDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AccessDecision, len(s.decisions))
	copy(out, s.decisions)
	return out
}

// Incidents returns only the decisions flagged as security incidents.
func (s *MemorySink) Incidents() []AccessDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []AccessDecision
	for _, d := range s.decisions {
		if d.Incident {
			out = append(out, d)
		}
	}
	return out
}
