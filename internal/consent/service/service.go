package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"agency/internal/consent/metrics"
	"agency/internal/consent/models"
	dErrors "agency/pkg/domain-errors"
	"agency/pkg/platform/sentinel"
	"agency/pkg/platform/telemetry"
	"agency/pkg/requestcontext"
)

// Repository persists per-visitor consent documents.
type Repository interface {
	LoadItems(ctx context.Context, visitorID string) ([]models.Item, error)
	SaveItems(ctx context.Context, visitorID string, items []models.Item) error
	LoadHistory(ctx context.Context, visitorID string) ([]models.Record, error)
	AppendHistory(ctx context.Context, visitorID string, records ...models.Record) error
	SavePreferences(ctx context.Context, visitorID string, prefs models.Preferences) error
	Clear(ctx context.Context, visitorID string) error
}

// State is a visitor's consent items with their derived validation and
// preferences.
type State struct {
	VisitorID   string                  `json:"visitorId"`
	Items       []models.Item           `json:"items"`
	Validation  models.ValidationResult `json:"validation"`
	Preferences models.Preferences      `json:"preferences"`
}

const defaultSource = "web"

// Service applies consent decisions for visitors. Storage is best effort:
// failures are logged and counted, reads fall back to the default catalog,
// and visitors never see a storage error.
type Service struct {
	repo      Repository
	locks     *visitorLocks
	logger    *slog.Logger
	metrics   *metrics.Metrics
	sink      telemetry.Sink
	tracer    trace.Tracer
	catalog   func() []models.Item
	ipHashKey []byte
	source    string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTelemetry sets the sink that receives consent events.
func WithTelemetry(sink telemetry.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithCatalog overrides models.DefaultItems as the source of consent items.
func WithCatalog(catalog func() []models.Item) Option {
	return func(s *Service) {
		if catalog != nil {
			s.catalog = catalog
		}
	}
}

// WithIPHashKey keys the blake2b hash applied to client IPs in history.
func WithIPHashKey(key []byte) Option {
	return func(s *Service) {
		s.ipHashKey = key
	}
}

// WithRecordSource sets the source stamped on history records.
func WithRecordSource(source string) Option {
	return func(s *Service) {
		if source != "" {
			s.source = source
		}
	}
}

// WithLockTimeout bounds how long a write may wait for the visitor lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.locks.timeout = d
	}
}

// New constructs a Service.
func New(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		locks:   &visitorLocks{},
		logger:  slog.Default(),
		sink:    telemetry.NopSink{},
		tracer:  otel.Tracer("agency/internal/consent/service"),
		catalog: models.DefaultItems,
		source:  defaultSource,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterVisitor stores the default items for a new visitor.
func (s *Service) RegisterVisitor(ctx context.Context, visitorID string) (*State, error) {
	ctx, span := s.startSpan(ctx, "consent.RegisterVisitor", visitorID)
	defer span.End()
	defer s.metrics.ObserveOperation("register_visitor", time.Now())

	items := s.catalog()
	s.saveItems(ctx, visitorID, items)
	s.track(ctx, visitorID, telemetry.EventVisitorCreated, nil)
	return s.stateOf(visitorID, items, requestcontext.Now(ctx)), nil
}

// State returns the visitor's current items, validation and preferences.
func (s *Service) State(ctx context.Context, visitorID string) (*State, error) {
	ctx, span := s.startSpan(ctx, "consent.State", visitorID)
	defer span.End()
	defer s.metrics.ObserveOperation("state", time.Now())

	items := s.loadItems(ctx, visitorID)
	return s.stateOf(visitorID, items, requestcontext.Now(ctx)), nil
}

// Accept accepts one item.
func (s *Service) Accept(ctx context.Context, visitorID, consentID string) (*State, error) {
	return s.transition(ctx, visitorID, consentID, "accept", telemetry.EventConsentAccepted, models.Accept)
}

// Decline declines one pending optional item.
func (s *Service) Decline(ctx context.Context, visitorID, consentID string) (*State, error) {
	return s.transition(ctx, visitorID, consentID, "decline", telemetry.EventConsentDeclined, models.Decline)
}

// Withdraw withdraws one accepted optional item.
func (s *Service) Withdraw(ctx context.Context, visitorID, consentID string) (*State, error) {
	return s.transition(ctx, visitorID, consentID, "withdraw", telemetry.EventConsentWithdrawn, models.Withdraw)
}

// AcceptAllOptional accepts every pending optional item.
func (s *Service) AcceptAllOptional(ctx context.Context, visitorID string) (*State, error) {
	return s.bulk(ctx, visitorID, "accept_optional", models.AcceptAllOptional)
}

// DeclineAllOptional declines every pending optional item.
func (s *Service) DeclineAllOptional(ctx context.Context, visitorID string) (*State, error) {
	return s.bulk(ctx, visitorID, "decline_optional", models.DeclineAllOptional)
}

// WithdrawAll withdraws every accepted optional item.
func (s *Service) WithdrawAll(ctx context.Context, visitorID string) (*State, error) {
	return s.bulk(ctx, visitorID, "withdraw_all", models.WithdrawAll)
}

// History returns the visitor's recorded decisions, oldest first.
func (s *Service) History(ctx context.Context, visitorID string) ([]models.Record, error) {
	ctx, span := s.startSpan(ctx, "consent.History", visitorID)
	defer span.End()

	history, err := s.repo.LoadHistory(ctx, visitorID)
	if err != nil {
		s.storageFailure(ctx, "load_history", visitorID, err)
		return []models.Record{}, nil
	}
	return history, nil
}

// Preferences reports, per policy type, whether the visitor currently allows it.
func (s *Service) Preferences(ctx context.Context, visitorID string) (models.Preferences, error) {
	ctx, span := s.startSpan(ctx, "consent.Preferences", visitorID)
	defer span.End()

	items := s.loadItems(ctx, visitorID)
	return models.DerivePreferences(items, requestcontext.Now(ctx)), nil
}

// Reset forgets every stored decision for the visitor.
func (s *Service) Reset(ctx context.Context, visitorID string) error {
	ctx, span := s.startSpan(ctx, "consent.Reset", visitorID)
	defer span.End()

	err := s.locks.run(ctx, visitorID, func(ctx context.Context) error {
		if err := s.repo.Clear(ctx, visitorID); err != nil {
			s.storageFailure(ctx, "clear", visitorID, err)
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return err
	}
	s.logger.InfoContext(ctx, "consent reset", "visitor_id", visitorID)
	s.track(ctx, visitorID, telemetry.EventConsentReset, nil)
	return nil
}

type transitionFunc func(models.Item, time.Time) (models.Item, error)

func (s *Service) transition(ctx context.Context, visitorID, consentID, action, event string, apply transitionFunc) (*State, error) {
	ctx, span := s.startSpan(ctx, "consent."+action, visitorID, attribute.String("consent.id", consentID))
	defer span.End()
	defer s.metrics.ObserveOperation(action, time.Now())

	var (
		state  *State
		change models.Change
	)
	err := s.locks.run(ctx, visitorID, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		items, err := s.loadItemsForUpdate(ctx, visitorID)
		if err != nil {
			return err
		}
		idx := models.FindItem(items, consentID)
		if idx < 0 {
			return dErrors.New(dErrors.CodeNotFound, "consent "+consentID+" not found")
		}
		after, err := apply(items[idx], now)
		if err != nil {
			return err
		}
		change = models.Change{Before: items[idx], After: after}
		items[idx] = after
		s.persist(ctx, visitorID, items, []models.Change{change}, now)
		state = s.stateOf(visitorID, items, now)
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	s.metrics.IncrementDecisions(action, 1)
	s.logger.InfoContext(ctx, "consent updated",
		"visitor_id", visitorID,
		"consent_id", consentID,
		"from", change.Before.Status,
		"to", change.After.Status,
	)
	s.track(ctx, visitorID, event, map[string]string{
		"consent_id":      consentID,
		"policy_type":     change.After.PolicyType,
		"previous_status": string(change.Before.Status),
	})
	return state, nil
}

type bulkFunc func([]models.Item, time.Time) ([]models.Item, []models.Change)

func (s *Service) bulk(ctx context.Context, visitorID, action string, apply bulkFunc) (*State, error) {
	ctx, span := s.startSpan(ctx, "consent."+action, visitorID)
	defer span.End()
	defer s.metrics.ObserveOperation(action, time.Now())

	var (
		state   *State
		changes []models.Change
	)
	err := s.locks.run(ctx, visitorID, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		items, err := s.loadItemsForUpdate(ctx, visitorID)
		if err != nil {
			return err
		}
		items, changes = apply(items, now)
		if len(changes) > 0 {
			s.persist(ctx, visitorID, items, changes, now)
		}
		state = s.stateOf(visitorID, items, now)
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if len(changes) == 0 {
		return state, nil
	}

	s.metrics.IncrementDecisions(action, len(changes))
	s.logger.InfoContext(ctx, "consent bulk update",
		"visitor_id", visitorID,
		"action", action,
		"changed", len(changes),
	)
	s.track(ctx, visitorID, telemetry.EventConsentBulk, map[string]string{
		"action":  action,
		"changed": strconv.Itoa(len(changes)),
	})
	return state, nil
}

// loadItems returns the visitor's items laid over the current catalog. Any
// storage problem yields the catalog defaults.
func (s *Service) loadItems(ctx context.Context, visitorID string) []models.Item {
	items, err := s.loadItemsForUpdate(ctx, visitorID)
	if err != nil {
		return s.catalog()
	}
	return items
}

// loadItemsForUpdate is loadItems for write paths: a failed read is returned
// instead of falling back, so stored decisions are never replaced by defaults.
func (s *Service) loadItemsForUpdate(ctx context.Context, visitorID string) ([]models.Item, error) {
	catalog := s.catalog()
	stored, err := s.repo.LoadItems(ctx, visitorID)
	switch {
	case err == nil:
		return models.Reconcile(catalog, stored), nil
	case errors.Is(err, sentinel.ErrNotFound):
		return catalog, nil
	case errors.Is(err, sentinel.ErrExpired):
		s.logger.DebugContext(ctx, "consent snapshot expired", "visitor_id", visitorID)
		return catalog, nil
	default:
		s.storageFailure(ctx, "load_items", visitorID, err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "consent storage unavailable")
	}
}

// persist writes the snapshot, history and preferences. Each write fails
// independently.
func (s *Service) persist(ctx context.Context, visitorID string, items []models.Item, changes []models.Change, now time.Time) {
	s.saveItems(ctx, visitorID, items)

	md := s.recordMetadata(ctx)
	records := make([]models.Record, 0, len(changes))
	for _, c := range changes {
		records = append(records, models.Record{
			ID:             uuid.NewString(),
			ConsentID:      c.After.ID,
			Status:         c.After.Status,
			PreviousStatus: c.Before.Status,
			Timestamp:      now,
			PolicyVersion:  c.After.PolicyVersion,
			Metadata:       md,
		})
	}
	if err := s.repo.AppendHistory(ctx, visitorID, records...); err != nil {
		s.storageFailure(ctx, "append_history", visitorID, err)
	}
	if err := s.repo.SavePreferences(ctx, visitorID, models.DerivePreferences(items, now)); err != nil {
		s.storageFailure(ctx, "save_preferences", visitorID, err)
	}
}

func (s *Service) saveItems(ctx context.Context, visitorID string, items []models.Item) {
	if err := s.repo.SaveItems(ctx, visitorID, items); err != nil {
		s.storageFailure(ctx, "save_items", visitorID, err)
	}
}

func (s *Service) stateOf(visitorID string, items []models.Item, now time.Time) *State {
	return &State{
		VisitorID:   visitorID,
		Items:       items,
		Validation:  models.ValidateAllConsents(items, now),
		Preferences: models.DerivePreferences(items, now),
	}
}

func (s *Service) storageFailure(ctx context.Context, op, visitorID string, err error) {
	s.metrics.IncrementStorageError(op)
	s.logger.WarnContext(ctx, "consent storage failure",
		"operation", op,
		"visitor_id", visitorID,
		"error", err,
	)
}

func (s *Service) track(ctx context.Context, visitorID, name string, props map[string]string) {
	s.sink.Track(ctx, telemetry.Event{
		Name:       name,
		VisitorID:  visitorID,
		RequestID:  requestcontext.RequestID(ctx),
		Properties: props,
		Timestamp:  requestcontext.Now(ctx),
	})
}

func (s *Service) startSpan(ctx context.Context, name, visitorID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("visitor.id", visitorID))
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
