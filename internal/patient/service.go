package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"
)

// DeliveryStatus is the result of forwarding a confirmation.
type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliverySkipped   DeliveryStatus = "skipped"
)

// Outcome describes a single confirmation delivery attempt.
type Outcome struct {
	DeliveryID string
	Status     DeliveryStatus
	StatusCode int
	Err        error
	Duration   time.Duration
}

// Notifier forwards a confirmed record downstream. Failures are reported
// through the Outcome, never as a returned error.
type Notifier interface {
	Notify(ctx context.Context, rec *Record) Outcome
}

// Hooks are optional callbacks for observability.
type Hooks struct {
	OnIngest  func(storeSize int)
	OnReject  func(reason string)
	OnConfirm func(o Outcome)
	OnReset   func()
}

// Service is the business boundary for patient record operations.
type Service struct {
	store    Store
	notifier Notifier
	logger   log.Logger
	hooks    Hooks
	unwrap   bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithHooks installs observability callbacks.
func WithHooks(h Hooks) ServiceOption {
	return func(s *Service) { s.hooks = h }
}

// WithEnvelopeUnwrap strips n8n agent envelopes from ingested bodies.
func WithEnvelopeUnwrap(enabled bool) ServiceOption {
	return func(s *Service) { s.unwrap = enabled }
}

// NewService creates a new patient service. A nil notifier skips every
// confirmation.
func NewService(store Store, notifier Notifier, logger log.Logger, opts ...ServiceOption) *Service {
	if store == nil {
		panic(xerrors.New("patient store is required"))
	}
	if logger == nil {
		logger = log.Nop()
	}
	s := &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ingest parses body as a record and appends it to the store, returning
// its index. ErrInvalidJSON and ErrNotObject report rejected bodies.
func (s *Service) Ingest(ctx context.Context, body []byte) (int, error) {
	if s.unwrap {
		body = UnwrapEnvelope(body)
	}
	rec, err := ParseRecord(body)
	if err != nil {
		s.reject(err)
		return 0, err
	}

	idx, err := s.store.Append(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("append record: %w", err)
	}

	s.logger.Info(ctx, "record ingested", "index", idx, "fields", rec.Len())
	if s.hooks.OnIngest != nil {
		s.hooks.OnIngest(idx + 1)
	}
	return idx, nil
}

// List returns every stored record in insertion order.
func (s *Service) List(ctx context.Context) ([]*Record, error) {
	return s.store.ReadAll(ctx)
}

// Confirm parses body as a record and forwards it to the notifier.
// Parse failures are returned; delivery failures are logged and reported
// only through the Outcome.
func (s *Service) Confirm(ctx context.Context, body []byte) (Outcome, error) {
	rec, err := ParseRecord(body)
	if err != nil {
		return Outcome{}, err
	}
	return s.ConfirmRecord(ctx, rec), nil
}

// ConfirmRecord forwards rec to the notifier.
func (s *Service) ConfirmRecord(ctx context.Context, rec *Record) Outcome {
	var o Outcome
	if s.notifier == nil {
		o = Outcome{Status: DeliverySkipped}
	} else {
		o = s.notifier.Notify(ctx, rec)
	}

	id, _ := ExtractField(rec, PatientIDCandidates)
	L := s.logger.With("delivery_id", o.DeliveryID, "patient_id", Text(id))
	switch o.Status {
	case DeliveryFailed:
		L.Error(ctx, o.Err, "confirmation delivery failed", "status_code", o.StatusCode, "duration", o.Duration)
	case DeliverySkipped:
		L.Info(ctx, "confirmation delivery skipped, no webhook configured")
	default:
		L.Info(ctx, "confirmation delivered", "status_code", o.StatusCode, "duration", o.Duration)
	}

	if s.hooks.OnConfirm != nil {
		s.hooks.OnConfirm(o)
	}
	return o
}

// Reset empties the store.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	s.logger.Warn(ctx, "record store reset")
	if s.hooks.OnReset != nil {
		s.hooks.OnReset()
	}
	return nil
}

func (s *Service) reject(err error) {
	if s.hooks.OnReject == nil {
		return
	}
	reason := "invalid_json"
	if errors.Is(err, ErrNotObject) {
		reason = "not_object"
	}
	s.hooks.OnReject(reason)
}
