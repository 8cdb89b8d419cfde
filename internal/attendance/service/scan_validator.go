package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/clock"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/metrics"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

// MaxPayloadBytes is the largest scan message accepted.
const MaxPayloadBytes = 4 << 10

const tracerName = "github.com/liyanaidrs/CPC357-Assign2/internal/attendance/service"

// FeedbackSender delivers a single feedback message to the devices.
type FeedbackSender interface {
	Publish(ctx context.Context, fb types.Feedback) error
}

type ValidatorConfig struct {
	// StoreTimeout bounds each Lookup and Append call. Defaults to 5s.
	StoreTimeout time.Duration
	Policy       StatePolicy
}

// ValidatorDeps are the collaborators of a ScanValidator. Clock, Logger and
// Metrics are optional.
type ValidatorDeps struct {
	Identities store.IdentityStore
	Events     store.EventLog
	Feedback   FeedbackSender
	Clock      *clock.Clock
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// Result is what one scan produced. Event is zero when nothing was logged.
type Result struct {
	Event    types.AttendanceEvent
	Feedback types.Feedback
}

// ScanValidator runs the per-scan pipeline: decode, classify, append one
// attendance event, publish one feedback message.
type ScanValidator struct {
	identities store.IdentityStore
	events     store.EventLog
	feedback   FeedbackSender
	clock      *clock.Clock
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	cfg        ValidatorConfig
}

func NewScanValidator(deps ValidatorDeps, cfg ValidatorConfig) *ScanValidator {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyPermissive
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &ScanValidator{
		identities: deps.Identities,
		events:     deps.Events,
		feedback:   deps.Feedback,
		clock:      clk,
		logger:     logger,
		metrics:    deps.Metrics,
		tracer:     otel.Tracer(tracerName),
		cfg:        cfg,
	}
}

// Handle processes one inbound payload. Failures are reported on the
// diagnostic stream; the caller never needs to act on them.
func (v *ScanValidator) Handle(ctx context.Context, payload []byte) {
	_, _ = v.Validate(ctx, payload)
}

// Validate is Handle with the outcome exposed. Exactly one feedback message
// is attempted per call. The returned error wraps ErrDecode,
// ErrStoreUnavailable or ErrPublish.
//
// A received scan is always answered: cancellation of ctx does not interrupt
// the pipeline, only StoreTimeout bounds it.
func (v *ScanValidator) Validate(ctx context.Context, payload []byte) (Result, error) {
	start := time.Now()
	scanID := uuid.NewString()
	ctx = context.WithoutCancel(ctx)

	ctx, span := v.tracer.Start(ctx, "scan.handle",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String("scan.id", scanID)),
	)
	defer span.End()
	defer v.metrics.ObserveScan(start)

	log := v.logger.With("scan_id", scanID)
	v.metrics.IncrementReceived()
	log.Info("scan received", "bytes", len(payload))

	uid, err := decodeScan(payload)
	if err != nil {
		res := Result{Feedback: types.Feedback{Status: types.OutcomeInvalid}}
		v.fail(log, span, kindDecode, err)
		return res, errors.Join(err, v.publish(ctx, log, span, res.Feedback))
	}
	span.SetAttributes(attribute.String("scan.uid", uid))

	// One instant for both classification and the log row.
	now := v.clock.Now()

	rec, found, err := v.lookup(ctx, uid)
	if err != nil {
		res := Result{Feedback: types.Feedback{Status: types.OutcomeInvalid}}
		v.fail(log, span, kindStore, err)
		return res, errors.Join(err, v.publish(ctx, log, span, res.Feedback))
	}

	status, fb := classify(rec, found, v.cfg.Policy)
	ev := types.AttendanceEvent{
		Identifier:     uid,
		ResolvedStatus: status,
		OccurredAt:     now,
	}

	id, err := v.appendEvent(ctx, ev)
	if err != nil {
		res := Result{Feedback: types.Feedback{Status: types.OutcomeInvalid}}
		v.fail(log, span, kindStore, err)
		return res, errors.Join(err, v.publish(ctx, log, span, res.Feedback))
	}
	ev.RecordID = id
	v.metrics.IncrementOutcome(string(status))

	span.SetAttributes(
		attribute.String("scan.resolved_status", string(status)),
		attribute.String("scan.outcome", string(fb.Status)),
	)
	log.Info("scan classified",
		"uid", uid,
		"resolved_status", status,
		"outcome", fb.Status,
		"record_id", id,
	)

	res := Result{Event: ev, Feedback: fb}
	return res, v.publish(ctx, log, span, fb)
}

func (v *ScanValidator) lookup(ctx context.Context, uid string) (types.IdentityRecord, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, v.cfg.StoreTimeout)
	defer cancel()

	rec, err := v.identities.Lookup(ctx, uid)
	switch {
	case err == nil:
		return rec, true, nil
	case errors.Is(err, store.ErrNotFound):
		return types.IdentityRecord{}, false, nil
	default:
		return types.IdentityRecord{}, false, fmt.Errorf("%w: lookup: %w", ErrStoreUnavailable, err)
	}
}

func (v *ScanValidator) appendEvent(ctx context.Context, ev types.AttendanceEvent) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, v.cfg.StoreTimeout)
	defer cancel()

	id, err := v.events.Append(ctx, ev)
	if err != nil {
		return 0, fmt.Errorf("%w: append: %w", ErrStoreUnavailable, err)
	}
	return id, nil
}

// publish sends fb once. Failures are logged and never retried.
func (v *ScanValidator) publish(ctx context.Context, log *slog.Logger, span trace.Span, fb types.Feedback) error {
	if err := v.feedback.Publish(ctx, fb); err != nil {
		err = fmt.Errorf("%w: %w", ErrPublish, err)
		v.fail(log, span, kindPublish, err)
		return err
	}
	v.metrics.IncrementFeedback(string(fb.Status))
	return nil
}

func (v *ScanValidator) fail(log *slog.Logger, span trace.Span, kind string, err error) {
	v.metrics.IncrementFailure(kind)
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)

	level := slog.LevelError
	if kind == kindDecode {
		level = slog.LevelWarn
	}
	log.Log(context.Background(), level, "scan failed", "kind", kind, "err", err)
}

// decodeScan extracts the identifier verbatim. A whitespace-only uid is a
// well-formed scan and is left for lookup to deny.
func decodeScan(payload []byte) (string, error) {
	if len(payload) > MaxPayloadBytes {
		return "", fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrDecode, len(payload), MaxPayloadBytes)
	}
	// json.Unmarshal would substitute U+FFFD and lose the identifier.
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("%w: payload is not valid UTF-8", ErrDecode)
	}

	var msg types.ScanMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if msg.UID == "" {
		return "", fmt.Errorf("%w: uid is required", ErrDecode)
	}
	return msg.UID, nil
}
