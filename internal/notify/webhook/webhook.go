// Package webhook forwards triage confirmations to an external HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/tidwall/sjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/triageboard/internal/patient"
)

// DefaultURL is the n8n flow that receives nurse confirmations.
const DefaultURL = "https://lujein.app.n8n.cloud/webhook/triage-confirmation"

const (
	httpTimeout  = 10 * time.Second
	maxErrorBody = 512
)

var tracer = otel.Tracer("github.com/linnemanlabs/triageboard/internal/notify/webhook")

// Notifier posts confirmation payloads to a webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new webhook notifier. If webhookURL is empty, Notify is a
// no-op reporting patient.DeliverySkipped. A zero timeout uses the default.
func New(webhookURL string, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = httpTimeout
	}
	return &Notifier{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Notify posts the identifying fields of rec to the configured webhook.
// It makes a single attempt; failures are described by the returned Outcome.
func (n *Notifier) Notify(ctx context.Context, rec *patient.Record) patient.Outcome {
	if n.webhookURL == "" {
		return patient.Outcome{Status: patient.DeliverySkipped}
	}

	id := ulid.Make().String()
	ctx, span := tracer.Start(ctx, "webhook.Notify", trace.WithAttributes(
		attribute.String("triageboard.delivery.id", id),
	))
	defer span.End()

	start := time.Now()
	code, err := n.post(ctx, id, rec)
	o := patient.Outcome{
		DeliveryID: id,
		Status:     patient.DeliveryDelivered,
		StatusCode: code,
		Duration:   time.Since(start),
	}
	if code != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", code))
	}
	if err != nil {
		o.Status = patient.DeliveryFailed
		o.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return o
}

func (n *Notifier) post(ctx context.Context, deliveryID string, rec *patient.Record) (int, error) {
	body, err := buildPayload(rec)
	if err != nil {
		return 0, fmt.Errorf("webhook: build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", deliveryID)

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return 0, fmt.Errorf("webhook: post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, fmt.Errorf("webhook: returned %d: %s", resp.StatusCode, string(respBody))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return resp.StatusCode, nil
}

// buildPayload extracts {"patient_id", "triage_level"} from rec. A missing
// id is sent as null; a missing triage level is omitted. The triage level
// is forwarded as stored, without normalization.
func buildPayload(rec *patient.Record) ([]byte, error) {
	id, ok := patient.ExtractField(rec, patient.PatientIDCandidates)
	if !ok || len(id) == 0 {
		id = json.RawMessage("null")
	}

	body, err := sjson.SetRawBytes([]byte(`{}`), "patient_id", id)
	if err != nil {
		return nil, err
	}

	if lvl, ok := rec.Get(patient.TriageField); ok && len(lvl) > 0 {
		body, err = sjson.SetRawBytes(body, "triage_level", lvl)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}
