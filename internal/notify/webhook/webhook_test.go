package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/linnemanlabs/triageboard/internal/patient"
)

func mustRecord(t *testing.T, body string) *patient.Record {
	t.Helper()
	r, err := patient.ParseRecord([]byte(body))
	if err != nil {
		t.Fatalf("ParseRecord(%s): %v", body, err)
	}
	return r
}

func TestNotify_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got []byte
	var deliveryHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		deliveryHeader = r.Header.Get("X-Delivery-Id")
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, 0)
	o := n.Notify(context.Background(), mustRecord(t, `{"name":"Ana","Patient ID":"p1","triage level":"4"}`))

	if o.Status != patient.DeliveryDelivered {
		t.Fatalf("Status = %q, want %q (err %v)", o.Status, patient.DeliveryDelivered, o.Err)
	}
	if o.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", o.StatusCode)
	}
	if o.DeliveryID == "" || o.DeliveryID != deliveryHeader {
		t.Errorf("DeliveryID = %q, header = %q", o.DeliveryID, deliveryHeader)
	}
	if want := `{"patient_id":"p1","triage_level":"4"}`; string(got) != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestNotify_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	o := New("", 0).Notify(context.Background(), mustRecord(t, `{"id":"p1"}`))
	if o.Status != patient.DeliverySkipped {
		t.Errorf("Status = %q, want %q", o.Status, patient.DeliverySkipped)
	}
	if o.Err != nil {
		t.Errorf("Err = %v, want nil", o.Err)
	}
}

func TestNotify_Non2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("e", 2048)))
	}))
	defer srv.Close()

	o := New(srv.URL, 0).Notify(context.Background(), mustRecord(t, `{"id":"p1"}`))
	if o.Status != patient.DeliveryFailed {
		t.Fatalf("Status = %q, want %q", o.Status, patient.DeliveryFailed)
	}
	if o.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", o.StatusCode)
	}
	if o.Err == nil || !strings.Contains(o.Err.Error(), "502") {
		t.Errorf("Err = %v, want mention of 502", o.Err)
	}
	if len(o.Err.Error()) > maxErrorBody+64 {
		t.Errorf("error message length = %d, want body truncated", len(o.Err.Error()))
	}
}

func TestNotify_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	o := New(url, time.Second).Notify(context.Background(), mustRecord(t, `{"id":"p1"}`))
	if o.Status != patient.DeliveryFailed {
		t.Errorf("Status = %q, want %q", o.Status, patient.DeliveryFailed)
	}
	if o.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", o.StatusCode)
	}
}

func TestNotify_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	o := New(srv.URL, 50*time.Millisecond).Notify(context.Background(), mustRecord(t, `{"id":"p1"}`))
	if o.Status != patient.DeliveryFailed {
		t.Errorf("Status = %q, want %q", o.Status, patient.DeliveryFailed)
	}
}

func TestNotify_RecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := New(srv.URL, 0).Notify(context.Background(), mustRecord(t, `{"id":"p1"}`))

	var found bool
	for _, s := range sr.Ended() {
		if s.Name() != "webhook.Notify" {
			continue
		}
		found = true
		if s.Status().Code != codes.Error {
			t.Errorf("span status = %v, want Error", s.Status().Code)
		}
		var idOK bool
		for _, kv := range s.Attributes() {
			if string(kv.Key) == "triageboard.delivery.id" && kv.Value.AsString() == o.DeliveryID {
				idOK = true
			}
		}
		if !idOK {
			t.Error("span missing delivery id attribute")
		}
	}
	if !found {
		t.Fatal("no webhook.Notify span recorded")
	}
}

func TestBuildPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record string
		want   string
	}{
		{"id and level", `{"patient_id":"p1","triage level":"Level 2"}`, `{"patient_id":"p1","triage_level":"Level 2"}`},
		{"numeric id", `{"ID":7,"triage level":3}`, `{"patient_id":7,"triage_level":3}`},
		{"missing id", `{"triage level":"1"}`, `{"patient_id":null,"triage_level":"1"}`},
		{"missing level omitted", `{"id":"p1"}`, `{"patient_id":"p1"}`},
		{"level key is exact", `{"id":"p1","Triage Level":"2"}`, `{"patient_id":"p1"}`},
		{"null level kept", `{"id":"p1","triage level":null}`, `{"patient_id":"p1","triage_level":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := buildPayload(mustRecord(t, tt.record))
			if err != nil {
				t.Fatalf("buildPayload: %v", err)
			}
			var gotV, wantV any
			if err := json.Unmarshal(got, &gotV); err != nil {
				t.Fatalf("payload not json: %s", got)
			}
			_ = json.Unmarshal([]byte(tt.want), &wantV)
			gj, _ := json.Marshal(gotV)
			wj, _ := json.Marshal(wantV)
			if string(gj) != string(wj) {
				t.Errorf("buildPayload(%s) = %s, want %s", tt.record, got, tt.want)
			}
		})
	}
}
