package patient

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/linnemanlabs/go-core/log"
)

// mockStore implements Store for testing.
type mockStore struct {
	mu        sync.Mutex
	records   []*Record
	appendErr error
	resetErr  error
}

func (m *mockStore) Append(_ context.Context, r *Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return 0, m.appendErr
	}
	m.records = append(m.records, r.Clone())
	return len(m.records) - 1, nil
}

func (m *mockStore) ReadAll(_ context.Context) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Record, len(m.records))
	for i, r := range m.records {
		out[i] = r.Clone()
	}
	return out, nil
}

func (m *mockStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.records = nil
	return nil
}

// mockNotifier records every forwarded record.
type mockNotifier struct {
	mu      sync.Mutex
	got     []*Record
	outcome Outcome
}

func (m *mockNotifier) Notify(_ context.Context, r *Record) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, r.Clone())
	return m.outcome
}

func TestNewService_NilStorePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("NewService(nil, ...) did not panic")
		}
	}()
	NewService(nil, nil, log.Nop())
}

func TestNewService_NilLogger(t *testing.T) {
	t.Parallel()

	svc := NewService(&mockStore{}, nil, nil)
	if svc.logger == nil {
		t.Fatal("NewService left logger nil; expected Nop logger")
	}
}

func TestIngest_AppendsInOrder(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	svc := NewService(store, nil, log.Nop())
	ctx := context.Background()

	for i, body := range []string{`{"id":"a"}`, `{"id":"b"}`, `{"id":"c"}`} {
		idx, err := svc.Ingest(ctx, []byte(body))
		if err != nil {
			t.Fatalf("Ingest(%s): %v", body, err)
		}
		if idx != i {
			t.Errorf("Ingest(%s) index = %d, want %d", body, idx, i)
		}
	}

	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List len = %d, want 3", len(got))
	}
	v, _ := got[2].Get("id")
	if Text(v) != "c" {
		t.Errorf("record 2 id = %q, want %q", Text(v), "c")
	}
}

func TestIngest_RejectsAndCountsReason(t *testing.T) {
	t.Parallel()

	var reasons []string
	store := &mockStore{}
	svc := NewService(store, nil, log.Nop(), WithHooks(Hooks{
		OnReject: func(reason string) { reasons = append(reasons, reason) },
	}))

	if _, err := svc.Ingest(context.Background(), []byte(`{bad`)); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("Ingest invalid err = %v, want ErrInvalidJSON", err)
	}
	if _, err := svc.Ingest(context.Background(), []byte(`[1,2]`)); !errors.Is(err, ErrNotObject) {
		t.Errorf("Ingest array err = %v, want ErrNotObject", err)
	}
	if len(store.records) != 0 {
		t.Errorf("store holds %d records after rejects, want 0", len(store.records))
	}
	if len(reasons) != 2 || reasons[0] != "invalid_json" || reasons[1] != "not_object" {
		t.Errorf("reject reasons = %v", reasons)
	}
}

func TestIngest_StoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	svc := NewService(&mockStore{appendErr: boom}, nil, log.Nop())
	if _, err := svc.Ingest(context.Background(), []byte(`{}`)); !errors.Is(err, boom) {
		t.Errorf("Ingest err = %v, want wrapped boom", err)
	}
}

func TestIngest_UnwrapsEnvelopeWhenEnabled(t *testing.T) {
	t.Parallel()

	body := []byte(`[{"output":"{\"patient_id\":\"er_1\"}"}]`)

	plain := NewService(&mockStore{}, nil, log.Nop())
	if _, err := plain.Ingest(context.Background(), body); !errors.Is(err, ErrNotObject) {
		t.Errorf("Ingest without unwrap err = %v, want ErrNotObject", err)
	}

	store := &mockStore{}
	unwrapping := NewService(store, nil, log.Nop(), WithEnvelopeUnwrap(true))
	if _, err := unwrapping.Ingest(context.Background(), body); err != nil {
		t.Fatalf("Ingest with unwrap: %v", err)
	}
	v, _ := store.records[0].Get("patient_id")
	if Text(v) != "er_1" {
		t.Errorf("patient_id = %q, want %q", Text(v), "er_1")
	}
}

func TestIngest_UnwrapKeepsRecordsWithPlainOutput(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"output":"42"}`, `{"output":"true"}`, `{"output":"[1,2]"}`} {
		store := &mockStore{}
		svc := NewService(store, nil, log.Nop(), WithEnvelopeUnwrap(true))
		if _, err := svc.Ingest(context.Background(), []byte(body)); err != nil {
			t.Errorf("Ingest(%s): %v", body, err)
			continue
		}
		if len(store.records) != 1 {
			t.Fatalf("Ingest(%s) stored %d records, want 1", body, len(store.records))
		}
		v, ok := store.records[0].Get("output")
		if !ok {
			t.Errorf("Ingest(%s) lost the output field", body)
			continue
		}
		if want := body[len(`{"output":`) : len(body)-1]; string(v) != want {
			t.Errorf("Ingest(%s) output = %s, want %s", body, v, want)
		}
	}
}

func TestConfirm_ForwardsRecord(t *testing.T) {
	t.Parallel()

	n := &mockNotifier{outcome: Outcome{Status: DeliveryDelivered, StatusCode: 200}}
	var seen []Outcome
	svc := NewService(&mockStore{}, n, log.Nop(), WithHooks(Hooks{
		OnConfirm: func(o Outcome) { seen = append(seen, o) },
	}))

	o, err := svc.Confirm(context.Background(), []byte(`{"id":"p1","triage level":"4"}`))
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if o.Status != DeliveryDelivered {
		t.Errorf("Status = %q, want %q", o.Status, DeliveryDelivered)
	}
	if len(n.got) != 1 {
		t.Fatalf("notifier got %d records, want 1", len(n.got))
	}
	v, _ := n.got[0].Get(TriageField)
	if Text(v) != "4" {
		t.Errorf("forwarded triage = %q, want %q", Text(v), "4")
	}
	if len(seen) != 1 {
		t.Errorf("OnConfirm called %d times, want 1", len(seen))
	}
}

func TestConfirm_FailedDeliveryIsNotAnError(t *testing.T) {
	t.Parallel()

	n := &mockNotifier{outcome: Outcome{Status: DeliveryFailed, Err: errors.New("connection refused")}}
	svc := NewService(&mockStore{}, n, log.Nop())

	o, err := svc.Confirm(context.Background(), []byte(`{"id":"p1"}`))
	if err != nil {
		t.Fatalf("Confirm err = %v, want nil", err)
	}
	if o.Status != DeliveryFailed {
		t.Errorf("Status = %q, want %q", o.Status, DeliveryFailed)
	}
}

func TestConfirm_ParseError(t *testing.T) {
	t.Parallel()

	n := &mockNotifier{}
	svc := NewService(&mockStore{}, n, log.Nop())
	if _, err := svc.Confirm(context.Background(), []byte(`nope`)); err == nil {
		t.Fatal("Confirm with invalid body err = nil")
	}
	if len(n.got) != 0 {
		t.Error("notifier called for unparseable body")
	}
}

func TestConfirm_NilNotifierSkips(t *testing.T) {
	t.Parallel()

	svc := NewService(&mockStore{}, nil, log.Nop())
	o, err := svc.Confirm(context.Background(), []byte(`{"id":"p1"}`))
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if o.Status != DeliverySkipped {
		t.Errorf("Status = %q, want %q", o.Status, DeliverySkipped)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	resets := 0
	store := &mockStore{}
	svc := NewService(store, nil, log.Nop(), WithHooks(Hooks{OnReset: func() { resets++ }}))
	ctx := context.Background()
	_, _ = svc.Ingest(ctx, []byte(`{"id":"a"}`))

	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	got, _ := svc.List(ctx)
	if len(got) != 0 {
		t.Errorf("List after Reset len = %d, want 0", len(got))
	}
	if resets != 1 {
		t.Errorf("OnReset called %d times, want 1", resets)
	}

	boom := errors.New("boom")
	failing := NewService(&mockStore{resetErr: boom}, nil, log.Nop())
	if err := failing.Reset(ctx); !errors.Is(err, boom) {
		t.Errorf("Reset err = %v, want wrapped boom", err)
	}
}
