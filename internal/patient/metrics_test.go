package patient

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsHooks(t *testing.T) {
	t.Parallel()

	m := NewMetrics(prometheus.NewRegistry())
	h := m.Hooks()

	h.OnIngest(1)
	h.OnIngest(2)
	h.OnReject("invalid_json")
	h.OnConfirm(Outcome{Status: DeliveryDelivered, Duration: 20 * time.Millisecond})
	h.OnConfirm(Outcome{Status: DeliveryFailed, Err: errors.New("x")})
	h.OnConfirm(Outcome{Status: DeliverySkipped})

	if got := testutil.ToFloat64(m.IngestedTotal); got != 2 {
		t.Errorf("ingested = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.StoredRecords); got != 2 {
		t.Errorf("stored = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RejectedTotal.WithLabelValues("invalid_json")); got != 1 {
		t.Errorf("rejected{invalid_json} = %v, want 1", got)
	}
	for _, status := range []DeliveryStatus{DeliveryDelivered, DeliveryFailed, DeliverySkipped} {
		if got := testutil.ToFloat64(m.ConfirmsTotal.WithLabelValues(string(status))); got != 1 {
			t.Errorf("confirmations{%s} = %v, want 1", status, got)
		}
	}
	if got := testutil.CollectAndCount(m.DeliveryDuration); got != 2 {
		t.Errorf("delivery duration series = %d, want 2", got)
	}

	h.OnReset()
	if got := testutil.ToFloat64(m.StoredRecords); got != 0 {
		t.Errorf("stored after reset = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.ResetsTotal); got != 1 {
		t.Errorf("resets = %v, want 1", got)
	}
}

func TestNewMetrics_DoubleRegisterPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("second NewMetrics on same registry did not panic")
		}
	}()
	NewMetrics(reg)
}
