// Package dashboard holds the nurse-facing board state: the polled record
// list plus the per-row overlay (triage overrides, confirmed and cleared
// rows) that lives only in the client. Renderers drive it; it does no I/O
// of its own beyond the Sender passed to Confirm.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/linnemanlabs/triageboard/internal/patient"
)

var (
	ErrUnknownRow       = errors.New("dashboard: unknown row")
	ErrInvalidTriage    = errors.New("dashboard: triage level must be 1-5")
	ErrRowLocked        = errors.New("dashboard: row is confirmed")
	ErrAlreadyConfirmed = errors.New("dashboard: row already confirmed")
	ErrRowCleared       = errors.New("dashboard: row was cleared")
	ErrConfirmInFlight  = errors.New("dashboard: another confirmation is in flight")
)

// RowState is the lifecycle of a row on the board.
type RowState int

const (
	StatePending RowState = iota
	StateConfirmed
	StateCleared
)

func (s RowState) String() string {
	switch s {
	case StateConfirmed:
		return "confirmed"
	case StateCleared:
		return "cleared"
	default:
		return "pending"
	}
}

// Sender delivers a confirmation payload to the server.
type Sender interface {
	Confirm(ctx context.Context, rec *patient.Record) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, rec *patient.Record) error

// Confirm calls f.
func (f SenderFunc) Confirm(ctx context.Context, rec *patient.Record) error { return f(ctx, rec) }

// Board is the client-side view model. Overlay state is keyed by store
// index and is not reconciled when the server store is reset: a new record
// that later takes a stale index inherits that index's overlay.
type Board struct {
	mu        sync.Mutex
	records   []*patient.Record
	overrides map[int]string
	confirmed map[int]bool
	order     []int // confirmed indices, in confirmation order
	cleared   map[int]bool

	inflight *semaphore.Weighted
	busy     atomic.Bool
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{
		overrides: make(map[int]string),
		confirmed: make(map[int]bool),
		cleared:   make(map[int]bool),
		inflight:  semaphore.NewWeighted(1),
	}
}

// Replace swaps in a fresh snapshot from the server. Overlay state is kept.
func (b *Board) Replace(records []*patient.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = records
}

// Len returns the number of records held, cleared ones included.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// Busy reports whether a confirmation is outstanding. While true, every
// confirm control is disabled.
func (b *Board) Busy() bool {
	return b.busy.Load()
}

// State returns the lifecycle state of the row at index.
func (b *Board) State(index int) RowState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked(index)
}

func (b *Board) stateLocked(index int) RowState {
	switch {
	case b.cleared[index]:
		return StateCleared
	case b.confirmed[index]:
		return StateConfirmed
	default:
		return StatePending
	}
}

// SetTriage records a nurse override for the row at index.
func (b *Board) SetTriage(index int, level string) error {
	if !patient.ValidTriage(level) {
		return ErrInvalidTriage
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.records) {
		return ErrUnknownRow
	}
	switch b.stateLocked(index) {
	case StateConfirmed:
		return ErrRowLocked
	case StateCleared:
		return ErrRowCleared
	}
	b.overrides[index] = level
	return nil
}

// Triage returns the selector value for the row at index: the override if
// set, else the normalized stored level, else DefaultTriage.
func (b *Board) Triage(index int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.triageLocked(index)
}

func (b *Board) triageLocked(index int) string {
	var lvl string
	if o, ok := b.overrides[index]; ok {
		lvl = patient.NormalizeTriage(o)
	} else if index >= 0 && index < len(b.records) {
		v, _ := b.records[index].Get(patient.TriageField)
		lvl = patient.TriageLevel(v)
	}
	if lvl == "" {
		return patient.DefaultTriage
	}
	return lvl
}

// BeginConfirm validates the row at index, claims the in-flight slot and
// returns the payload to send. The caller must invoke finish exactly once
// with the send result; a nil error marks the row confirmed.
func (b *Board) BeginConfirm(index int) (*patient.Record, func(error), error) {
	b.mu.Lock()
	if index < 0 || index >= len(b.records) {
		b.mu.Unlock()
		return nil, nil, ErrUnknownRow
	}
	switch b.stateLocked(index) {
	case StateConfirmed:
		b.mu.Unlock()
		return nil, nil, ErrAlreadyConfirmed
	case StateCleared:
		b.mu.Unlock()
		return nil, nil, ErrRowCleared
	}
	if !b.inflight.TryAcquire(1) {
		b.mu.Unlock()
		return nil, nil, ErrConfirmInFlight
	}
	b.busy.Store(true)

	payload := b.records[index].Clone()
	if o, ok := b.overrides[index]; ok && payload.Has(patient.TriageField) {
		payload.SetString(patient.TriageField, o)
	}
	b.mu.Unlock()

	var once sync.Once
	finish := func(err error) {
		once.Do(func() {
			b.mu.Lock()
			if err == nil && !b.confirmed[index] {
				b.confirmed[index] = true
				b.order = append(b.order, index)
			}
			b.mu.Unlock()
			b.busy.Store(false)
			b.inflight.Release(1)
		})
	}
	return payload, finish, nil
}

// Confirm sends the row at index through s and marks it confirmed on
// success. Confirming an already confirmed row is a no-op.
func (b *Board) Confirm(ctx context.Context, index int, s Sender) error {
	payload, finish, err := b.BeginConfirm(index)
	if errors.Is(err, ErrAlreadyConfirmed) {
		return nil
	}
	if err != nil {
		return err
	}
	err = s.Confirm(ctx, payload)
	finish(err)
	return err
}

// ConfirmedCount returns how many rows are confirmed and not yet cleared.
func (b *Board) ConfirmedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

// ClearConfirmed moves every confirmed row to cleared once approve agrees,
// dropping their overrides. It returns the number of rows cleared.
func (b *Board) ClearConfirmed(approve func(n int) bool) int {
	b.mu.Lock()
	n := len(b.order)
	b.mu.Unlock()
	if n == 0 || approve == nil || !approve(n) {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, idx := range b.order {
		b.cleared[idx] = true
		delete(b.confirmed, idx)
		delete(b.overrides, idx)
	}
	n = len(b.order)
	b.order = nil
	return n
}
