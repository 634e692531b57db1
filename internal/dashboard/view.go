package dashboard

import (
	"slices"

	"github.com/linnemanlabs/triageboard/internal/patient"
)

// Row is one rendered table row.
type Row struct {
	Index  int      // store index, the row's identity
	Cells  []string // display text per View.Columns entry
	Triage string   // selector value
	State  RowState
}

// Editable reports whether the triage selector accepts changes.
func (r Row) Editable() bool { return r.State == StatePending }

// View is a render-ready snapshot of the board.
type View struct {
	Columns        []string
	TriageColumn   int   // position of the triage selector in Columns, or -1
	Rows           []Row // newest first, cleared rows omitted
	Total          int   // records held, cleared ones included
	ConfirmedCount int
	Busy           bool
}

// Empty reports whether the server has no records at all.
func (v View) Empty() bool { return v.Total == 0 }

// View builds the current render model. Columns are the union of keys
// across every held record in order of first appearance.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	cols := Columns(b.records)
	v := View{
		Columns:        cols,
		TriageColumn:   slices.Index(cols, patient.TriageField),
		Rows:           make([]Row, 0, len(b.records)),
		Total:          len(b.records),
		ConfirmedCount: len(b.order),
		Busy:           b.busy.Load(),
	}

	for i := len(b.records) - 1; i >= 0; i-- {
		state := b.stateLocked(i)
		if state == StateCleared {
			continue
		}
		rec := b.records[i]
		cells := make([]string, len(cols))
		for c, key := range cols {
			raw, _ := rec.Get(key)
			cells[c] = patient.Text(raw)
		}
		v.Rows = append(v.Rows, Row{
			Index:  i,
			Cells:  cells,
			Triage: b.triageLocked(i),
			State:  state,
		})
	}
	return v
}

// Columns returns the union of record keys in order of first appearance.
func Columns(records []*patient.Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range records {
		for _, k := range r.Keys() {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}
