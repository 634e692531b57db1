package tui

import (
	"time"

	"github.com/linnemanlabs/triageboard/internal/patient"
)

// SnapshotMsg delivers a successful poll result to the TUI.
type SnapshotMsg struct {
	Records   []*patient.Record
	FetchedAt time.Time
}

// PollErrorMsg signals a poll failure. The last snapshot stays on screen.
type PollErrorMsg struct{ Err error }

// ConfirmResultMsg reports the outcome of a confirmation request.
type ConfirmResultMsg struct {
	Index int
	Err   error
}
