package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linnemanlabs/triageboard/internal/dashboard"
	"github.com/linnemanlabs/triageboard/internal/patient"
)

const (
	// confirmFailedText is shown when a confirmation is not accepted.
	confirmFailedText = "Failed to confirm. Please try again."
	// clearPromptText is the clear-confirmed approval question.
	clearPromptText = "Are you sure you want to remove all confirmed records from the display?"

	defaultConfirmTimeout = 10 * time.Second
)

// Refresher requests an out-of-band poll.
type Refresher interface {
	Refresh()
}

// Config wires the App to its collaborators.
type Config struct {
	Board          *dashboard.Board
	Sender         dashboard.Sender
	Refresher      Refresher // optional
	ServerURL      string
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
}

// App is the root Bubble Tea model for the triage dashboard.
type App struct {
	board          *dashboard.Board
	sender         dashboard.Sender
	refresher      Refresher
	serverURL      string
	pollInterval   time.Duration
	confirmTimeout time.Duration

	// selected is the store index of the highlighted row, -1 when none.
	selected int

	// Poll state
	lastError   error
	lastUpdated time.Time

	// Layout
	width, height int

	// UI state
	showHelp     bool
	confirmClear bool
	alert        string
	status       string
}

// NewApp creates a new App. Records arrive via SnapshotMsg.
func NewApp(cfg Config) *App {
	if cfg.Board == nil {
		cfg.Board = dashboard.NewBoard()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = dashboard.DefaultInterval
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = defaultConfirmTimeout
	}
	return &App{
		board:          cfg.Board,
		sender:         cfg.Sender,
		refresher:      cfg.Refresher,
		serverURL:      cfg.ServerURL,
		pollInterval:   cfg.PollInterval,
		confirmTimeout: cfg.ConfirmTimeout,
		selected:       -1,
	}
}

// Init implements tea.Model. Polling runs outside the program and feeds
// SnapshotMsg through Program.Send.
func (app *App) Init() tea.Cmd {
	return tea.SetWindowTitle("Nurse Interface")
}

// Update implements tea.Model.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height

	case SnapshotMsg:
		app.board.Replace(msg.Records)
		app.lastError = nil
		app.lastUpdated = msg.FetchedAt
		app.fixSelection()

	case PollErrorMsg:
		app.lastError = msg.Err

	case ConfirmResultMsg:
		if msg.Err != nil {
			app.alert = confirmFailedText
			app.status = ""
		} else {
			app.status = "confirmed row " + strconv.Itoa(msg.Index+1)
		}

	case tea.KeyMsg:
		return app.handleKey(msg)
	}

	return app, nil
}

func (app *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The alert blocks all other input until dismissed.
	if app.alert != "" {
		if msg.Type == tea.KeyCtrlC {
			return app, tea.Quit
		}
		app.alert = ""
		return app, nil
	}

	if app.confirmClear {
		switch {
		case key.Matches(msg, keys.Yes):
			app.confirmClear = false
			n := app.board.ClearConfirmed(func(int) bool { return true })
			app.status = "cleared " + strconv.Itoa(n) + " confirmed"
			app.fixSelection()
		case key.Matches(msg, keys.No):
			app.confirmClear = false
		}
		return app, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return app, tea.Quit
	case key.Matches(msg, keys.Up):
		app.move(-1)
	case key.Matches(msg, keys.Down):
		app.move(1)
	case key.Matches(msg, keys.Triage):
		if app.selected < 0 {
			return app, nil
		}
		if err := app.board.SetTriage(app.selected, msg.String()); err != nil {
			app.status = err.Error()
		} else {
			app.status = ""
		}
	case key.Matches(msg, keys.Confirm):
		return app, app.beginConfirm()
	case key.Matches(msg, keys.Clear):
		if app.board.ConfirmedCount() > 0 {
			app.confirmClear = true
		}
	case key.Matches(msg, keys.Refresh):
		if app.refresher != nil {
			app.refresher.Refresh()
		}
	case key.Matches(msg, keys.Help):
		app.showHelp = !app.showHelp
	}
	return app, nil
}

// beginConfirm claims the in-flight slot for the selected row and returns
// the command that delivers it.
func (app *App) beginConfirm() tea.Cmd {
	if app.selected < 0 || app.sender == nil {
		return nil
	}
	payload, finish, err := app.board.BeginConfirm(app.selected)
	switch {
	case err == nil:
		app.status = "confirming row " + strconv.Itoa(app.selected+1) + "..."
		return confirmCmd(app.sender, app.selected, payload, finish, app.confirmTimeout)
	case errors.Is(err, dashboard.ErrAlreadyConfirmed), errors.Is(err, dashboard.ErrConfirmInFlight):
		return nil
	default:
		app.status = err.Error()
		return nil
	}
}

// confirmCmd sends payload in a goroutine and releases the board's
// in-flight slot before reporting the outcome.
func confirmCmd(s dashboard.Sender, index int, payload *patient.Record, finish func(error), timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := s.Confirm(ctx, payload)
		finish(err)
		return ConfirmResultMsg{Index: index, Err: err}
	}
}

// move shifts the selection by delta visible rows.
func (app *App) move(delta int) {
	rows := app.board.View().Rows
	if len(rows) == 0 {
		app.selected = -1
		return
	}
	pos := rowPosition(rows, app.selected)
	if pos < 0 {
		app.selected = rows[0].Index
		return
	}
	pos += delta
	pos = max(0, min(pos, len(rows)-1))
	app.selected = rows[pos].Index
}

// fixSelection keeps the selection on a visible row.
func (app *App) fixSelection() {
	rows := app.board.View().Rows
	if len(rows) == 0 {
		app.selected = -1
		return
	}
	if rowPosition(rows, app.selected) >= 0 {
		return
	}
	// Prefer the nearest remaining row with a lower store index.
	for _, r := range rows {
		if r.Index < app.selected {
			app.selected = r.Index
			return
		}
	}
	app.selected = rows[0].Index
}

func rowPosition(rows []dashboard.Row, index int) int {
	for i, r := range rows {
		if r.Index == index {
			return i
		}
	}
	return -1
}

// View implements tea.Model. Renders the full TUI.
func (app *App) View() string {
	v := app.board.View()
	parts := []string{renderHeader(app, v)}

	switch {
	case app.alert != "":
		parts = append(parts, renderAlert(app))
	case app.confirmClear:
		parts = append(parts, renderClearConfirm(app, v))
	case v.Empty():
		parts = append(parts, "", StyleEmpty.Render("No patients yet!"))
	default:
		parts = append(parts, renderTable(app, v))
	}

	if app.status != "" {
		parts = append(parts, StyleDim.Render(sanitize(app.status)))
	}
	parts = append(parts, renderFooter(app))

	return strings.Join(parts, "\n")
}
