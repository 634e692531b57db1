package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/linnemanlabs/triageboard/internal/dashboard"
)

const (
	maxCellWidth  = 28
	confirmHeader = "Confirm?"
	cellGap       = "  "
	cursorMark    = "▶ "
	noCursor      = "  "
)

// renderTable renders the patient table, newest row first. Only rows that
// fit the terminal height are drawn, keeping the selection in view.
func renderTable(app *App, v dashboard.View) string {
	widths := columnWidths(v)

	var hdr []string
	for i, c := range v.Columns {
		hdr = append(hdr, pad(truncate(sanitize(c), widths[i]), widths[i]))
	}
	hdr = append(hdr, confirmHeader)
	lines := []string{noCursor + StyleTableHeader.Render(strings.Join(hdr, cellGap))}

	if len(v.Rows) == 0 {
		lines = append(lines, StyleDim.Render("  all records cleared from the display"))
		return strings.Join(lines, "\n")
	}

	start, end := visibleRange(app, v)
	for _, r := range v.Rows[start:end] {
		lines = append(lines, renderRow(app, v, r, widths))
	}
	if end < len(v.Rows) {
		lines = append(lines, StyleDim.Render("  ... "+pluralRows(len(v.Rows)-end)+" below"))
	}
	return strings.Join(lines, "\n")
}

func renderRow(app *App, v dashboard.View, r dashboard.Row, widths []int) string {
	rowStyle := StyleRowPending
	if r.State == dashboard.StateConfirmed {
		rowStyle = StyleRowConfirmed
	}

	cells := make([]string, 0, len(r.Cells)+1)
	for i, text := range r.Cells {
		if i == v.TriageColumn {
			cells = append(cells, renderTriage(r, widths[i]))
			continue
		}
		cells = append(cells, rowStyle.Render(pad(truncate(sanitize(text), widths[i]), widths[i])))
	}
	cells = append(cells, renderAction(r, v.Busy))

	line := strings.Join(cells, cellGap)
	if r.Index == app.selected {
		return StyleRowSelected.Render(cursorMark + line)
	}
	return noCursor + line
}

// renderTriage renders the selector: arrows while editable, plain when locked.
func renderTriage(r dashboard.Row, width int) string {
	if r.Editable() {
		return StyleTriage.Render(pad("‹"+r.Triage+"›", width))
	}
	return StyleTriageLocked.Render(pad(" "+r.Triage, width))
}

// renderAction renders the confirm button cell.
func renderAction(r dashboard.Row, busy bool) string {
	if r.State == dashboard.StateConfirmed {
		return StyleDone.Render("done")
	}
	if busy {
		return StyleDim.Render("✅")
	}
	return "✅"
}

func columnWidths(v dashboard.View) []int {
	widths := make([]int, len(v.Columns))
	for i, c := range v.Columns {
		widths[i] = lipgloss.Width(sanitize(c))
		if i == v.TriageColumn {
			widths[i] = max(widths[i], 3)
		}
	}
	for _, r := range v.Rows {
		for i, text := range r.Cells {
			widths[i] = max(widths[i], lipgloss.Width(sanitize(text)))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxCellWidth)
	}
	return widths
}

// visibleRange returns the slice of rows that fits below the header,
// scrolled so the selected row stays visible.
func visibleRange(app *App, v dashboard.View) (int, int) {
	n := len(v.Rows)
	if app.height <= 0 {
		return 0, n
	}
	// title bar, table header, status line, footer, overflow marker
	avail := app.height - 5
	if avail < 1 {
		avail = 1
	}
	if n <= avail {
		return 0, n
	}
	pos := max(rowPosition(v.Rows, app.selected), 0)
	start := 0
	if pos >= avail {
		start = pos - avail + 1
	}
	return start, start + avail
}

// truncate shortens s to at most width display cells, marking the cut with "…".
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > width-1 {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String() + "…"
}

// pad right-pads s with spaces to width display cells.
func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func pluralRows(n int) string {
	if n == 1 {
		return "1 row"
	}
	return strconv.Itoa(n) + " rows"
}
