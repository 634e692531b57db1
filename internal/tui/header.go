package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/linnemanlabs/triageboard/internal/dashboard"
)

const title = "🚑 Nurse Interface"

// renderHeader renders the top bar.
//
// Layout:
//
//	left:   title
//	center: server URL, or "● DISCONNECTED  <error>" after a failed poll
//	right:  "Clear Confirmed (n)" when rows are confirmed, then last poll time
func renderHeader(app *App, v dashboard.View) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	left := title
	var center string
	if app.lastError != nil {
		errMsg := truncate(sanitize(app.lastError.Error()), 40)
		center = StyleError.Render("● DISCONNECTED  " + errMsg)
	} else if app.serverURL != "" {
		center = StyleDim.Render(sanitize(app.serverURL))
	}

	lastStr := "waiting..."
	if !app.lastUpdated.IsZero() {
		lastStr = app.lastUpdated.Format("15:04:05")
	}
	right := StyleDim.Render(fmt.Sprintf("Last: %s  Poll: %s", lastStr, formatDuration(app.pollInterval)))
	if v.ConfirmedCount > 0 {
		right = StyleClearButton.Render(fmt.Sprintf("Clear Confirmed (%d)", v.ConfirmedCount)) + " " + right
	}

	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	spacing := innerWidth - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if spacing < 0 && center != "" {
		// narrow terminal: the center column goes first
		spacing += lipgloss.Width(center)
		center = ""
	}
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	return StyleHeader.Width(width).Render(row)
}

// renderFooter renders the key binding help footer at full terminal width.
func renderFooter(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}
	text := "? for help"
	if app.showHelp {
		text = helpText
	}
	return StyleDim.Width(width).Render(text)
}

// formatDuration formats a poll interval as a compact string, e.g. "2s" or "1m".
func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < time.Second {
		return d.String()
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

// sanitize strips terminal escape sequences and control characters from
// text that originates outside the program.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == 0x1b {
			i = skipEscape(rs, i)
			continue
		}
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// skipEscape returns the index of the last rune of the escape sequence
// starting at rs[i].
func skipEscape(rs []rune, i int) int {
	if i+1 >= len(rs) {
		return i
	}
	switch rs[i+1] {
	case '[': // CSI: parameters then a final byte in 0x40-0x7e
		for j := i + 2; j < len(rs); j++ {
			if rs[j] >= 0x40 && rs[j] <= 0x7e {
				return j
			}
		}
		return len(rs) - 1
	case ']': // OSC: terminated by BEL or ESC \
		for j := i + 2; j < len(rs); j++ {
			if rs[j] == 0x07 {
				return j
			}
			if rs[j] == 0x1b && j+1 < len(rs) && rs[j+1] == '\\' {
				return j + 1
			}
		}
		return len(rs) - 1
	default:
		return i + 1
	}
}
