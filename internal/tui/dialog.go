package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/linnemanlabs/triageboard/internal/dashboard"
)

// renderClearConfirm renders the clear-confirmed approval dialog in place
// of the table.
func renderClearConfirm(app *App, v dashboard.View) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	titleText := fmt.Sprintf("Clear Confirmed (%d)", v.ConfirmedCount)
	hintText := StyleDim.Render("[y: confirm  n/esc: cancel]")
	innerWidth := width - 2
	gap := innerWidth - lipgloss.Width(titleText) - lipgloss.Width(hintText)
	if gap < 1 {
		gap = 1
	}
	titleBar := StyleHeader.Width(width).MaxWidth(width).Render(titleText + strings.Repeat(" ", gap) + hintText)

	body := StyleDialog.Render(strings.Join([]string{
		clearPromptText,
		"",
		StyleDim.Render("Records stay on the server; only this display is affected."),
	}, "\n"))
	return titleBar + "\n\n" + body
}

// renderAlert renders a blocking message that any key dismisses.
func renderAlert(app *App) string {
	body := StyleAlert.Render(sanitize(app.alert) + "\n\n" + StyleDim.Render("press any key to continue"))
	return "\n" + body
}
