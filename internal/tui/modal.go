package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Modal rendering shared by the passphrase prompt, the new-project form and
// the help overlay. No borders inside the box: nested bordered components
// on a background color leave artifacts on some terminals.

func modalBodyWidth(width int) int {
	w := width - 14
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	return w
}

func renderModalBox(width int, title string, content string) string {
	bodyW := modalBodyWidth(width)

	header := lipgloss.NewStyle().
		Bold(true).
		Width(bodyW).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Padding(0, 1).
		Render(title)

	body := lipgloss.NewStyle().
		Width(bodyW).
		Foreground(colorSurfaceFg).
		Background(colorSurfaceBg).
		Padding(1, 1).
		Render(content)

	return strings.Join([]string{header, body}, "\n")
}

// placeCentered positions a modal in the middle of the screen.
func placeCentered(width, height int, box string) string {
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
