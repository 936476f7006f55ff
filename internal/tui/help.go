package tui

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# EnVault

Projects are passphrase-protected blobs of environment variables stored
server-side. Every project action asks for the vault passphrase; the
passphrase is used for that single action and never stored.

## Home

| Key | Action |
|-----|--------|
| enter / e | Edit the selected project |
| d | Download as ` + "`<name>.env`" + ` |
| x | Delete (the passphrase is the confirmation) |
| n | Create a new project |
| / | Search projects |
| r | Reload the project list |
| s | Settings (create/change the vault passphrase) |
| l | Log out |

## Editor

Saving with unchanged content exits without contacting the server.
` + "`ctrl+s`" + ` saves, ` + "`esc`" + ` discards the draft.
`

var (
	helpOnce     sync.Once
	helpRendered string
)

// renderHelpModal renders the help text once per process. A fixed glamour
// style avoids the terminal background queries auto-style can block on.
func renderHelpModal(width int) string {
	helpOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(glamourStyle()),
			glamour.WithWordWrap(modalBodyWidth(width)-2),
		)
		if err != nil {
			helpRendered = helpMarkdown
			return
		}
		out, err := r.Render(helpMarkdown)
		if err != nil {
			helpRendered = helpMarkdown
			return
		}
		helpRendered = out
	})
	return renderModalBox(width, "Help", helpRendered+"\nesc: close")
}

func glamourStyle() string {
	if hasDark() {
		return "dark"
	}
	return "light"
}
