package tui

import (
	"strings"

	"envault-cli/internal/api"

	"github.com/charmbracelet/bubbles/list"
)

type projectItem struct {
	project api.Project
}

func (i projectItem) FilterValue() string { return i.project.Name }
func (i projectItem) Title() string       { return i.project.Name }

func (i projectItem) Description() string {
	var parts []string
	if d := strings.TrimSpace(i.project.Description); d != "" {
		parts = append(parts, d)
	}
	if lm := strings.TrimSpace(i.project.LastModified); lm != "" {
		parts = append(parts, lm)
	}
	if len(parts) == 0 {
		return "no description"
	}
	return strings.Join(parts, "  ·  ")
}

func newProjectsList() list.Model {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(colorSelectedFg).BorderForeground(colorAccent)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(colorMuted).BorderForeground(colorAccent)

	l := list.New([]list.Item{}, d, 0, 0)
	l.Title = "Projects"
	l.SetShowHelp(false)
	l.SetStatusBarItemName("project", "projects")
	l.FilterInput.Prompt = "Search projects: "
	return l
}

func projectListItems(projects []api.Project) []list.Item {
	items := make([]list.Item, 0, len(projects))
	for _, p := range projects {
		items = append(items, projectItem{project: p})
	}
	return items
}
