package tui

import (
	"fmt"
	"strings"

	"envault-cli/internal/envfile"
	"envault-cli/internal/vault"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.gate.Loading() {
		return placeCentered(m.width, m.height,
			m.spin.View()+" Checking session...")
	}

	var body string
	switch m.view {
	case viewLogin:
		body = m.viewLogin()
	case viewHome:
		body = m.viewHome()
	case viewEditor:
		body = m.viewEditor()
	case viewSettings:
		body = m.viewSettings()
	}

	switch m.modal {
	case modalPassphrase:
		return placeCentered(m.width, m.height, m.renderPassphraseModal())
	case modalNewProject:
		return placeCentered(m.width, m.height, m.renderNewProjectModal())
	case modalHelp:
		return placeCentered(m.width, m.height, renderHelpModal(m.width))
	}

	return body
}

func (m appModel) viewLogin() string {
	title := styleTitle().Render("Login to EnVault")
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(m.passwordInput.View())
	b.WriteString("\n\n")
	if m.loggingIn {
		b.WriteString(m.spin.View() + " Logging in...")
	} else if m.loginErr != "" {
		b.WriteString(styleError().Render(m.loginErr))
	} else {
		b.WriteString(styleMuted().Render("Please enter the password to access the application."))
	}
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render("enter: log in   ctrl+c: quit"))
	return placeCentered(m.width, m.height, b.String())
}

func (m appModel) viewHome() string {
	header := styleHeader().Render("EnVault") +
		"  " + styleMuted().Render("Manage your environment variables")

	var body string
	if m.loadingProjects {
		body = m.spin.View() + " Loading projects..."
	} else {
		body = m.projectsList.View()
	}

	footer := styleMuted().Render(
		"enter/e: edit   d: download   x: delete   n: new   /: search   r: reload   s: settings   l: logout   ?: help   q: quit")

	return strings.Join([]string{header, body, m.statusLine(), footer}, "\n")
}

func (m appModel) viewEditor() string {
	dirty := ""
	if m.draft.Dirty() {
		dirty = " " + styleNotice().Render("(modified)")
	}
	header := styleHeader().Render("Editing Project: "+m.draft.Project()) + dirty

	var status string
	switch {
	case m.draft.Saving():
		status = m.spin.View() + " Saving..."
	case m.editorErr != "":
		status = styleError().Render(m.editorErr)
	default:
		status = styleMuted().Render(envfile.Describe(m.editor.Value()))
	}

	footer := styleMuted().Render("ctrl+s: save   esc: cancel")
	return strings.Join([]string{header, m.editor.View(), status, footer}, "\n")
}

func (m appModel) viewSettings() string {
	header := styleHeader().Render("Settings")

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.checkingPass {
		b.WriteString(m.spin.View() + " Checking vault status...")
		return b.String()
	}

	if m.passphraseExists {
		b.WriteString(styleTitle().Render("Change Vault Passphrase"))
		b.WriteString("\n\n")
		b.WriteString(m.setOld.View())
		b.WriteString("\n")
	} else {
		b.WriteString(styleTitle().Render("Create Vault Passphrase"))
		b.WriteString("\n\n")
	}
	b.WriteString(m.setNew.View())
	b.WriteString("\n")
	b.WriteString(m.setConfirm.View())
	b.WriteString("\n\n")

	switch {
	case m.settingsBusy:
		b.WriteString(m.spin.View() + " Working...")
	case m.settingsErr != "":
		b.WriteString(styleError().Render(m.settingsErr))
	default:
		b.WriteString(m.statusLine())
	}
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render("tab: next field   enter: submit   esc: back"))
	return b.String()
}

func (m appModel) renderPassphraseModal() string {
	title := "Enter passphrase to " + m.pendingHint

	var status string
	switch {
	case m.actionBusy:
		status = m.spin.View() + " Working..."
	case m.passErr != "":
		status = styleError().Render(m.passErr)
	default:
		status = styleMuted().Render("The passphrase authorizes this single action.")
	}

	content := strings.Join([]string{
		m.passInput.View(),
		"",
		status,
		"",
		styleMuted().Render("enter: submit   esc: cancel"),
	}, "\n")
	return renderModalBox(m.width, title, content)
}

func (m appModel) renderNewProjectModal() string {
	mode := "Generate in editor"
	if m.npMode == vault.ModeUpload {
		mode = "Upload a file"
	}
	modeLine := "Mode: " + mode
	if m.npFocus == npFocusMode {
		modeLine = lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Render(modeLine + "  (←/→ to change)")
	}

	lines := []string{
		m.npName.View(),
		m.npPass.View(),
		modeLine,
	}
	if m.npMode == vault.ModeUpload {
		lines = append(lines, m.npFile.View())
	}
	lines = append(lines, "")

	switch {
	case m.npBusy:
		lines = append(lines, m.spin.View()+" Creating...")
	case m.npErr != "":
		lines = append(lines, styleError().Render(m.npErr))
	default:
		lines = append(lines, styleMuted().Render(fmt.Sprintf("Uploads are limited to %d MB.", vault.MaxUploadBytes>>20)))
	}
	lines = append(lines, "", styleMuted().Render("tab: next field   enter: create   esc: cancel"))

	return renderModalBox(m.width, "New Project", strings.Join(lines, "\n"))
}

// statusLine renders the transient notice, truncated to the window width.
func (m appModel) statusLine() string {
	if m.notice == "" {
		return ""
	}
	st := styleNotice()
	if m.noticeErr {
		st = styleError()
	}
	w := m.width
	if w <= 0 {
		w = 80
	}
	return xansi.Truncate(st.Render(m.notice), w, "…")
}
