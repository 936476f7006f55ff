package tui

import (
	"errors"
	"strings"

	"envault-cli/internal/api"
	"envault-cli/internal/vault"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		(&m).resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case probeDoneMsg:
		m.gate.FinishProbe(msg.authenticated, msg.err)
		if m.gate.Authenticated() {
			return m, (&m).enterHome()
		}
		m.view = viewLogin
		m.passwordInput.Focus()
		return m, nil

	case loginDoneMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.loginErr = msg.err.Error()
			return m, nil
		}
		// Optimistic: the cookie is set, no re-probe.
		m.gate.SetAuthenticated(true)
		m.loginErr = ""
		m.passwordInput.Reset()
		return m, (&m).enterHome()

	case logoutDoneMsg:
		m.loggingOut = false
		if msg.err != nil {
			// State unchanged on logout failure.
			m.log.Warn("logout failed", "error", msg.err)
			return m, (&m).showNotice("Logout failed: "+msg.err.Error(), true)
		}
		m.gate.SetAuthenticated(false)
		m.view = viewLogin
		m.passwordInput.Reset()
		m.passwordInput.Focus()
		return m, nil

	case projectsLoadedMsg:
		m.loadingProjects = false
		if msg.err != nil {
			if api.IsAuth(msg.err) {
				return m, (&m).sessionLost()
			}
			// Error logged, empty list shown.
			m.log.Warn("project list failed", "error", msg.err)
			m.cache.Set(nil)
			m.projectsList.SetItems(nil)
			return m, (&m).showNotice("Could not load projects: "+msg.err.Error(), true)
		}
		m.cache.Set(msg.projects)
		m.projectsList.SetItems(projectListItems(m.cache.Items()))
		return m, nil

	case actionDoneMsg:
		m.actionBusy = false
		m.modal = modalNone
		m.pendingHint = ""
		if msg.err != nil {
			if api.IsAuth(msg.err) {
				return m, (&m).sessionLost()
			}
			return m, (&m).showNotice(actionFailureText(msg.out, msg.err), true)
		}
		out := msg.out
		switch {
		case out.Data != nil:
			return m, writeDownloadCmd(out.Filename, out.Data)
		case out.HandedOff:
			return m, (&m).enterEditor()
		case out.Action.Kind == vault.ActionDelete:
			m.projectsList.SetItems(projectListItems(m.cache.Items()))
			return m, (&m).showNotice("Deleted "+out.Action.Project, false)
		}
		return m, nil

	case downloadWrittenMsg:
		if msg.err != nil {
			return m, (&m).showNotice(msg.err.Error(), true)
		}
		return m, (&m).showNotice("Saved "+msg.filename, false)

	case saveDoneMsg:
		if msg.err != nil {
			if errors.Is(msg.err, vault.ErrSaveInFlight) {
				return m, nil
			}
			if api.IsAuth(msg.err) {
				return m, (&m).sessionLost()
			}
			// Draft stays intact for retry.
			m.editorErr = msg.err.Error()
			return m, nil
		}
		m.view = viewHome
		m.editor.Reset()
		m.editorErr = ""
		if msg.res.NoChange {
			return m, (&m).showNotice("No changes to save", false)
		}
		return m, (&m).showNotice("Project saved", false)

	case createDoneMsg:
		m.npBusy = false
		if msg.err != nil {
			if api.IsAuth(msg.err) {
				return m, (&m).sessionLost()
			}
			// Inline in the form, other form state untouched.
			m.npErr = msg.err.Error()
			return m, nil
		}
		m.modal = modalNone
		(&m).resetNewProjectForm()
		if msg.res.OpenEditor {
			return m, (&m).enterEditor()
		}
		m.loadingProjects = true
		return m, tea.Batch(loadProjectsCmd(m.backend), (&m).showNotice("Project created", false))

	case passExistsMsg:
		m.checkingPass = false
		if msg.err != nil && api.IsAuth(msg.err) {
			return m, (&m).sessionLost()
		}
		// Failure reads as "no passphrase yet".
		m.passphraseExists = msg.err == nil && msg.exists
		if m.view == viewHome {
			// Result of the pre-create check.
			if !m.passphraseExists {
				return m, (&m).showNotice("Please create a passphrase first in Settings.", true)
			}
			(&m).openNewProjectModal()
		}
		return m, nil

	case passphraseSavedMsg:
		m.settingsBusy = false
		if msg.err != nil {
			if api.IsAuth(msg.err) {
				return m, (&m).sessionLost()
			}
			m.settingsErr = msg.err.Error()
			return m, nil
		}
		m.settingsErr = ""
		(&m).resetSettingsForm()
		if msg.created {
			m.passphraseExists = true
			return m, (&m).showNotice("Passphrase created successfully", false)
		}
		return m, (&m).showNotice("Passphrase changed successfully", false)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.modal {
	case modalPassphrase:
		return m.updatePassphraseModal(msg)
	case modalNewProject:
		return m.updateNewProjectModal(msg)
	case modalHelp:
		switch msg.String() {
		case "esc", "q", "?", "enter":
			m.modal = modalNone
		}
		return m, nil
	}

	switch m.view {
	case viewLogin:
		return m.updateLogin(msg)
	case viewHome:
		return m.updateHome(msg)
	case viewEditor:
		return m.updateEditor(msg)
	case viewSettings:
		return m.updateSettings(msg)
	}
	return m, nil
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		if m.loggingIn || m.gate.Loading() {
			return m, nil
		}
		password := m.passwordInput.Value()
		if strings.TrimSpace(password) == "" {
			m.loginErr = "Password cannot be empty."
			return m, nil
		}
		m.loggingIn = true
		m.loginErr = ""
		return m, loginCmd(m.backend, password)
	}
	var cmd tea.Cmd
	m.passwordInput, cmd = m.passwordInput.Update(msg)
	return m, cmd
}

func (m appModel) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.gate.ShouldRedirect() {
		m.view = viewLogin
		m.passwordInput.Focus()
		return m, nil
	}

	// While the list filter prompt is open, every key belongs to the list.
	if m.projectsList.SettingFilter() {
		var cmd tea.Cmd
		m.projectsList, cmd = m.projectsList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "r":
		if m.loadingProjects {
			return m, nil
		}
		m.loadingProjects = true
		return m, loadProjectsCmd(m.backend)

	case "n":
		if m.checkingPass || (&m).busyAnywhere() {
			return m, nil
		}
		m.checkingPass = true
		return m, passExistsCmd(m.backend)

	case "s":
		m.view = viewSettings
		(&m).resetSettingsForm()
		m.checkingPass = true
		return m, passExistsCmd(m.backend)

	case "l":
		if m.loggingOut {
			return m, nil
		}
		m.loggingOut = true
		return m, logoutCmd(m.backend)

	case "?":
		m.modal = modalHelp
		return m, nil

	case "d":
		return m, (&m).requestAction(vault.ActionDownload)

	case "e", "enter":
		return m, (&m).requestAction(vault.ActionEdit)

	case "x":
		return m, (&m).requestAction(vault.ActionDelete)
	}

	var cmd tea.Cmd
	m.projectsList, cmd = m.projectsList.Update(msg)
	return m, cmd
}

func (m appModel) updatePassphraseModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.actionBusy {
			return m, nil
		}
		m.med.CancelRequest()
		m.modal = modalNone
		m.passInput.Reset()
		m.passErr = ""
		m.pendingHint = ""
		return m, nil

	case "enter":
		if m.actionBusy {
			return m, nil
		}
		passphrase := m.passInput.Value()
		if strings.TrimSpace(passphrase) == "" {
			m.passErr = "Passphrase cannot be empty."
			return m, nil
		}
		m.actionBusy = true
		m.passErr = ""
		// Cleared before dispatch: the passphrase lives only inside the
		// submit call, and a failed attempt is always re-typed.
		m.passInput.Reset()
		return m, submitActionCmd(m.med, passphrase)
	}

	var cmd tea.Cmd
	m.passInput, cmd = m.passInput.Update(msg)
	return m, cmd
}

func (m appModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		if m.draft.Saving() {
			return m, nil
		}
		m.editorErr = ""
		m.draft.SetContent(m.editor.Value())
		return m, saveDraftCmd(m.draft)

	case "esc":
		err := m.draft.Cancel()
		if errors.Is(err, vault.ErrSaveInFlight) {
			return m, nil
		}
		m.view = viewHome
		m.editor.Reset()
		m.editorErr = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.draft.SetContent(m.editor.Value())
	return m, cmd
}

func (m appModel) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.settingsBusy {
			return m, nil
		}
		m.view = viewHome
		return m, nil

	case "tab", "down":
		(&m).cycleSettingsFocus(1)
		return m, nil

	case "shift+tab", "up":
		(&m).cycleSettingsFocus(-1)
		return m, nil

	case "enter":
		return m, (&m).submitSettings()
	}

	var cmd tea.Cmd
	switch m.setFocus {
	case setFocusOld:
		m.setOld, cmd = m.setOld.Update(msg)
	case setFocusNew:
		m.setNew, cmd = m.setNew.Update(msg)
	default:
		m.setConfirm, cmd = m.setConfirm.Update(msg)
	}
	return m, cmd
}

func (m appModel) updateNewProjectModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.npBusy {
			return m, nil
		}
		m.modal = modalNone
		(&m).resetNewProjectForm()
		return m, nil

	case "tab", "down":
		(&m).cycleNewProjectFocus(1)
		return m, nil

	case "shift+tab", "up":
		(&m).cycleNewProjectFocus(-1)
		return m, nil

	case "left", "right", " ":
		if m.npFocus == npFocusMode {
			if m.npMode == vault.ModeGenerate {
				m.npMode = vault.ModeUpload
			} else {
				m.npMode = vault.ModeGenerate
			}
			return m, nil
		}

	case "enter":
		if m.npBusy {
			return m, nil
		}
		m.npBusy = true
		m.npErr = ""
		return m, createProjectCmd(m.prov,
			strings.TrimSpace(m.npName.Value()),
			m.npPass.Value(),
			m.npMode,
			strings.TrimSpace(m.npFile.Value()))
	}

	var cmd tea.Cmd
	switch m.npFocus {
	case npFocusName:
		m.npName, cmd = m.npName.Update(msg)
	case npFocusPassphrase:
		m.npPass, cmd = m.npPass.Update(msg)
	case npFocusFile:
		m.npFile, cmd = m.npFile.Update(msg)
	}
	return m, cmd
}

// requestAction moves the mediator into the awaiting-passphrase state for
// the selected project and opens the prompt. A previous pending action is
// replaced: last request wins.
func (m *appModel) requestAction(kind vault.ActionKind) tea.Cmd {
	it, ok := m.projectsList.SelectedItem().(projectItem)
	if !ok {
		return nil
	}
	if m.med.InFlight() {
		return nil
	}
	m.med.Request(it.project.Name, kind)
	m.pendingHint = kind.String() + " \"" + it.project.Name + "\""
	m.passInput.Reset()
	m.passInput.Focus()
	m.passErr = ""
	m.modal = modalPassphrase
	return nil
}

func (m *appModel) enterHome() tea.Cmd {
	m.view = viewHome
	m.loadingProjects = true
	m.resize()
	return loadProjectsCmd(m.backend)
}

// enterEditor consumes the one-shot handoff. Entering without a fresh
// payload (back-navigation, replay) redirects home instead of reusing
// stale content.
func (m *appModel) enterEditor() tea.Cmd {
	h, ok := m.handoff.Take()
	if !ok {
		m.view = viewHome
		return m.showNotice("Editing session is no longer valid.", true)
	}
	m.draft.Begin(h)
	m.editor.SetValue(h.Content)
	m.editor.Focus()
	m.editorErr = ""
	m.view = viewEditor
	m.resize()
	return nil
}

func (m *appModel) openNewProjectModal() {
	m.resetNewProjectForm()
	m.npName.Focus()
	m.modal = modalNewProject
}

func (m *appModel) resetNewProjectForm() {
	m.npName.Reset()
	m.npPass.Reset()
	m.npFile.Reset()
	m.npMode = vault.ModeGenerate
	m.npFocus = npFocusName
	m.npErr = ""
	m.npName.Blur()
	m.npPass.Blur()
	m.npFile.Blur()
}

func (m *appModel) resetSettingsForm() {
	m.setOld.Reset()
	m.setNew.Reset()
	m.setConfirm.Reset()
	m.setFocus = setFocusOld
	m.settingsErr = ""
	m.setOld.Focus()
	m.setNew.Blur()
	m.setConfirm.Blur()
}

func (m *appModel) cycleSettingsFocus(dir int) {
	fields := []settingsFocus{setFocusOld, setFocusNew, setFocusConfirm}
	if !m.passphraseExists {
		fields = fields[1:]
	}
	idx := 0
	for i, f := range fields {
		if f == m.setFocus {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(fields)) % len(fields)
	m.setFocus = fields[idx]

	m.setOld.Blur()
	m.setNew.Blur()
	m.setConfirm.Blur()
	switch m.setFocus {
	case setFocusOld:
		m.setOld.Focus()
	case setFocusNew:
		m.setNew.Focus()
	default:
		m.setConfirm.Focus()
	}
}

func (m *appModel) cycleNewProjectFocus(dir int) {
	fields := []newProjectFocus{npFocusName, npFocusPassphrase, npFocusMode}
	if m.npMode == vault.ModeUpload {
		fields = append(fields, npFocusFile)
	}
	idx := 0
	for i, f := range fields {
		if f == m.npFocus {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(fields)) % len(fields)
	m.npFocus = fields[idx]

	m.npName.Blur()
	m.npPass.Blur()
	m.npFile.Blur()
	switch m.npFocus {
	case npFocusName:
		m.npName.Focus()
	case npFocusPassphrase:
		m.npPass.Focus()
	case npFocusFile:
		m.npFile.Focus()
	}
}

func (m *appModel) submitSettings() tea.Cmd {
	if m.settingsBusy || m.checkingPass {
		return nil
	}
	newPass := m.setNew.Value()
	if strings.TrimSpace(newPass) == "" {
		m.settingsErr = "New passphrase cannot be empty."
		return nil
	}
	if newPass != m.setConfirm.Value() {
		m.settingsErr = "Passphrases do not match."
		return nil
	}
	if m.passphraseExists {
		if strings.TrimSpace(m.setOld.Value()) == "" {
			m.settingsErr = "Old passphrase cannot be empty."
			return nil
		}
		m.settingsBusy = true
		m.settingsErr = ""
		return changePassphraseCmd(m.backend, m.setOld.Value(), newPass)
	}
	m.settingsBusy = true
	m.settingsErr = ""
	return createPassphraseCmd(m.backend, newPass)
}

func (m *appModel) resize() {
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.projectsList.SetSize(w, h)
	m.editor.SetWidth(w - 2)
	m.editor.SetHeight(h - 2)
}

func actionFailureText(out vault.Outcome, err error) string {
	kind := out.Action.Kind
	switch api.KindOf(err) {
	case api.KindVerification, api.KindValidation:
		return err.Error()
	default:
		switch kind {
		case vault.ActionEdit:
			return "Edit failed: " + err.Error()
		case vault.ActionDelete:
			return "Delete failed: " + err.Error()
		default:
			return "Download failed: " + err.Error()
		}
	}
}
