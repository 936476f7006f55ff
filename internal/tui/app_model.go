package tui

import (
	"log/slog"

	"envault-cli/internal/session"
	"envault-cli/internal/vault"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type appModel struct {
	backend Backend
	gate    *session.Gate
	cache   *vault.ProjectCache
	handoff *vault.HandoffSlot
	med     *vault.Mediator
	draft   *vault.Draft
	prov    *vault.Provisioner
	log     *slog.Logger

	width  int
	height int

	view  view
	modal modalKind

	spin spinner.Model

	// Login view.
	passwordInput textinput.Model
	loggingIn     bool
	loginErr      string

	// Home view.
	projectsList    list.Model
	loadingProjects bool
	loggingOut      bool

	// Passphrase modal. The input is cleared after every submit, success or
	// failure, so a wrong passphrase is always re-typed.
	passInput   textinput.Model
	actionBusy  bool
	passErr     string
	pendingHint string

	// Editor view.
	editor    textarea.Model
	editorErr string

	// New-project modal.
	npName    textinput.Model
	npPass    textinput.Model
	npFile    textinput.Model
	npMode    vault.Mode
	npFocus   newProjectFocus
	npErr     string
	npBusy    bool

	// Settings view.
	setOld           textinput.Model
	setNew           textinput.Model
	setConfirm       textinput.Model
	setFocus         settingsFocus
	passphraseExists bool
	checkingPass     bool
	settingsBusy     bool
	settingsErr      string

	// Transient status line ("minibuffer").
	notice    string
	noticeErr bool
	noticeSeq int
}

func newAppModel(backend Backend, log *slog.Logger) appModel {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	cache := vault.NewProjectCache()
	handoff := vault.NewHandoffSlot()

	m := appModel{
		backend: backend,
		gate:    session.NewGate(log),
		cache:   cache,
		handoff: handoff,
		med:     vault.NewMediator(backend, cache, handoff, log),
		draft:   vault.NewDraft(backend, log),
		prov:    vault.NewProvisioner(backend, handoff, log),
		log:     log,
		view:    viewLogin,
		npMode:  vault.ModeGenerate,
	}

	m.spin = spinner.New(spinner.WithSpinner(spinner.Dot))

	m.passwordInput = textinput.New()
	m.passwordInput.Placeholder = "Enter password"
	m.passwordInput.EchoMode = textinput.EchoPassword
	m.passwordInput.Focus()

	m.projectsList = newProjectsList()

	m.passInput = textinput.New()
	m.passInput.Placeholder = "Passphrase"
	m.passInput.EchoMode = textinput.EchoPassword

	m.editor = textarea.New()
	m.editor.Placeholder = "KEY=value"

	m.npName = textinput.New()
	m.npName.Placeholder = "Project name"
	m.npPass = textinput.New()
	m.npPass.Placeholder = "Passphrase"
	m.npPass.EchoMode = textinput.EchoPassword
	m.npFile = textinput.New()
	m.npFile.Placeholder = "Path to .env file"

	m.setOld = textinput.New()
	m.setOld.Placeholder = "Old passphrase"
	m.setOld.EchoMode = textinput.EchoPassword
	m.setNew = textinput.New()
	m.setNew.Placeholder = "New passphrase"
	m.setNew.EchoMode = textinput.EchoPassword
	m.setConfirm = textinput.New()
	m.setConfirm.Placeholder = "Confirm new passphrase"
	m.setConfirm.EchoMode = textinput.EchoPassword

	return m
}

func (m appModel) Init() tea.Cmd {
	m.gate.BeginProbe()
	return tea.Batch(probeCmd(m.backend), m.spin.Tick)
}

// busyAnywhere reports whether any network command is outstanding. Used to
// suppress double-dispatch from rapid repeated keypresses; the mediator,
// draft and provisioner each enforce their own single-flight guard as well.
func (m *appModel) busyAnywhere() bool {
	return m.loggingIn || m.loadingProjects || m.actionBusy || m.npBusy ||
		m.settingsBusy || m.loggingOut || m.draft.Saving()
}

func (m *appModel) showNotice(s string, isErr bool) tea.Cmd {
	m.notice = s
	m.noticeErr = isErr
	m.noticeSeq++
	return noticeTimeoutCmd(m.noticeSeq)
}

// sessionLost drops the user back to the login view after an auth failure
// on any gated call. The draft and pending action do not survive.
func (m *appModel) sessionLost() tea.Cmd {
	m.gate.SetAuthenticated(false)
	m.med.CancelRequest()
	_ = m.draft.Cancel()
	m.modal = modalNone
	m.view = viewLogin
	m.passwordInput.Reset()
	m.passwordInput.Focus()
	return m.showNotice("Session expired. Please log in again.", true)
}
