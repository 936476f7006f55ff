package tui

import (
	"context"

	"envault-cli/internal/api"
	"envault-cli/internal/vault"
)

// Backend is everything the TUI needs from the API client. *api.Client
// satisfies it; tests drive the model with a fake.
type Backend interface {
	vault.Gateway
	Probe(ctx context.Context) (bool, error)
	Login(ctx context.Context, password string) error
	Logout(ctx context.Context) error
	Projects(ctx context.Context) ([]api.Project, error)
	PassphraseExists(ctx context.Context) (bool, error)
	CreatePassphrase(ctx context.Context, passphrase string) error
	ChangePassphrase(ctx context.Context, oldPassphrase, newPassphrase string) error
}

type view int

const (
	viewLogin view = iota
	viewHome
	viewEditor
	viewSettings
)

func viewToString(v view) string {
	switch v {
	case viewHome:
		return "home"
	case viewEditor:
		return "editor"
	case viewSettings:
		return "settings"
	default:
		return "login"
	}
}

type modalKind int

const (
	modalNone modalKind = iota
	modalPassphrase
	modalNewProject
	modalHelp
)

// newProjectFocus cycles through the creation form fields.
type newProjectFocus int

const (
	npFocusName newProjectFocus = iota
	npFocusPassphrase
	npFocusMode
	npFocusFile
)

// settingsFocus cycles through the passphrase form fields.
type settingsFocus int

const (
	setFocusOld settingsFocus = iota
	setFocusNew
	setFocusConfirm
)

// Messages delivered by command goroutines back into the update loop.

type probeDoneMsg struct {
	authenticated bool
	err           error
}

type loginDoneMsg struct{ err error }

type logoutDoneMsg struct{ err error }

type projectsLoadedMsg struct {
	projects []api.Project
	err      error
}

type actionDoneMsg struct {
	out vault.Outcome
	err error
}

type downloadWrittenMsg struct {
	filename string
	err      error
}

type saveDoneMsg struct {
	res vault.SaveResult
	err error
}

type createDoneMsg struct {
	res vault.CreateResult
	err error
}

type passExistsMsg struct {
	exists bool
	err    error
}

type passphraseSavedMsg struct {
	created bool
	err     error
}

type noticeExpiredMsg struct{ seq int }
