package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"envault-cli/internal/api"
	"envault-cli/internal/vault"

	tea "github.com/charmbracelet/bubbletea"
)

// Network work runs in command goroutines; results come back as messages.
// Operations are not cancellable mid-flight (the server offers no way to
// abort), so commands use a background context and rely on the client's
// request timeout.

func probeCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ok, err := b.Probe(context.Background())
		return probeDoneMsg{authenticated: ok, err: err}
	}
}

func loginCmd(b Backend, password string) tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{err: b.Login(context.Background(), password)}
	}
}

func logoutCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: b.Logout(context.Background())}
	}
}

func loadProjectsCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		projects, err := b.Projects(context.Background())
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func submitActionCmd(med *vault.Mediator, passphrase string) tea.Cmd {
	return func() tea.Msg {
		out, err := med.Submit(context.Background(), passphrase)
		return actionDoneMsg{out: out, err: err}
	}
}

// writeDownloadCmd lands a downloaded blob as <name>.env in the working
// directory, the terminal counterpart of the browser's file save.
func writeDownloadCmd(filename string, data []byte) tea.Cmd {
	return func() tea.Msg {
		if err := os.WriteFile(filename, data, 0o600); err != nil {
			return downloadWrittenMsg{filename: filename, err: fmt.Errorf("write %s: %w", filename, err)}
		}
		return downloadWrittenMsg{filename: filename}
	}
}

func saveDraftCmd(d *vault.Draft) tea.Cmd {
	return func() tea.Msg {
		res, err := d.Save(context.Background())
		return saveDoneMsg{res: res, err: err}
	}
}

// createProjectCmd resolves the upload file (if any) and runs the
// provisioning flow. Path problems surface as validation failures before
// any upload request is attempted.
func createProjectCmd(p *vault.Provisioner, name, passphrase string, mode vault.Mode, filePath string) tea.Cmd {
	return func() tea.Msg {
		req := vault.CreateRequest{Name: name, Passphrase: passphrase, Mode: mode}
		if mode == vault.ModeUpload && filePath != "" {
			st, err := os.Stat(filePath)
			if err != nil {
				return createDoneMsg{err: api.Validation("cannot read file: " + err.Error())}
			}
			f, err := os.Open(filePath)
			if err != nil {
				return createDoneMsg{err: api.Validation("cannot open file: " + err.Error())}
			}
			defer f.Close()
			req.FileName = st.Name()
			req.FileSize = st.Size()
			req.File = f
		}
		res, err := p.Create(context.Background(), req)
		return createDoneMsg{res: res, err: err}
	}
}

func passExistsCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		exists, err := b.PassphraseExists(context.Background())
		return passExistsMsg{exists: exists, err: err}
	}
}

func createPassphraseCmd(b Backend, passphrase string) tea.Cmd {
	return func() tea.Msg {
		return passphraseSavedMsg{created: true, err: b.CreatePassphrase(context.Background(), passphrase)}
	}
}

func changePassphraseCmd(b Backend, oldPass, newPass string) tea.Cmd {
	return func() tea.Msg {
		return passphraseSavedMsg{err: b.ChangePassphrase(context.Background(), oldPass, newPass)}
	}
}

func noticeTimeoutCmd(seq int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
