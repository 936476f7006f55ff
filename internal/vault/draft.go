package vault

import (
	"context"
	"log/slog"
	"sync"

	"envault-cli/internal/api"
)

// Draft-level rejections.
var (
	ErrNoDraft      = api.Validation("no draft in progress")
	ErrSaveInFlight = api.Validation("a save is already running")
)

// SaveResult distinguishes the two successful exits of Save.
type SaveResult struct {
	// Saved means one write call reached the server.
	Saved bool
	// NoChange means the content matched the baseline byte-for-byte and no
	// network call was made.
	NoChange bool
}

// Draft owns the in-progress edit buffer for one project. The baseline is
// the content as loaded; Save compares against it with exact string
// equality — trailing whitespace differences count as changes.
type Draft struct {
	mu         sync.Mutex
	gw         Gateway
	log        *slog.Logger
	project    string
	passphrase string
	baseline   string
	current    string
	active     bool
	saving     bool
}

func NewDraft(gw Gateway, log *slog.Logger) *Draft {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Draft{gw: gw, log: log}
}

// Begin starts an editing session from a handoff payload.
func (d *Draft) Begin(h EditHandoff) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.project = h.Project
	d.passphrase = h.Passphrase
	d.baseline = h.Content
	d.current = h.Content
	d.active = true
	d.saving = false
}

// Active reports whether an editing session is open.
func (d *Draft) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Project returns the project being edited.
func (d *Draft) Project() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.project
}

// Content returns the working copy.
func (d *Draft) Content() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// SetContent updates the working copy. No network effect.
func (d *Draft) SetContent(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active {
		return
	}
	d.current = s
}

// Dirty reports whether the working copy differs from the baseline.
func (d *Draft) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active && d.current != d.baseline
}

// Saving reports whether a save call is outstanding.
func (d *Draft) Saving() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saving
}

// Save persists the draft if it changed. Equal content is a successful
// no-op that ends the session without touching the network. At most one
// save runs at a time; re-entrant calls are rejected, not queued.
// On failure the draft stays intact for retry.
func (d *Draft) Save(ctx context.Context) (SaveResult, error) {
	d.mu.Lock()
	switch {
	case !d.active:
		d.mu.Unlock()
		return SaveResult{}, ErrNoDraft
	case d.saving:
		d.mu.Unlock()
		return SaveResult{}, ErrSaveInFlight
	case d.current == d.baseline:
		d.reset()
		d.mu.Unlock()
		return SaveResult{NoChange: true}, nil
	}
	d.saving = true
	project, passphrase, content := d.project, d.passphrase, d.current
	d.mu.Unlock()

	err := d.gw.SaveContent(ctx, project, passphrase, content, true)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.saving = false
	if err != nil {
		d.log.Debug("draft save failed",
			slog.String("project", project), slog.String("error", err.Error()))
		return SaveResult{}, err
	}
	// Trust the server copy from here on.
	d.reset()
	return SaveResult{Saved: true}, nil
}

// Cancel discards the draft and ends the session. Blocked while a save is
// in flight so the user cannot abandon state they believe is persisting.
func (d *Draft) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active {
		return ErrNoDraft
	}
	if d.saving {
		return ErrSaveInFlight
	}
	d.reset()
	return nil
}

// reset clears everything, passphrase included. Callers hold d.mu.
func (d *Draft) reset() {
	d.project = ""
	d.passphrase = ""
	d.baseline = ""
	d.current = ""
	d.active = false
	d.saving = false
}
