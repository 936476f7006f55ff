package vault

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"envault-cli/internal/api"
)

// ActionKind is what the user asked to do with a project.
type ActionKind int

const (
	ActionDownload ActionKind = iota
	ActionEdit
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	default:
		return "download"
	}
}

// PendingAction is the single slot between "user picked an action" and
// "user supplied the passphrase". Last request wins; there is no queue.
type PendingAction struct {
	Project string
	Kind    ActionKind
}

type mediatorState int

const (
	mediatorIdle mediatorState = iota
	mediatorAwaitingPassphrase
	mediatorInFlight
)

// Rejections surfaced before any network call.
var (
	ErrNoPendingAction = api.Validation("no action selected")
	ErrEmptyPassphrase = api.Validation("passphrase cannot be empty")
	ErrActionInFlight  = api.Validation("another action is still running")
)

// Outcome is what a completed action produced. Exactly one of the branches
// is populated, matching the action kind.
type Outcome struct {
	Action PendingAction

	// Download: decrypted bytes and the suggested client-side filename.
	Data     []byte
	Filename string

	// Edit: content was placed in the handoff slot for the editor.
	HandedOff bool

	// Delete: the entry was removed from the cached project list.
	Removed bool
}

// Mediator serializes project actions: one pending action at a time, one
// gateway call at a time. The passphrase exists only for the duration of
// Submit; success or failure, the slot is cleared so a wrong passphrase is
// never silently resubmitted.
//
// Submit blocks and is typically run from a tea.Cmd goroutine while the UI
// loop keeps reading state, hence the mutex.
type Mediator struct {
	mu      sync.Mutex
	gw      Gateway
	cache   *ProjectCache
	handoff *HandoffSlot
	state   mediatorState
	pending PendingAction
	log     *slog.Logger
}

func NewMediator(gw Gateway, cache *ProjectCache, handoff *HandoffSlot, log *slog.Logger) *Mediator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Mediator{gw: gw, cache: cache, handoff: handoff, log: log}
}

// Request records the user's intent. A previous pending action is replaced
// without confirmation. Ignored while a submit is in flight.
func (m *Mediator) Request(project string, kind ActionKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == mediatorInFlight {
		m.log.Debug("action request ignored while in flight",
			slog.String("project", project), slog.String("kind", kind.String()))
		return
	}
	m.pending = PendingAction{Project: project, Kind: kind}
	m.state = mediatorAwaitingPassphrase
}

// Pending returns the current slot, if any.
func (m *Mediator) Pending() (PendingAction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending, m.state == mediatorAwaitingPassphrase
}

// InFlight reports whether a submit is currently running.
func (m *Mediator) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == mediatorInFlight
}

// CancelRequest discards the pending action. No-op while in flight.
func (m *Mediator) CancelRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == mediatorAwaitingPassphrase {
		m.pending = PendingAction{}
		m.state = mediatorIdle
	}
}

// Submit authorizes the pending action with the given passphrase and runs
// exactly one gateway call. The slot is cleared afterwards in every case.
func (m *Mediator) Submit(ctx context.Context, passphrase string) (Outcome, error) {
	m.mu.Lock()
	switch {
	case m.state == mediatorInFlight:
		m.mu.Unlock()
		return Outcome{}, ErrActionInFlight
	case m.state != mediatorAwaitingPassphrase:
		m.mu.Unlock()
		return Outcome{}, ErrNoPendingAction
	case passphrase == "":
		m.mu.Unlock()
		return Outcome{}, ErrEmptyPassphrase
	}
	action := m.pending
	m.state = mediatorInFlight
	m.mu.Unlock()

	out, err := m.dispatch(ctx, action, passphrase)

	m.mu.Lock()
	m.pending = PendingAction{}
	m.state = mediatorIdle
	m.mu.Unlock()

	if err != nil {
		m.log.Debug("action failed",
			slog.String("project", action.Project),
			slog.String("kind", action.Kind.String()),
			slog.String("error", err.Error()))
		// The action identity survives for error reporting; nothing else.
		return Outcome{Action: action}, err
	}
	return out, nil
}

func (m *Mediator) dispatch(ctx context.Context, action PendingAction, passphrase string) (Outcome, error) {
	out := Outcome{Action: action}
	switch action.Kind {
	case ActionDownload:
		data, err := m.gw.Download(ctx, action.Project, passphrase)
		if err != nil {
			return Outcome{}, err
		}
		out.Data = data
		out.Filename = action.Project + ".env"

	case ActionEdit:
		content, err := m.gw.FetchContent(ctx, action.Project, passphrase)
		if err != nil {
			return Outcome{}, err
		}
		m.handoff.Put(EditHandoff{
			Project:    action.Project,
			Passphrase: passphrase,
			Content:    content,
		})
		out.HandedOff = true

	case ActionDelete:
		if err := m.gw.Delete(ctx, action.Project, passphrase); err != nil {
			return Outcome{}, err
		}
		out.Removed = m.cache.Remove(action.Project)

	default:
		return Outcome{}, fmt.Errorf("unknown action kind %d", action.Kind)
	}
	return out, nil
}
