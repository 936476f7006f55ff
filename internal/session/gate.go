// Package session holds the client's authentication state.
//
// One Gate exists per process. It is created at startup, fed by exactly one
// probe against the server, and afterwards mutated only by login/logout.
// There is no automatic re-probe: a session that expires server-side is only
// discovered when a gated call fails with an auth error, at which point the
// caller drops back to the login view.
package session

import "log/slog"

// Status is the settled authentication state.
type Status int

const (
	// StatusUnknown means the startup probe has not answered yet. It must
	// not be read as "logged out": views wait for Loading() to clear before
	// redirecting.
	StatusUnknown Status = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Gate is the authentication gate every protected view consults. It is a
// plain state holder; all network work happens at the call sites, which
// report results back in. Not safe for concurrent use — the TUI mutates it
// only from its update loop, the CLI sequentially.
type Gate struct {
	status  Status
	probing bool
	log     *slog.Logger
}

// NewGate returns a Gate in the pre-probe state.
func NewGate(log *slog.Logger) *Gate {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Gate{status: StatusUnknown, log: log}
}

// BeginProbe marks the one startup probe as outstanding.
func (g *Gate) BeginProbe() {
	g.probing = true
}

// FinishProbe records the probe result. Any probe error fails closed: the
// gate settles on anonymous so protected views redirect to login.
func (g *Gate) FinishProbe(authenticated bool, err error) {
	g.probing = false
	if err != nil {
		g.status = StatusAnonymous
		g.log.Warn("session probe failed, treating as logged out", slog.String("error", err.Error()))
		return
	}
	if authenticated {
		g.status = StatusAuthenticated
	} else {
		g.status = StatusAnonymous
	}
	g.log.Debug("session probe settled", slog.String("status", g.status.String()))
}

// SetAuthenticated is called by the login flow on success (optimistically,
// without a re-probe) and by logout.
func (g *Gate) SetAuthenticated(ok bool) {
	g.probing = false
	if ok {
		g.status = StatusAuthenticated
	} else {
		g.status = StatusAnonymous
	}
}

// Loading reports whether the startup probe is still outstanding.
func (g *Gate) Loading() bool { return g.probing }

// Status returns the settled state, StatusUnknown while loading.
func (g *Gate) Status() Status { return g.status }

// Authenticated is true only once the gate has settled on a valid session.
func (g *Gate) Authenticated() bool { return g.status == StatusAuthenticated }

// ShouldRedirect reports whether a protected view must bounce to login:
// only after the probe settled, and only when the answer was "no session".
func (g *Gate) ShouldRedirect() bool {
	return !g.probing && g.status == StatusAnonymous
}
