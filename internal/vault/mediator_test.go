package vault

import (
	"context"
	"errors"
	"testing"
)

func newTestMediator(gw *fakeGateway) (*Mediator, *ProjectCache, *HandoffSlot) {
	cache := NewProjectCache()
	cache.Set(someProjects())
	handoff := NewHandoffSlot()
	return NewMediator(gw, cache, handoff, nil), cache, handoff
}

func TestMediatorSingleSlotLastWins(t *testing.T) {
	med, _, _ := newTestMediator(&fakeGateway{})

	if _, ok := med.Pending(); ok {
		t.Fatalf("expected no pending action initially")
	}

	med.Request("infra", ActionDownload)
	med.Request("api", ActionDelete)
	med.Request("infra", ActionEdit)

	p, ok := med.Pending()
	if !ok {
		t.Fatalf("expected a pending action")
	}
	if p.Project != "infra" || p.Kind != ActionEdit {
		t.Fatalf("expected the most recent request to win; got %+v", p)
	}
}

func TestMediatorSubmitValidation(t *testing.T) {
	gw := &fakeGateway{}
	med, _, _ := newTestMediator(gw)

	t.Run("no pending action", func(t *testing.T) {
		if _, err := med.Submit(context.Background(), "pw"); !errors.Is(err, ErrNoPendingAction) {
			t.Fatalf("expected ErrNoPendingAction, got %v", err)
		}
	})

	t.Run("empty passphrase", func(t *testing.T) {
		med.Request("infra", ActionDownload)
		if _, err := med.Submit(context.Background(), ""); !errors.Is(err, ErrEmptyPassphrase) {
			t.Fatalf("expected ErrEmptyPassphrase, got %v", err)
		}
		// The rejection must not consume the pending action.
		if _, ok := med.Pending(); !ok {
			t.Fatalf("pending action should survive an empty-passphrase rejection")
		}
	})

	if gw.totalCalls() != 0 {
		t.Fatalf("validation failures must not reach the gateway; got %d calls", gw.totalCalls())
	}
}

func TestMediatorDownload(t *testing.T) {
	gw := &fakeGateway{downloadData: []byte("A=1\n")}
	med, cache, _ := newTestMediator(gw)

	med.Request("infra", ActionDownload)
	out, err := med.Submit(context.Background(), "pw")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if string(out.Data) != "A=1\n" {
		t.Fatalf("unexpected download data %q", out.Data)
	}
	if out.Filename != "infra.env" {
		t.Fatalf("expected filename infra.env, got %q", out.Filename)
	}
	if cache.Len() != 3 {
		t.Fatalf("download must not mutate the project list")
	}
	if _, ok := med.Pending(); ok {
		t.Fatalf("pending action should be cleared after completion")
	}
}

func TestMediatorEditHandsOff(t *testing.T) {
	gw := &fakeGateway{content: "A=1\nB=2\n"}
	med, _, handoff := newTestMediator(gw)

	med.Request("api", ActionEdit)
	out, err := med.Submit(context.Background(), "secret")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !out.HandedOff {
		t.Fatalf("expected edit outcome to be handed off")
	}

	h, ok := handoff.Take()
	if !ok {
		t.Fatalf("expected a handoff payload")
	}
	if h.Project != "api" || h.Passphrase != "secret" || h.Content != "A=1\nB=2\n" {
		t.Fatalf("unexpected handoff %+v", h)
	}
}

func TestMediatorDeleteRemovesExactlyOne(t *testing.T) {
	gw := &fakeGateway{}
	med, cache, _ := newTestMediator(gw)

	med.Request("infra", ActionDelete)
	out, err := med.Submit(context.Background(), "pw")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !out.Removed {
		t.Fatalf("expected the cache entry to be removed")
	}
	if cache.Len() != 2 {
		t.Fatalf("expected exactly one entry removed, len=%d", cache.Len())
	}
	// Case-sensitive exact match: "Infra" stays.
	for _, p := range cache.Items() {
		if p.Name == "infra" {
			t.Fatalf("deleted project still present")
		}
	}
	found := false
	for _, p := range cache.Items() {
		if p.Name == "Infra" {
			found = true
		}
	}
	if !found {
		t.Fatalf("delete must match names case-sensitively")
	}
}

func TestMediatorFailureClearsSlotAndLeavesListAlone(t *testing.T) {
	wrong := &fakeGateway{}
	wrong.err = errTestVerification()
	med, cache, _ := newTestMediator(wrong)

	med.Request("infra", ActionDownload)
	out, err := med.Submit(context.Background(), "wrong-pass")
	if err == nil {
		t.Fatalf("expected failure")
	}
	if out.Action.Project != "infra" || out.Action.Kind != ActionDownload {
		t.Fatalf("failure outcome should still identify the action; got %+v", out.Action)
	}
	if cache.Len() != 3 {
		t.Fatalf("failed action must leave the project list unchanged")
	}
	if _, ok := med.Pending(); ok {
		t.Fatalf("pending action must be cleared even on failure")
	}
	// A fresh submit without a new request is rejected: the passphrase is
	// never silently resubmitted.
	if _, err := med.Submit(context.Background(), "wrong-pass"); !errors.Is(err, ErrNoPendingAction) {
		t.Fatalf("expected ErrNoPendingAction after failure, got %v", err)
	}
}

func TestMediatorSingleFlight(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{}), started: make(chan struct{})}
	med, _, _ := newTestMediator(gw)

	med.Request("infra", ActionDownload)

	done := make(chan error, 1)
	go func() {
		_, err := med.Submit(context.Background(), "pw")
		done <- err
	}()

	// Wait for the first submit to reach the gateway.
	<-gw.started

	if !med.InFlight() {
		t.Fatalf("expected mediator to report in-flight")
	}
	if _, err := med.Submit(context.Background(), "pw"); !errors.Is(err, ErrActionInFlight) {
		t.Fatalf("expected ErrActionInFlight, got %v", err)
	}
	// Requests during flight are ignored, not queued.
	med.Request("api", ActionDelete)
	if _, ok := med.Pending(); ok {
		t.Fatalf("request during flight must be ignored")
	}

	close(gw.block)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if gw.callCount("download") != 1 {
		t.Fatalf("expected exactly one gateway call, got %d", gw.callCount("download"))
	}
}
