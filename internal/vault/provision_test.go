package vault

import (
	"context"
	"errors"
	"strings"
	"testing"

	"envault-cli/internal/api"
)

func TestProvisionerValidationShortCircuits(t *testing.T) {
	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"empty name", CreateRequest{Passphrase: "pw", Mode: ModeGenerate}},
		{"empty passphrase", CreateRequest{Name: "infra", Mode: ModeGenerate}},
		{"missing mode", CreateRequest{Name: "infra", Passphrase: "pw"}},
		{"bogus mode", CreateRequest{Name: "infra", Passphrase: "pw", Mode: Mode("zip")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &fakeGateway{}
			p := NewProvisioner(gw, NewHandoffSlot(), nil)

			_, err := p.Create(context.Background(), tc.req)
			if api.KindOf(err) != api.KindValidation {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if gw.totalCalls() != 0 {
				t.Fatalf("local validation must run before any network call; got %d calls", gw.totalCalls())
			}
		})
	}
}

func TestProvisionerVerificationFailureStopsEarly(t *testing.T) {
	gw := &fakeGateway{}
	gw.err = errTestVerification()
	handoff := NewHandoffSlot()
	p := NewProvisioner(gw, handoff, nil)

	_, err := p.Create(context.Background(), CreateRequest{
		Name: "infra", Passphrase: "pw", Mode: ModeGenerate,
	})
	if !api.IsVerification(err) {
		t.Fatalf("expected the server verification error, got %v", err)
	}
	if gw.callCount("upload") != 0 {
		t.Fatalf("upload must not run when verification fails")
	}
	if _, ok := handoff.Take(); ok {
		t.Fatalf("no handoff should be placed on verification failure")
	}
}

func TestProvisionerGenerateHandsOffPlaceholder(t *testing.T) {
	gw := &fakeGateway{}
	handoff := NewHandoffSlot()
	p := NewProvisioner(gw, handoff, nil)

	res, err := p.Create(context.Background(), CreateRequest{
		Name: "infra", Passphrase: "pw", Mode: ModeGenerate,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !res.OpenEditor || res.Uploaded {
		t.Fatalf("expected the editor branch, got %+v", res)
	}
	if gw.callCount("verify") != 1 || gw.callCount("upload") != 0 {
		t.Fatalf("generate mode must verify but never upload; calls=%v", gw.calls)
	}

	h, ok := handoff.Take()
	if !ok {
		t.Fatalf("expected a handoff payload for the editor")
	}
	if h.Project != "infra" || h.Passphrase != "pw" || h.Content != PlaceholderContent {
		t.Fatalf("unexpected handoff %+v", h)
	}
}

func TestProvisionerUploadFileChecks(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		gw := &fakeGateway{}
		p := NewProvisioner(gw, NewHandoffSlot(), nil)

		_, err := p.Create(context.Background(), CreateRequest{
			Name: "infra", Passphrase: "pw", Mode: ModeUpload,
		})
		if !errors.Is(err, ErrFileMissing) {
			t.Fatalf("expected ErrFileMissing, got %v", err)
		}
		if gw.callCount("upload") != 0 {
			t.Fatalf("upload must not run without a file")
		}
	})

	t.Run("oversized file", func(t *testing.T) {
		gw := &fakeGateway{}
		p := NewProvisioner(gw, NewHandoffSlot(), nil)

		_, err := p.Create(context.Background(), CreateRequest{
			Name:       "infra",
			Passphrase: "pw",
			Mode:       ModeUpload,
			FileName:   "big.env",
			FileSize:   15 << 20,
			File:       strings.NewReader("A=1"),
		})
		if !errors.Is(err, ErrFileTooLarge) {
			t.Fatalf("expected ErrFileTooLarge, got %v", err)
		}
		// The size is checked from metadata, never by reading 15 MB.
		if gw.callCount("upload") != 0 {
			t.Fatalf("oversized file must be rejected before the network")
		}
	})
}

func TestProvisionerUploadSuccess(t *testing.T) {
	gw := &fakeGateway{}
	p := NewProvisioner(gw, NewHandoffSlot(), nil)

	res, err := p.Create(context.Background(), CreateRequest{
		Name:       "infra",
		Passphrase: "pw",
		Mode:       ModeUpload,
		FileName:   ".env",
		FileSize:   4,
		File:       strings.NewReader("A=1\n"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !res.Uploaded || res.OpenEditor {
		t.Fatalf("expected the upload branch, got %+v", res)
	}
	if gw.callCount("verify") != 1 || gw.callCount("upload") != 1 {
		t.Fatalf("expected verify then upload; calls=%v", gw.calls)
	}
}

func TestProvisionerSingleFlight(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{}), started: make(chan struct{})}
	p := NewProvisioner(gw, NewHandoffSlot(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.Create(context.Background(), CreateRequest{
			Name: "infra", Passphrase: "pw", Mode: ModeGenerate,
		})
		done <- err
	}()
	<-gw.started

	if !p.Busy() {
		t.Fatalf("expected an in-flight creation")
	}
	if _, err := p.Create(context.Background(), CreateRequest{
		Name: "other", Passphrase: "pw", Mode: ModeGenerate,
	}); !errors.Is(err, ErrCreateBusy) {
		t.Fatalf("expected ErrCreateBusy, got %v", err)
	}

	close(gw.block)
	if err := <-done; err != nil {
		t.Fatalf("creation failed: %v", err)
	}
	if gw.callCount("verify") != 1 {
		t.Fatalf("expected exactly one verification, got %d", gw.callCount("verify"))
	}
}
