package vault

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"envault-cli/internal/api"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Mode selects how a new project gets its initial content.
type Mode string

const (
	// ModeGenerate opens an empty editor; the project only materializes
	// server-side on the first save.
	ModeGenerate Mode = "generate"
	// ModeUpload sends an existing env file.
	ModeUpload Mode = "upload"
)

// MaxUploadBytes is the client-side bound on uploaded files. Oversized
// files are a validation failure, not a network one.
const MaxUploadBytes = 10 << 20

// PlaceholderContent seeds the editor for generated projects.
const PlaceholderContent = "Type env variables here..."

var (
	ErrFileMissing  = api.Validation("please select a file to upload")
	ErrFileTooLarge = api.Validation("file size exceeds the 10 MB limit")
	ErrCreateBusy   = api.Validation("project creation already in progress")
)

// CreateRequest describes a proposed project.
type CreateRequest struct {
	Name       string
	Passphrase string
	Mode       Mode

	// Upload mode only.
	FileName string
	FileSize int64
	File     io.Reader
}

// Validate checks presence and shape. File checks happen later, after the
// server has verified name and passphrase, matching the stage order of the
// creation flow.
func (r CreateRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("project name cannot be empty")),
		validation.Field(&r.Passphrase, validation.Required.Error("passphrase cannot be empty")),
		validation.Field(&r.Mode, validation.Required, validation.In(ModeGenerate, ModeUpload)),
	)
	if err != nil {
		return api.Validation(err.Error())
	}
	return nil
}

// CreateResult says which branch completed.
type CreateResult struct {
	// OpenEditor: generate mode placed placeholder content in the handoff
	// slot; the caller navigates to the editor.
	OpenEditor bool
	// Uploaded: upload mode finished; the caller closes the creation flow.
	Uploaded bool
}

// Provisioner runs the new-project flow: local validation, then server
// verification, then (upload mode) file checks and the upload call. Each
// stage short-circuits.
type Provisioner struct {
	mu      sync.Mutex
	gw      Gateway
	handoff *HandoffSlot
	busy    bool
	log     *slog.Logger
}

func NewProvisioner(gw Gateway, handoff *HandoffSlot, log *slog.Logger) *Provisioner {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Provisioner{gw: gw, handoff: handoff, log: log}
}

// Busy reports whether a creation call is outstanding.
func (p *Provisioner) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Create validates and executes req. Single-flight: a second call while one
// is running is rejected.
func (p *Provisioner) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return CreateResult{}, ErrCreateBusy
	}
	p.busy = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.busy = false
		p.mu.Unlock()
	}()

	if err := req.Validate(); err != nil {
		return CreateResult{}, err
	}

	if err := p.gw.VerifyProject(ctx, req.Name, req.Passphrase); err != nil {
		return CreateResult{}, err
	}

	if req.Mode == ModeGenerate {
		p.handoff.Put(EditHandoff{
			Project:    req.Name,
			Passphrase: req.Passphrase,
			Content:    PlaceholderContent,
		})
		return CreateResult{OpenEditor: true}, nil
	}

	if req.File == nil {
		return CreateResult{}, ErrFileMissing
	}
	if req.FileSize > MaxUploadBytes {
		return CreateResult{}, ErrFileTooLarge
	}

	if err := p.gw.Upload(ctx, req.Name, req.Passphrase, req.FileName, req.File); err != nil {
		return CreateResult{}, err
	}
	p.log.Debug("project uploaded", slog.String("project", req.Name))
	return CreateResult{Uploaded: true}, nil
}
