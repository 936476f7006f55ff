// Package vault is the client-side orchestration core: the single-slot
// action mediator, the edit-draft reconciler and the new-project
// provisioner. It owns no rendering and no transport; it turns user intent
// plus a passphrase into at most one gateway call at a time.
package vault

import (
	"context"
	"io"
)

// Gateway is the slice of the API client the orchestration core needs.
// *api.Client satisfies it; tests substitute fakes.
type Gateway interface {
	Download(ctx context.Context, name, passphrase string) ([]byte, error)
	FetchContent(ctx context.Context, name, passphrase string) (string, error)
	SaveContent(ctx context.Context, name, passphrase, data string, update bool) error
	Delete(ctx context.Context, name, passphrase string) error
	VerifyProject(ctx context.Context, name, passphrase string) error
	Upload(ctx context.Context, name, passphrase, filename string, content io.Reader) error
}
