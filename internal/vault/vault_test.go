package vault

import (
	"context"
	"io"
	"sync"

	"envault-cli/internal/api"
)

// fakeGateway records calls and serves canned responses. When block is
// non-nil, every network-shaped call waits on it so tests can hold an
// operation in flight.
type fakeGateway struct {
	mu    sync.Mutex
	calls []string

	downloadData []byte
	content      string
	err          error

	block     chan struct{}
	started   chan struct{}
	startOnce sync.Once
}

func (f *fakeGateway) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeGateway) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeGateway) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGateway) Download(ctx context.Context, name, passphrase string) ([]byte, error) {
	f.record("download")
	if f.err != nil {
		return nil, f.err
	}
	return f.downloadData, nil
}

func (f *fakeGateway) FetchContent(ctx context.Context, name, passphrase string) (string, error) {
	f.record("fetch")
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func (f *fakeGateway) SaveContent(ctx context.Context, name, passphrase, data string, update bool) error {
	f.record("save")
	return f.err
}

func (f *fakeGateway) Delete(ctx context.Context, name, passphrase string) error {
	f.record("delete")
	return f.err
}

func (f *fakeGateway) VerifyProject(ctx context.Context, name, passphrase string) error {
	f.record("verify")
	return f.err
}

func (f *fakeGateway) Upload(ctx context.Context, name, passphrase, filename string, content io.Reader) error {
	f.record("upload")
	return f.err
}

func errTestVerification() error {
	return &api.Error{Kind: api.KindVerification, Status: 401, Message: "Invalid passphrase"}
}

func someProjects() []api.Project {
	return []api.Project{
		{Name: "infra"},
		{Name: "api", Description: "backend service"},
		{Name: "Infra"},
	}
}
