// Package api is the HTTP gateway to an EnVault server.
//
// Authentication is cookie-based: a successful login sets an HttpOnly session
// cookie which the client's jar replays on every later call. The upstream
// web client also attached a bearer token on a handful of endpoints; this
// client deliberately uses cookies everywhere (see DESIGN.md for the
// compatibility note).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every request; the server offers no cancellation
// mid-operation, so a hung call fails here instead of blocking forever.
const DefaultTimeout = 30 * time.Second

// Project is one vault entry as listed by the server. Name is the unique
// display key; everything else is optional metadata.
type Project struct {
	Name         string `json:"name"`
	URL          string `json:"url,omitempty"`
	Description  string `json:"description,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
}

// Client talks to one EnVault server. It is safe for sequential use from a
// single goroutine; the TUI and CLI both funnel calls through one instance.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *slog.Logger
}

type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpc.Timeout = d
		}
	}
}

// WithLogger attaches a structured logger for request/failure logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a Client for the server at baseURL (e.g. "http://localhost:8000").
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api: server URL is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("api: invalid server URL %q: %w", baseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("api: cookie jar: %w", err)
	}
	c := &Client{
		baseURL: baseURL,
		httpc: &http.Client{
			Jar:     jar,
			Timeout: DefaultTimeout,
		},
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Probe asks the server whether the current session cookie is valid.
// A transport failure or any non-2xx answer reads as "not authenticated"
// at the call site; the error is still returned for logging.
func (c *Client) Probe(ctx context.Context) (bool, error) {
	resp, err := c.get(ctx, "/me")
	if err != nil {
		return false, err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return false, c.failure(resp, KindAuth, "not authenticated")
	}
	var body struct {
		IsAuthenticated bool `json:"isAuthenticated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, transportErr(fmt.Errorf("decode /me response: %w", err))
	}
	return body.IsAuthenticated, nil
}

// Login authenticates with the shared vault password. The server answers a
// bad password with 200 + {"error": ...}, so the body is checked either way.
func (c *Client) Login(ctx context.Context, password string) error {
	form := url.Values{}
	form.Set("password", password)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return transportErr(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return c.failure(resp, KindAuth, "login failed")
	}
	if msg := errorField(resp.Body); msg != "" {
		return newError(KindAuth, resp.StatusCode, msg)
	}
	return nil
}

// Logout clears the session cookie server-side.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.post(ctx, "/logout", "", nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return c.failure(resp, KindAuth, "logout failed")
	}
	return nil
}

// Projects lists every project in the vault, in server order.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	resp, err := c.get(ctx, "/projects")
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return nil, c.failure(resp, KindOperation, "failed to list projects")
	}
	var projects []Project
	if err := json.NewDecoder(resp.Body).Decode(&projects); err != nil {
		return nil, transportErr(fmt.Errorf("decode project list: %w", err))
	}
	return projects, nil
}

// VerifyProject checks that the vault passphrase is correct and the project
// name is free. The server reports a taken name as an error as well; both
// reject the create flow.
func (c *Client) VerifyProject(ctx context.Context, name, passphrase string) error {
	body, ct, err := multipartForm(map[string]string{
		"project_name": name,
		"passphrase":   passphrase,
	}, "", "", nil)
	if err != nil {
		return transportErr(err)
	}
	resp, err := c.post(ctx, "/verify-project", ct, body)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return c.failure(resp, KindVerification, "failed to verify passphrase")
	}
	return nil
}

// Upload creates a new project from a raw env file.
func (c *Client) Upload(ctx context.Context, name, passphrase, filename string, content io.Reader) error {
	body, ct, err := multipartForm(map[string]string{
		"project_name": name,
		"passphrase":   passphrase,
	}, "file", filename, content)
	if err != nil {
		return transportErr(err)
	}
	resp, err := c.post(ctx, "/upload", ct, body)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return c.failure(resp, KindVerification, "failed to upload file")
	}
	return nil
}

// Download fetches the decrypted env file for a project. The caller decides
// where the bytes land (the TUI writes <name>.env next to the process).
func (c *Client) Download(ctx context.Context, name, passphrase string) ([]byte, error) {
	body, ct, err := multipartForm(map[string]string{
		"project_name": name,
		"passphrase":   passphrase,
	}, "", "", nil)
	if err != nil {
		return nil, transportErr(err)
	}
	resp, err := c.post(ctx, "/download", ct, body)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return nil, c.failure(resp, KindVerification, "download failed")
	}
	// The server answers "file not found" with 200 + a JSON error body.
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, transportErr(err)
		}
		if msg := errorField(bytes.NewReader(raw)); msg != "" {
			return nil, newError(KindOperation, resp.StatusCode, msg)
		}
		return raw, nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(err)
	}
	return data, nil
}

// FetchContent fetches the decrypted project content as a string, for editing.
func (c *Client) FetchContent(ctx context.Context, name, passphrase string) (string, error) {
	body, ct, err := multipartForm(map[string]string{
		"project_name": name,
		"passphrase":   passphrase,
	}, "", "", nil)
	if err != nil {
		return "", transportErr(err)
	}
	resp, err := c.post(ctx, "/download-data", ct, body)
	if err != nil {
		return "", err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return "", c.failure(resp, KindVerification, "failed to fetch project content")
	}
	var payload struct {
		Data string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", transportErr(fmt.Errorf("decode project content: %w", err))
	}
	return payload.Data, nil
}

// SaveContent writes project content. update=false creates, update=true
// overwrites an existing project.
func (c *Client) SaveContent(ctx context.Context, name, passphrase, data string, update bool) error {
	payload, err := json.Marshal(map[string]any{
		"project_name": name,
		"passphrase":   passphrase,
		"data":         data,
		"update":       update,
	})
	if err != nil {
		return transportErr(err)
	}
	resp, err := c.post(ctx, "/upload-data", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return c.failure(resp, KindVerification, "failed to save changes")
	}
	return nil
}

// Delete removes a project from the vault.
func (c *Client) Delete(ctx context.Context, name, passphrase string) error {
	body, ct, err := multipartForm(map[string]string{
		"project_name": name,
		"passphrase":   passphrase,
	}, "", "", nil)
	if err != nil {
		return transportErr(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/delete", body)
	if err != nil {
		return transportErr(err)
	}
	req.Header.Set("Content-Type", ct)
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return c.failure(resp, KindVerification, "delete failed")
	}
	return nil
}

// PassphraseExists reports whether the vault passphrase has been created yet.
func (c *Client) PassphraseExists(ctx context.Context) (bool, error) {
	resp, err := c.get(ctx, "/passphrase-exists")
	if err != nil {
		return false, err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return false, c.failure(resp, KindOperation, "failed to check passphrase")
	}
	var body struct {
		Exists bool `json:"exists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, transportErr(fmt.Errorf("decode passphrase-exists response: %w", err))
	}
	return body.Exists, nil
}

// CreatePassphrase sets the vault passphrase for the first time.
func (c *Client) CreatePassphrase(ctx context.Context, passphrase string) error {
	body, ct, err := multipartForm(map[string]string{"passphrase": passphrase}, "", "", nil)
	if err != nil {
		return transportErr(err)
	}
	resp, err := c.post(ctx, "/create-passphrase", ct, body)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return c.failure(resp, KindOperation, "failed to create passphrase")
	}
	return nil
}

// ChangePassphrase re-encrypts the vault under a new passphrase.
func (c *Client) ChangePassphrase(ctx context.Context, oldPassphrase, newPassphrase string) error {
	body, ct, err := multipartForm(map[string]string{
		"old_passphrase": oldPassphrase,
		"new_passphrase": newPassphrase,
	}, "", "", nil)
	if err != nil {
		return transportErr(err)
	}
	resp, err := c.post(ctx, "/update-passphrase", ct, body)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return c.failure(resp, KindVerification, "failed to change passphrase")
	}
	return nil
}

// Health pings the server without authentication.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/health")
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return c.failure(resp, KindOperation, "server unhealthy")
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, transportErr(err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, transportErr(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()))
		return nil, transportErr(err)
	}
	c.log.Debug("request",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)))
	return resp, nil
}

// failure turns a non-2xx response into a typed error. The server uses two
// body shapes: {"error": ...} for application failures and {"detail": ...}
// for rejected sessions, so a 401 with "detail" means the cookie is bad
// rather than the passphrase.
func (c *Client) failure(resp *http.Response, fallback Kind, fallbackMsg string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(raw, &body)

	kind := fallback
	msg := body.Error
	if resp.StatusCode == http.StatusUnauthorized && body.Detail != "" && body.Error == "" {
		kind = KindAuth
		msg = body.Detail
	}
	if msg == "" {
		msg = fallbackMsg
	}
	return newError(kind, resp.StatusCode, msg)
}

// errorField extracts {"error": ...} from a 2xx body, for endpoints that
// report failures without a failure status.
func errorField(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	return body.Error
}

func multipartForm(fields map[string]string, fileField, filename string, file io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if fileField != "" && file != nil {
		part, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
