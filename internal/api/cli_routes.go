package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// The server exposes two script-friendly routes that authorize with the
// vault passphrase alone, no session cookie. The scriptable CLI uses these
// for one-shot transfers.

// CLIDownload fetches the decrypted env file via the sessionless route.
func (c *Client) CLIDownload(ctx context.Context, name, passphrase string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"project_name": name,
		"passphrase":   passphrase,
	})
	if err != nil {
		return nil, transportErr(err)
	}
	resp, err := c.post(ctx, "/cli-download", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return nil, c.failure(resp, KindVerification, "download failed")
	}
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

// CLIUpload creates a project from a file via the sessionless route.
func (c *Client) CLIUpload(ctx context.Context, name, passphrase, filename string, content io.Reader) error {
	body, ct, err := multipartForm(map[string]string{
		"project_name": name,
		"passphrase":   passphrase,
	}, "file", filename, content)
	if err != nil {
		return transportErr(err)
	}
	resp, err := c.post(ctx, "/cli-upload", ct, body)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return c.failure(resp, KindVerification, "failed to upload file")
	}
	return nil
}
