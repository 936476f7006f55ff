package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"envault-cli/internal/api"

	"golang.org/x/term"
)

// promptSecret reads a secret without echo when stdin is a terminal, and
// falls back to a plain line read for piped input.
func promptSecret(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ensureLogin authenticates the in-process session. The cookie lives in
// the client's jar for the remainder of this invocation only.
func ensureLogin(ctx context.Context, client *api.Client) error {
	if ok, err := client.Probe(ctx); err == nil && ok {
		return nil
	}
	password := os.Getenv("ENVAULT_PASSWORD")
	if password == "" {
		var err error
		password, err = promptSecret("Password")
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(password) == "" {
		return api.Validation("password cannot be empty")
	}
	return client.Login(ctx, password)
}

// passphraseArg resolves the vault passphrase from the flag, env or a
// prompt, in that order.
func passphraseArg(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv("ENVAULT_PASSPHRASE"); v != "" {
		return v, nil
	}
	p, err := promptSecret("Passphrase")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(p) == "" {
		return "", api.Validation("passphrase cannot be empty")
	}
	return p, nil
}
