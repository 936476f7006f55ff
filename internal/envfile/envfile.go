// Package envfile inspects dotenv-style content so the UI can show what a
// draft or an upload actually contains before it is encrypted server-side.
package envfile

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// Summary describes a parsed env payload.
type Summary struct {
	// Vars is the number of distinct keys godotenv could read.
	Vars int
	// Keys holds the parsed variable names, unordered.
	Keys []string
	// ParseErr is non-nil when the content is not valid dotenv syntax.
	ParseErr error
}

// Inspect parses content with godotenv. Parse failures are reported, not
// fatal: the vault stores whatever the user wrote.
func Inspect(content string) Summary {
	vars, err := godotenv.Unmarshal(content)
	if err != nil {
		return Summary{ParseErr: err}
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		// godotenv swallows some malformed lines instead of erroring: a bare
		// line yields the empty key, a split before whitespace yields a key
		// with spaces in it. Neither is a usable variable name.
		if k == "" || strings.ContainsAny(k, " \t") {
			return Summary{ParseErr: fmt.Errorf("invalid variable name %q", k)}
		}
		keys = append(keys, k)
	}
	return Summary{Vars: len(vars), Keys: keys}
}

// Describe renders a one-line status for the editor footer.
func Describe(content string) string {
	if strings.TrimSpace(content) == "" {
		return "empty"
	}
	s := Inspect(content)
	if s.ParseErr != nil {
		return "not valid dotenv syntax"
	}
	if s.Vars == 1 {
		return "1 variable"
	}
	return fmt.Sprintf("%d variables", s.Vars)
}
