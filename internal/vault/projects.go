package vault

import (
	"strings"

	"envault-cli/internal/api"
)

// ProjectCache is the read-mostly project list fetched once per home-view
// entry. The only local mutation is removal after a successful delete;
// edits and downloads never touch it.
type ProjectCache struct {
	items []api.Project
}

func NewProjectCache() *ProjectCache {
	return &ProjectCache{}
}

// Set replaces the cached sequence with a fresh server listing.
func (c *ProjectCache) Set(items []api.Project) {
	c.items = items
}

// Items returns the cached sequence in server order.
func (c *ProjectCache) Items() []api.Project {
	return c.items
}

func (c *ProjectCache) Len() int { return len(c.items) }

// Remove drops the entry whose name matches exactly (case-sensitive).
// Reports whether an entry was removed.
func (c *ProjectCache) Remove(name string) bool {
	for i, p := range c.items {
		if p.Name == name {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Filter returns entries whose name contains term, case-insensitively.
// An empty term returns the full sequence.
func (c *ProjectCache) Filter(term string) []api.Project {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.items
	}
	var out []api.Project
	for _, p := range c.items {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}
