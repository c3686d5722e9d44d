package catalog

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

// ErrEmpty is returned when a catalog has no entries.
var ErrEmpty = errors.New("catalog has no operating systems")

// Catalog is an immutable, ordered set of OS options.
type Catalog struct {
	options []types.OSOption
	index   map[string]int
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New([]types.OSOption{
		{
			ID:         "windows10",
			Name:       "Windows 10",
			Version:    "Pro 22H2",
			Icon:       "🪟",
			Color:      "bg-blue-600",
			DefaultURL: "https://www.google.com",
		},
		{
			ID:         "windows11",
			Name:       "Windows 11",
			Version:    "Pro 23H2",
			Icon:       "💻",
			Color:      "bg-purple-600",
			DefaultURL: "https://www.google.com",
		},
		{
			ID:         "android",
			Name:       "Android",
			Version:    "15.0",
			Icon:       "📱",
			Color:      "bg-green-600",
			DefaultURL: "https://m.google.com",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// New validates options and builds a catalog preserving their order.
func New(options []types.OSOption) (*Catalog, error) {
	if len(options) == 0 {
		return nil, ErrEmpty
	}

	c := &Catalog{
		options: make([]types.OSOption, len(options)),
		index:   make(map[string]int, len(options)),
	}
	for i, os := range options {
		if err := validate(os); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if _, dup := c.index[os.ID]; dup {
			return nil, fmt.Errorf("entry %d: duplicate id %q", i, os.ID)
		}
		c.options[i] = os
		c.index[os.ID] = i
	}
	return c, nil
}

func validate(os types.OSOption) error {
	if os.ID == "" {
		return errors.New("id is required")
	}
	if os.Name == "" {
		return fmt.Errorf("%s: name is required", os.ID)
	}
	u, err := url.Parse(os.DefaultURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s: default_url must be an absolute http(s) URL", os.ID)
	}
	return nil
}

// Lookup returns the option with the given id.
func (c *Catalog) Lookup(id string) (types.OSOption, bool) {
	i, ok := c.index[id]
	if !ok {
		return types.OSOption{}, false
	}
	return c.options[i], true
}

// Contains reports whether id is in the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// List returns a copy of all options in catalog order.
func (c *Catalog) List() []types.OSOption {
	out := make([]types.OSOption, len(c.options))
	copy(out, c.options)
	return out
}

// IDs returns the option ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.options))
	for i, os := range c.options {
		ids[i] = os.ID
	}
	return ids
}

// First returns the first option.
func (c *Catalog) First() types.OSOption {
	return c.options[0]
}

// Len returns the number of options.
func (c *Catalog) Len() int {
	return len(c.options)
}
