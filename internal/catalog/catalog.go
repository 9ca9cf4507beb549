// Package catalog loads template descriptors from layered search paths
// and selects the best match for given criteria.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/talonforge/talon/internal/logging"
)

// Catalog holds the merged view over an ordered list of search paths.
// Earlier paths win: later paths only fill gaps, so a user template
// directory placed first shadows the built-in set by name.
type Catalog struct {
	templates map[string]*Descriptor
	warnings  []string
	logger    logging.Logger
}

// Load merges template descriptors across search paths in order. A
// malformed descriptor is skipped with a warning; it never aborts the
// load. Missing search paths are skipped silently so optional user
// directories cost nothing.
func Load(searchPaths []string) (*Catalog, error) {
	return LoadWithLogger(searchPaths, logging.Default())
}

// LoadWithLogger is Load with an explicit logger
func LoadWithLogger(searchPaths []string, log logging.Logger) (*Catalog, error) {
	c := &Catalog{
		templates: make(map[string]*Descriptor),
		logger:    log,
	}

	for _, searchPath := range searchPaths {
		entries, err := os.ReadDir(searchPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read template directory %s: %w", searchPath, err)
		}

		// Deterministic order within one layer
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			templateDir := filepath.Join(searchPath, entry.Name())
			manifestPath := filepath.Join(templateDir, ManifestName)
			if _, err := os.Stat(manifestPath); err != nil {
				continue // not a template directory
			}

			desc, err := ParseDescriptor(manifestPath)
			if err != nil {
				warning := fmt.Sprintf("skipping template at %s: %v", templateDir, err)
				c.warnings = append(c.warnings, warning)
				log.Warn("Skipping malformed template",
					logging.F("path", templateDir),
					logging.F("error", err))
				continue
			}

			if _, exists := c.templates[desc.Name]; exists {
				log.Debug("Template already provided by an earlier search path",
					logging.F("name", desc.Name),
					logging.F("path", templateDir))
				continue
			}

			desc.Path = templateDir
			c.templates[desc.Name] = desc
			log.Debug("Loaded template",
				logging.F("name", desc.Name),
				logging.F("version", desc.Version))
		}
	}

	return c, nil
}

// Get returns the descriptor for a template name
func (c *Catalog) Get(name string) (*Descriptor, bool) {
	d, ok := c.templates[name]
	return d, ok
}

// All returns every descriptor sorted by name
func (c *Catalog) All() []*Descriptor {
	all := make([]*Descriptor, 0, len(c.templates))
	for _, d := range c.templates {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Len returns the number of loaded templates
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Warnings returns one entry per descriptor skipped during load
func (c *Catalog) Warnings() []string {
	return c.warnings
}
