// Package filters lists the .cube color lookup tables available to the
// editor and forwards filter and adjustment changes to the backend.
package filters

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/editsurface/pkg/ports"
)

// None is the catalog entry that removes the active filter.
const None = "None"

// Filter is one selectable LUT.
type Filter struct {
	Name string
	Path string
}

// Catalog is the sorted set of filters found on disk.
type Catalog struct {
	filters []Filter
	byName  map[string]Filter
}

// LoadCatalog scans dirs for .cube files. Missing directories are skipped and
// a name found in an earlier directory wins over later ones.
func LoadCatalog(fs ports.FileSystem, dirs []string, logger ports.Logger) *Catalog {
	log := logger.WithComponent("filters")
	c := &Catalog{byName: make(map[string]Filter)}

	for _, dir := range dirs {
		names, err := fs.ListFiles(dir)
		if err != nil {
			log.Debug("Skipping LUT directory %s: %v", dir, err)
			continue
		}
		for _, name := range names {
			if !strings.EqualFold(filepath.Ext(name), ".cube") {
				continue
			}
			base := strings.TrimSuffix(name, filepath.Ext(name))
			if base == None {
				continue
			}
			if _, dup := c.byName[base]; dup {
				continue
			}
			f := Filter{Name: base, Path: filepath.Join(dir, name)}
			c.byName[base] = f
			c.filters = append(c.filters, f)
		}
	}

	sort.Slice(c.filters, func(i, j int) bool {
		return c.filters[i].Name < c.filters[j].Name
	})
	log.Debug("Loaded %d filters", len(c.filters))
	return c
}

// Names returns None followed by every filter name.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.filters)+1)
	names = append(names, None)
	for _, f := range c.filters {
		names = append(names, f.Name)
	}
	return names
}

// Filters returns the filters on disk, without None.
func (c *Catalog) Filters() []Filter {
	return append([]Filter(nil), c.filters...)
}

// Lookup finds a filter by name.
func (c *Catalog) Lookup(name string) (Filter, bool) {
	f, ok := c.byName[name]
	return f, ok
}

// Len returns the number of filters, without None.
func (c *Catalog) Len() int {
	return len(c.filters)
}
