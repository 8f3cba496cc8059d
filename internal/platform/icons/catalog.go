package icons

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Definition describes a catalog entry.
type Definition struct {
	Name        string
	Label       string
	Description string
	// Source names the pack that provides the icon (embedded, a directory, sqlite).
	Source string
}

// Loader produces the asset for one registered icon.
type Loader func(ctx context.Context) (Asset, error)

// Source loads icon assets by exact name.
type Source interface {
	Load(ctx context.Context, name string) (Asset, error)
}

// Lister enumerates the icons a source can load.
type Lister interface {
	List(ctx context.Context) ([]Definition, error)
}

// Library is a source that can also enumerate its icons.
type Library interface {
	Source
	Lister
}

type entry struct {
	def    Definition
	loader Loader
}

// Catalog is a registry mapping icon names to loaders.
//
// Names are matched exactly; "Home" and "home" are different icons.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]entry)}
}

// Register adds a loader for def.Name.
func (c *Catalog) Register(def Definition, loader Loader) error {
	if c == nil {
		return errors.New("catalog is nil")
	}
	if strings.TrimSpace(def.Name) == "" {
		return errors.New("icon name is required")
	}
	if def.Name != strings.TrimSpace(def.Name) {
		return fmt.Errorf("icon name %q has surrounding whitespace", def.Name)
	}
	if loader == nil {
		return fmt.Errorf("icon %q: loader is required", def.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[def.Name]; exists {
		return fmt.Errorf("icon %q is already registered", def.Name)
	}
	c.entries[def.Name] = entry{def: def, loader: loader}
	return nil
}

// Load runs the loader registered for name.
func (c *Catalog) Load(ctx context.Context, name string) (Asset, error) {
	if c == nil {
		return Asset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		return Asset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	asset, err := e.loader(ctx)
	if err != nil {
		return Asset{}, fmt.Errorf("load icon %q: %w", name, err)
	}
	if asset.Name == "" {
		asset.Name = name
	}
	return asset, nil
}

// Has reports whether name is registered.
func (c *Catalog) Has(name string) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

// Names returns the registered icon names in sorted order.
func (c *Catalog) Names() []string {
	defs := c.Definitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

// Definitions returns a copy of the catalog definitions sorted by name.
func (c *Catalog) Definitions() []Definition {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	result := make([]Definition, 0, len(c.entries))
	for _, e := range c.entries {
		result = append(result, e.def)
	}
	c.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// List implements Lister.
func (c *Catalog) List(context.Context) ([]Definition, error) {
	return c.Definitions(), nil
}

// CatalogMarkdown renders catalog definitions as a markdown table.
func CatalogMarkdown(defs []Definition) string {
	var builder strings.Builder
	builder.WriteString("# Icon Catalog\n\n")
	builder.WriteString("| Name | Label | Description | Source |\n")
	builder.WriteString("| --- | --- | --- | --- |\n")
	for _, def := range defs {
		builder.WriteString("| `")
		builder.WriteString(def.Name)
		builder.WriteString("` | ")
		builder.WriteString(markdownCell(def.Label))
		builder.WriteString(" | ")
		builder.WriteString(markdownCell(def.Description))
		builder.WriteString(" | ")
		builder.WriteString(markdownCell(def.Source))
		builder.WriteString(" |\n")
	}
	return builder.String()
}

func markdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", `\|`)
	return strings.ReplaceAll(value, "\n", " ")
}
