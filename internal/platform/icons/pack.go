package icons

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

// ManifestFile is the optional pack manifest at the root of an icon pack.
const ManifestFile = "manifest.yaml"

// EmbeddedSource is the Definition.Source value for the built-in pack.
const EmbeddedSource = "embedded"

//go:embed assets/*.svg assets/manifest.yaml
var embeddedFS embed.FS

// Manifest lists the icons of a pack.
type Manifest struct {
	Icons []ManifestIcon `yaml:"icons"`
}

// ManifestIcon maps one icon name to its SVG file.
type ManifestIcon struct {
	Name        string `yaml:"name"`
	File        string `yaml:"file"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// NewEmbedded returns a catalog of the icons compiled into the binary.
func NewEmbedded() (*Catalog, error) {
	sub, err := fs.Sub(embeddedFS, "assets")
	if err != nil {
		return nil, fmt.Errorf("open embedded icons: %w", err)
	}
	return LoadFS(sub, EmbeddedSource)
}

// LoadFS builds a catalog from an icon pack.
//
// When the pack has a manifest, only the listed icons are registered.
// Otherwise every top-level *.svg file is registered under its base name.
// Files are read and parsed on each Load, not at registration.
func LoadFS(fsys fs.FS, source string) (*Catalog, error) {
	if fsys == nil {
		return nil, errors.New("icon pack filesystem is required")
	}
	icons, err := readManifest(fsys)
	if err != nil {
		return nil, err
	}

	catalog := NewCatalog()
	for _, icon := range icons {
		if _, err := fs.Stat(fsys, icon.File); err != nil {
			return nil, fmt.Errorf("icon %q: %w", icon.Name, err)
		}
		def := Definition{
			Name:        icon.Name,
			Label:       icon.Label,
			Description: icon.Description,
			Source:      source,
		}
		if def.Label == "" {
			def.Label = defaultLabel(icon.Name)
		}
		if err := catalog.Register(def, fileLoader(fsys, icon.Name, icon.File)); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// ReadManifest returns the pack manifest, synthesizing one from *.svg files
// when the pack has none.
func ReadManifest(fsys fs.FS) (Manifest, error) {
	icons, err := readManifest(fsys)
	if err != nil {
		return Manifest{}, err
	}
	return Manifest{Icons: icons}, nil
}

func readManifest(fsys fs.FS) ([]ManifestIcon, error) {
	data, err := fs.ReadFile(fsys, ManifestFile)
	if errors.Is(err, fs.ErrNotExist) {
		return globManifest(fsys)
	}
	if err != nil {
		return nil, fmt.Errorf("read icon manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.UnmarshalWithOptions(data, &manifest, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parse icon manifest: %w", err)
	}
	if len(manifest.Icons) == 0 {
		return nil, errors.New("icon manifest lists no icons")
	}
	for i, icon := range manifest.Icons {
		if strings.TrimSpace(icon.Name) == "" {
			return nil, fmt.Errorf("icon manifest entry %d: name is required", i)
		}
		if icon.Name != strings.TrimSpace(icon.Name) {
			return nil, fmt.Errorf("icon manifest entry %d: name %q has surrounding whitespace", i, icon.Name)
		}
		if strings.TrimSpace(icon.File) == "" {
			manifest.Icons[i].File = icon.Name + ".svg"
		}
	}
	return manifest.Icons, nil
}

func globManifest(fsys fs.FS) ([]ManifestIcon, error) {
	files, err := fs.Glob(fsys, "*.svg")
	if err != nil {
		return nil, fmt.Errorf("glob icon files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("icon pack has no manifest and no svg files")
	}
	icons := make([]ManifestIcon, 0, len(files))
	for _, file := range files {
		icons = append(icons, ManifestIcon{
			Name: strings.TrimSuffix(path.Base(file), ".svg"),
			File: file,
		})
	}
	return icons, nil
}

func fileLoader(fsys fs.FS, name, file string) Loader {
	return func(ctx context.Context) (Asset, error) {
		if err := ctx.Err(); err != nil {
			return Asset{}, err
		}
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return Asset{}, fmt.Errorf("read %s: %w", file, err)
		}
		return ParseSVG(name, data)
	}
}

func defaultLabel(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + word[size:]
	}
	return strings.Join(words, " ")
}
