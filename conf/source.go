package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// probeExtensions is the order candidate files are tried when an identifier
// carries no extension. JSON wins over YAML when both exist.
var probeExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// Source locates configuration documents by identifier. An identifier is a
// bare document name such as "logging_console"; sources resolve it to bytes
// plus the format implied by the matching file extension.
type Source interface {
	// Open returns the document bytes for identifier, or ErrNotFound.
	Open(identifier string) ([]byte, Format, error)
}

// Lister is implemented by sources that can enumerate the identifiers they
// hold. Used by tooling; resolution never needs it.
type Lister interface {
	Names() ([]string, error)
}

// FormatForExtension maps a file extension (with leading dot) to its Format.
func FormatForExtension(ext string) (Format, bool) {
	switch strings.ToLower(ext) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	default:
		return "", false
	}
}

func splitIdentifier(identifier string) (base string, explicit Format, err error) {
	if identifier == "" {
		return "", "", fmt.Errorf("%w: empty identifier", ErrNotFound)
	}
	if strings.ContainsAny(identifier, `/\`) {
		return "", "", fmt.Errorf("%w: identifier %q must not contain path separators", ErrNotFound, identifier)
	}
	if ext := filepath.Ext(identifier); ext != "" {
		if format, ok := FormatForExtension(ext); ok {
			return strings.TrimSuffix(identifier, ext), format, nil
		}
	}
	return identifier, "", nil
}

type fsSource struct {
	fsys fs.FS
	desc string
}

// FS wraps a file system as a document source. Identifiers resolve against
// the root of fsys.
func FS(fsys fs.FS, desc string) Source {
	return &fsSource{fsys: fsys, desc: desc}
}

// Dir exposes a directory on disk as a document source.
func Dir(path string) Source {
	return &fsSource{fsys: os.DirFS(path), desc: path}
}

func (s *fsSource) Open(identifier string) ([]byte, Format, error) {
	base, explicit, err := splitIdentifier(identifier)
	if err != nil {
		return nil, "", err
	}
	if explicit != "" {
		data, err := fs.ReadFile(s.fsys, identifier)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, "", fmt.Errorf("%w: %s in %s", ErrNotFound, identifier, s.desc)
			}
			return nil, "", fmt.Errorf("read %s: %w", identifier, err)
		}
		return data, explicit, nil
	}
	for _, ext := range probeExtensions {
		data, err := fs.ReadFile(s.fsys, base+ext)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("read %s: %w", base+ext, err)
		}
		format, _ := FormatForExtension(ext)
		return data, format, nil
	}
	return nil, "", fmt.Errorf("%w: %s in %s", ErrNotFound, identifier, s.desc)
}

func (s *fsSource) Names() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.desc, err)
	}
	seen := make(map[string]struct{})
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if _, ok := FormatForExtension(ext); !ok {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Find opens identifier against each source in order and returns the first
// hit. Later sources act as fallbacks, so callers list overrides first and
// built-in defaults last.
func Find(sources []Source, identifier string) ([]byte, Format, error) {
	if len(sources) == 0 {
		return nil, "", fmt.Errorf("%w: no sources configured", ErrNotFound)
	}
	for _, src := range sources {
		data, format, err := src.Open(identifier)
		if err == nil {
			return data, format, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("%w: %s", ErrNotFound, identifier)
}

// List merges the identifiers known to every listing source, deduplicated
// and sorted.
func List(sources []Source) ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, src := range sources {
		lister, ok := src.(Lister)
		if !ok {
			continue
		}
		found, err := lister.Names()
		if err != nil {
			return nil, err
		}
		for _, name := range found {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadDocument resolves identifier through sources and parses the result.
func LoadDocument(sources []Source, identifier string) (*Document, error) {
	data, format, err := Find(sources, identifier)
	if err != nil {
		return nil, err
	}
	base, _, _ := splitIdentifier(identifier)
	return Parse(base, data, format)
}
