// Package resource resolves CSL style identifiers and locale codes to
// readable sources and enumerates the styles and locales available on disk.
package resource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File naming conventions of the data directories.
const (
	StyleExt     = ".csl"
	LocalePrefix = "locales-"
	LocaleExt    = ".xml"
)

// Config locates the CSL resources. It is passed to the loader explicitly;
// nothing here is process-wide.
type Config struct {
	// SchemaPath is the grammar file. Empty selects the embedded grammar.
	SchemaPath string `mapstructure:"schema_path"`
	// LocalesDir holds locales-<code>.xml files.
	LocalesDir string `mapstructure:"locales_dir"`
	// StylesDir holds <identifier>.csl files.
	StylesDir string `mapstructure:"styles_dir"`
}

// ConfigFromRoot derives the standard layout below a data root:
// csl/schema/csl.yaml, csl/locales and csl/styles.
func ConfigFromRoot(root string) Config {
	return Config{
		SchemaPath: filepath.Join(root, "csl", "schema", "csl.yaml"),
		LocalesDir: filepath.Join(root, "csl", "locales"),
		StylesDir:  filepath.Join(root, "csl", "styles"),
	}
}

// Source is either a filesystem path or an already open stream. Callers
// choose the variant explicitly; no type sniffing takes place.
type Source struct {
	path   string
	name   string
	stream io.Reader
}

// FromPath returns a source read from a file.
func FromPath(path string) Source { return Source{path: path, name: path} }

// FromStream returns a source backed by r. The name is used in diagnostics
// and errors only.
func FromStream(name string, r io.Reader) Source { return Source{name: name, stream: r} }

// IsStream reports whether the source wraps a stream.
func (s Source) IsStream() bool { return s.stream != nil }

// Path returns the file path of a path source.
func (s Source) Path() string { return s.path }

// Name identifies the source in messages.
func (s Source) Name() string { return s.name }

// Open returns a reader for the source. Streams are passed through and
// never closed by the returned closer.
func (s Source) Open() (io.ReadCloser, error) {
	if s.stream != nil {
		return io.NopCloser(s.stream), nil
	}
	if s.path == "" {
		return nil, errors.New("empty source")
	}
	return os.Open(s.path)
}

// Locator maps identifiers to sources using a Config.
type Locator struct {
	cfg Config
}

// NewLocator creates a locator for the given directories.
func NewLocator(cfg Config) *Locator { return &Locator{cfg: cfg} }

// Style resolves a style argument. An identifier naming an existing regular
// file is used as is; anything else is rewritten to
// <StylesDir>/<identifier>.csl.
func (l *Locator) Style(identifier string) Source {
	if info, err := os.Stat(identifier); err == nil && info.Mode().IsRegular() {
		return FromPath(identifier)
	}
	return FromPath(l.StylePath(identifier))
}

// StylePath returns the directory location of a style identifier.
func (l *Locator) StylePath(identifier string) string {
	return filepath.Join(l.cfg.StylesDir, identifier+StyleExt)
}

// Locale resolves a locale code to <LocalesDir>/locales-<code>.xml. Codes
// are never treated as paths.
func (l *Locator) Locale(code string) Source {
	return FromPath(l.LocalePath(code))
}

// LocalePath returns the file location of a locale code.
func (l *Locator) LocalePath(code string) string {
	return filepath.Join(l.cfg.LocalesDir, LocalePrefix+code+LocaleExt)
}

// Config returns the locator configuration.
func (l *Locator) Config() Config { return l.cfg }

// DiscoverLocales returns the codes embedded in locales-<code>.xml file
// names, sorted and without duplicates. A missing directory yields no codes.
func DiscoverLocales(dir string) ([]string, error) {
	return discover(dir, LocalePrefix, LocaleExt)
}

// DiscoverStyles returns the identifiers of the <identifier>.csl files in
// dir, sorted.
func DiscoverStyles(dir string) ([]string, error) {
	return discover(dir, "", StyleExt)
}

func discover(dir, prefix, ext string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := idFromName(e.Name(), prefix, ext)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// StyleID returns the identifier of a style file name (apa.csl → apa).
func StyleID(path string) (string, bool) {
	return idFromName(filepath.Base(path), "", StyleExt)
}

// LocaleCode returns the code of a locale file name
// (locales-de-DE.xml → de-DE).
func LocaleCode(path string) (string, bool) {
	return idFromName(filepath.Base(path), LocalePrefix, LocaleExt)
}

func idFromName(name, prefix, ext string) (string, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
	return id, id != ""
}
