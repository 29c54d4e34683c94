package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webtop/internal/domain/icons"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

// DefaultIconSize is applied to entries that omit a size
const DefaultIconSize = 48

// Pattern matches catalog files inside a directory
const Pattern = "**/*.{yaml,yml,toml,json}"

// Entry describes one launcher icon
type Entry struct {
	ID     string  `json:"id" yaml:"id" toml:"id"`
	Title  string  `json:"title" yaml:"title" toml:"title"`
	Icon   string  `json:"icon" yaml:"icon" toml:"icon"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
}

// File is the on-disk catalog layout
type File struct {
	Icons []Entry `json:"icons" yaml:"icons" toml:"icons"`
}

// Default returns the built-in desktop icons
func Default() []Entry {
	return []Entry{
		{ID: "icon-home", Title: "Home", Icon: "/assets/icons/home.svg", Width: DefaultIconSize, Height: DefaultIconSize},
		{ID: "icon-documents", Title: "Documents", Icon: "/assets/icons/documents.svg", Width: DefaultIconSize, Height: DefaultIconSize},
	}
}

// Icons converts entries into visible, unhighlighted registry icons
func Icons(entries []Entry) []icons.Icon {
	out := make([]icons.Icon, 0, len(entries))
	for _, e := range entries {
		out = append(out, icons.Icon{
			ID:    e.ID,
			Title: e.Title,
			Image: e.Icon,
			Show:  true,
			Size:  types.Size{Width: e.Width, Height: e.Height},
		})
	}
	return out
}

// Loader reads icon catalogs from disk
type Loader struct {
	logger    *zap.Logger
	sanitizer *bluemonday.Policy
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Load reads the catalog at path using a silent loader
func Load(path string) ([]Entry, error) {
	return NewLoader(nil).Load(path)
}

// Load reads a catalog file, or every catalog file under a directory in
// lexical order. Entries are sanitized and deduplicated by id.
func (l *Loader) Load(path string) ([]Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = doublestar.FilepathGlob(filepath.Join(path, Pattern))
		if err != nil {
			return nil, fmt.Errorf("catalog: glob %s: %w", path, err)
		}
		sort.Strings(files)
	}

	var entries []Entry
	for _, file := range files {
		parsed, err := l.readFile(file)
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}

	return l.normalize(entries), nil
}

func (l *Loader) readFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	entries, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}

	l.logger.Debug("Loaded catalog file",
		zap.String("path", path),
		zap.Int("entries", len(entries)))
	return entries, nil
}

// Parse decodes catalog data in the format named by ext
func Parse(data []byte, ext string) ([]Entry, error) {
	var f File
	var err error

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &f)
	case "toml":
		err = toml.Unmarshal(data, &f)
	case "json":
		err = sonic.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ext, err)
	}
	return f.Icons, nil
}

func (l *Loader) normalize(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			l.logger.Warn("Skipping catalog entry without id", zap.String("title", e.Title))
			continue
		}
		if seen[e.ID] {
			l.logger.Warn("Duplicate catalog entry", zap.String("icon_id", e.ID))
			continue
		}
		seen[e.ID] = true

		e.Title = strings.TrimSpace(l.sanitizer.Sanitize(e.Title))
		if e.Width <= 0 {
			e.Width = DefaultIconSize
		}
		if e.Height <= 0 {
			e.Height = DefaultIconSize
		}
		out = append(out, e)
	}
	return out
}
