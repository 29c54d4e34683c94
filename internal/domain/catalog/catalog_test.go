package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	entries := Default()
	require.Len(t, entries, 2)
	assert.Equal(t, "icon-home", entries[0].ID)
	assert.Equal(t, "Home", entries[0].Title)
	assert.Equal(t, "icon-documents", entries[1].ID)
	assert.Equal(t, "Documents", entries[1].Title)
}

func TestIcons(t *testing.T) {
	got := Icons(Default())
	require.Len(t, got, 2)
	for _, icon := range got {
		assert.True(t, icon.Show)
		assert.False(t, icon.IsHighlighted)
		assert.Equal(t, float64(DefaultIconSize), icon.Size.Width)
		assert.Equal(t, float64(DefaultIconSize), icon.Size.Height)
	}
	assert.Equal(t, "/assets/icons/home.svg", got[0].Image)
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{
			name: "yaml",
			ext:  ".yaml",
			data: "icons:\n  - id: icon-home\n    title: Home\n    icon: home.svg\n    width: 64\n    height: 64\n",
		},
		{
			name: "toml",
			ext:  ".toml",
			data: "[[icons]]\nid = \"icon-home\"\ntitle = \"Home\"\nicon = \"home.svg\"\nwidth = 64.0\nheight = 64.0\n",
		},
		{
			name: "json",
			ext:  ".json",
			data: `{"icons":[{"id":"icon-home","title":"Home","icon":"home.svg","width":64,"height":64}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Parse([]byte(tt.data), tt.ext)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, Entry{ID: "icon-home", Title: "Home", Icon: "home.svg", Width: 64, Height: 64}, entries[0])
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("icons: []"), ".ini")
	assert.Error(t, err)

	_, err = Parse([]byte("{not json"), ".json")
	assert.Error(t, err)
}

func TestLoadFileNormalizes(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	loader := NewLoader(zap.New(core))

	dir := t.TempDir()
	path := writeFile(t, dir, "icons.yaml", `icons:
  - id: icon-home
    title: "<b>Home</b>"
    icon: home.svg
  - id: ""
    title: Nameless
  - id: icon-home
    title: Second Home
  - id: icon-docs
    title: Documents
    width: 32
`)

	entries, err := loader.Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Home", entries[0].Title)
	assert.Equal(t, float64(DefaultIconSize), entries[0].Width)
	assert.Equal(t, float64(DefaultIconSize), entries[0].Height)
	assert.Equal(t, float64(32), entries[1].Width)
	assert.Equal(t, float64(DefaultIconSize), entries[1].Height)

	assert.Equal(t, 1, logs.FilterMessage("Duplicate catalog entry").Len())
	assert.Equal(t, 1, logs.FilterMessage("Skipping catalog entry without id").Len())
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.toml", "[[icons]]\nid = \"icon-b\"\ntitle = \"B\"\n")
	writeFile(t, dir, "a.json", `{"icons":[{"id":"icon-a","title":"A"}]}`)
	writeFile(t, dir, "nested/c.yml", "icons:\n  - id: icon-c\n    title: C\n")
	writeFile(t, dir, "readme.txt", "not a catalog")

	entries, err := Load(dir)
	require.NoError(t, err)

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"icon-a", "icon-b", "icon-c"}, ids)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
