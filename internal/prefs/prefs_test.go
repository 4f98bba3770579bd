package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestLoad_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "contacts")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "theme = \"Slate\"\nlast_query = \"  ada \"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte(content), 0o644))

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Prefs{Theme: "Slate", LastQuery: "ada"}, p)
}

func TestLoad_BlankThemeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"  \"\nlast_query = \"grace\"\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultTheme, p.Theme)
	assert.Equal(t, "grace", p.LastQuery)
}

func TestLoad_MalformedFileReportsAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = [oops\n"), 0o644))

	p, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse prefs")
	assert.Equal(t, Default(), p)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	want := Prefs{Theme: "Kanagawa", LastQuery: "lovelace"}

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Overwriting leaves no temp files behind.
	require.NoError(t, Save(path, Prefs{Theme: "Slate"}))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "prefs.toml", entries[0].Name())

	got, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, Prefs{Theme: "Slate"}, got)
}

func TestSave_EmptyThemeStoresDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, Save(path, Prefs{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), defaultTheme)
	assert.NotContains(t, string(data), "last_query")
}
