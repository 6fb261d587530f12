package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()
	require.Len(t, cat.Entries, 2)
	assert.Equal(t, "json_en", cat.Entries[0].ID)
	assert.Equal(t, Structured, cat.Entries[0].Representation)
	assert.Contains(t, cat.Entries[0].KnownFiles, "following.json")
	assert.Contains(t, cat.Entries[0].KnownFiles, "personal_information.json")
	assert.Equal(t, "html_en", cat.Entries[1].ID)
	assert.Equal(t, Markup, cat.Entries[1].Representation)

	assert.Equal(t, ".html", cat.Entries[1].Representation.Extension())
	assert.Equal(t, ".json", cat.Entries[0].Representation.Extension())
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "no entries", yaml: "entries: []\n"},
		{name: "missing id", yaml: "entries:\n  - representation: structured\n    known_files: [a.json]\n"},
		{name: "unknown representation", yaml: "entries:\n  - id: x\n    representation: pdf\n    known_files: [a.json]\n"},
		{name: "no files", yaml: "entries:\n  - id: x\n    representation: markup\n"},
		{name: "duplicate ids", yaml: "entries:\n  - id: x\n    representation: markup\n    known_files: [a.html]\n  - id: x\n    representation: structured\n    known_files: [a.json]\n"},
		{name: "not yaml", yaml: "entries: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	content := "entries:\n  - id: json_nl\n    representation: structured\n    language: nl\n    known_files: [persoonlijke_informatie.json]\n"
	require.NoError(t, os.WriteFile(catalogPath, []byte(content), 0o644))

	cat, err := LoadFile(catalogPath)
	require.NoError(t, err)
	require.Len(t, cat.Entries, 1)
	assert.Equal(t, "nl", cat.Entries[0].Language)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("entries: []"))
	assert.Error(t, err)
}
