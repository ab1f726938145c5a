package personality

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/persona-go/internal/domain"
)

func TestArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "ada.png")
	require.NoError(t, os.WriteFile(image, []byte("png-bytes"), 0o644))

	original := domain.Personality{
		ID:          "fixed-id",
		Name:        "Ada",
		Prompt:      "You are Ada.",
		Knowledge:   "Analytical Engine",
		Temperature: domain.Float(0.6),
		MaxTokens:   400,
		Voice:       domain.Voice{Provider: "openai", VoiceID: "nova"},
		Image:       image,
	}
	archive := filepath.Join(dir, "ada.zip")
	require.NoError(t, ExportFile(archive, original))

	zr, err := zip.OpenReader(archive)
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	require.NoError(t, zr.Close())
	assert.ElementsMatch(t, []string{"config.json", "prompt.txt", "knowledge.txt", "image.png"}, names)

	imported, err := ImportFile(archive, filepath.Join(dir, "images"))
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, imported.ID)
	assert.Equal(t, original.Name, imported.Name)
	assert.Equal(t, original.Prompt, imported.Prompt)
	assert.Equal(t, original.Knowledge, imported.Knowledge)
	assert.Equal(t, original.Voice, imported.Voice)
	assert.Equal(t, original.MaxTokens, imported.MaxTokens)
	assert.Equal(t, original.Temperature, imported.Temperature)

	data, err := os.ReadFile(imported.Image)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, ".png", filepath.Ext(imported.Image))
}

func TestImportRejectsForeignZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("readme.md")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = ImportFile(path, "")
	assert.ErrorIs(t, err, ErrInvalidArchive)
}
