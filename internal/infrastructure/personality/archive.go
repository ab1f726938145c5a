package personality

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/doeshing/persona-go/internal/domain"
)

// Archive entry names.
const (
	archiveConfig    = "config.json"
	archivePrompt    = "prompt.txt"
	archiveKnowledge = "knowledge.txt"
	archiveImage     = "image"
)

const maxArchiveEntry = 16 << 20

// ErrInvalidArchive is returned for zips missing the personality config.
var ErrInvalidArchive = errors.New("not a personality archive")

// Export writes p as a zip archive to w. The image, when set, is read from
// disk and stored as image<ext>.
func Export(w io.Writer, p domain.Personality) error {
	zw := zip.NewWriter(w)

	meta := p
	meta.Prompt = ""
	meta.Knowledge = ""
	meta.Image = ""
	config, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := writeEntry(zw, archiveConfig, config); err != nil {
		return err
	}
	if err := writeEntry(zw, archivePrompt, []byte(p.Prompt)); err != nil {
		return err
	}
	if p.Knowledge != "" {
		if err := writeEntry(zw, archiveKnowledge, []byte(p.Knowledge)); err != nil {
			return err
		}
	}
	if p.Image != "" {
		data, err := os.ReadFile(p.Image)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		if err := writeEntry(zw, archiveImage+filepath.Ext(p.Image), data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// ExportFile writes the archive to path.
func ExportFile(path string, p domain.Personality) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Export(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportFile reads an archive produced by Export. The personality gets a fresh
// ID so importing twice never collides; an embedded image is extracted into
// imageDir.
func ImportFile(path, imageDir string) (domain.Personality, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return domain.Personality{}, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	var (
		p         domain.Personality
		seen      bool
		prompt    string
		knowledge string
		imgName   string
		imgBytes  []byte
	)
	for _, file := range zr.File {
		data, err := readEntry(file)
		if err != nil {
			return domain.Personality{}, err
		}
		name := filepath.Base(file.Name)
		switch {
		case name == archiveConfig:
			if err := json.Unmarshal(data, &p); err != nil {
				return domain.Personality{}, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
			}
			seen = true
		case name == archivePrompt:
			prompt = string(data)
		case name == archiveKnowledge:
			knowledge = string(data)
		case strings.HasPrefix(name, archiveImage):
			imgName, imgBytes = name, data
		}
	}
	if !seen {
		return domain.Personality{}, ErrInvalidArchive
	}
	p.ID = uuid.NewString()
	p.Prompt = prompt
	p.Knowledge = knowledge
	p.Image = ""
	if imgBytes != nil && imageDir != "" {
		if err := os.MkdirAll(imageDir, domain.DirectoryPermissions); err != nil {
			return domain.Personality{}, err
		}
		dst := filepath.Join(imageDir, p.ID+filepath.Ext(imgName))
		if err := os.WriteFile(dst, imgBytes, 0o644); err != nil {
			return domain.Personality{}, fmt.Errorf("write image: %w", err)
		}
		p.Image = dst
	}
	return p, p.Validate()
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func readEntry(file *zip.File) ([]byte, error) {
	if file.UncompressedSize64 > maxArchiveEntry {
		return nil, fmt.Errorf("%w: %s too large", ErrInvalidArchive, file.Name)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxArchiveEntry))
}
