package audio

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata is what the header line shows for a track.
type Metadata struct {
	Title  string
	Artist string
}

// Label joins artist and title.
func (m Metadata) Label() string {
	if m.Artist == "" {
		return m.Title
	}
	return m.Artist + " - " + m.Title
}

// ReadMetadata reads ID3v2 tags when present. Files without a title tag get
// their base name without extension.
func ReadMetadata(path string) Metadata {
	if tag, err := id3v2.Open(path, id3v2.Options{Parse: true}); err == nil {
		m := Metadata{
			Title:  strings.TrimSpace(tag.Title()),
			Artist: strings.TrimSpace(tag.Artist()),
		}
		tag.Close()
		if m.Title != "" {
			return m
		}
	}
	base := filepath.Base(path)
	return Metadata{Title: strings.TrimSuffix(base, filepath.Ext(base))}
}
