package audio

import (
	"slices"
	"strings"
)

var decodableExts = []string{".mp3", ".wav", ".flac", ".ogg"}

// IsSupportedExt reports whether NewDecoder handles ext.
func IsSupportedExt(ext string) bool {
	return slices.Contains(decodableExts, strings.ToLower(ext))
}

// SupportedExtsList returns a human-readable list of decodable formats.
func SupportedExtsList() string {
	return strings.Join(decodableExts, ", ")
}
