package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// SanitizeFileName replaces characters outside [a-zA-Z0-9-_.] with '_'.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
}

// TimestampedFileName builds "<base>_<unix><ext>" from a title and
// extension, sanitized for the filesystem.
func TimestampedFileName(title, ext string) string {
	base := strings.TrimSuffix(title, ext)
	name := fmt.Sprintf("%s_%d%s", base, time.Now().Unix(), ext)
	return SanitizeFileName(name)
}

// FileNameWithoutExt extracts the base filename without its extension.
func FileNameWithoutExt(path string) string {
	base := filepath.Base(path)
	if idx := strings.LastIndex(base, "."); idx != -1 {
		base = base[:idx]
	}
	return base
}
