package store

import (
	"strings"
	"time"
	"unicode"
)

// maxNameLen bounds sanitized filenames.
const maxNameLen = 200

// SanitizeName maps an arbitrary client-supplied filename to a safe name
// for the flat upload store. Every character outside [alphanumeric - _ .]
// is dropped and leading dots are stripped, so the result can never carry
// a path separator or hide as a dotfile. An empty result is replaced with
// a timestamp-based generated name. Sanitizing an already-sanitized name
// returns it unchanged.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '-' || r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimLeft(b.String(), ".")
	if cleaned == "" {
		return "upload-" + time.Now().UTC().Format("20060102150405")
	}
	if runes := []rune(cleaned); len(runes) > maxNameLen {
		cleaned = string(runes[:maxNameLen])
	}
	return cleaned
}
