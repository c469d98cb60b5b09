package store

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Resolve turns a client-supplied relative path into a canonical absolute
// path guaranteed to stay within the store root. Leading separators are
// stripped, the remainder is joined to the root and canonicalized with
// symlinks fully resolved, and the result is compared against the
// canonical root. The containment check is done on the canonical forms,
// never on the raw string: a lexical check would be defeated by a symlink
// inside the root pointing elsewhere.
//
// An empty path resolves to the root itself.
func (s *Store) Resolve(raw string) (string, error) {
	trimmed := strings.TrimLeft(raw, "/\\")
	trimmed = strings.ReplaceAll(trimmed, "\\", "/")

	candidate := filepath.Join(s.root, filepath.FromSlash(trimmed))
	resolved, err := canonicalize(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", raw, err)
	}

	if resolved != s.root && !strings.HasPrefix(resolved, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q: %w", raw, ErrPathEscape)
	}
	return resolved, nil
}

// Rel returns the slash-separated path of an already-resolved absolute
// path relative to the store root.
func (s *Store) Rel(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// canonicalize resolves path to its absolute symlink-free form. The leaf
// (and any trailing segments) may not exist yet: the deepest existing
// ancestor is resolved and the remainder rejoined, mirroring what the
// kernel would do on create.
func canonicalize(path string) (string, error) {
	clean := filepath.Clean(path)
	resolved, err := filepath.EvalSymlinks(clean)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	parent := filepath.Dir(clean)
	if parent == clean {
		return "", err
	}
	resolvedParent, perr := canonicalize(parent)
	if perr != nil {
		return "", perr
	}
	return filepath.Join(resolvedParent, filepath.Base(clean)), nil
}
