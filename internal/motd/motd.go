// Package motd manages the message-of-the-day file and its HTML
// rendering.
package motd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/debtcoder/debtcoder/internal/store"
)

// DefaultContent seeds the MOTD file when it does not exist yet.
const DefaultContent = "MOTD not set. Edit MOTD.md to update.\n"

// Manager owns the MOTD file.
type Manager struct {
	path     string
	maxBytes int64
	md       goldmark.Markdown
}

// New creates a manager for the MOTD at path, seeding it with the default
// content if absent.
func New(path string, maxBytes int64) (*Manager, error) {
	m := &Manager{
		path:     path,
		maxBytes: maxBytes,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
		),
	}
	if err := m.Ensure(); err != nil {
		return nil, err
	}
	return m, nil
}

// Ensure re-seeds the MOTD file with the default content if it has gone
// missing. Callers that report on the file call this first so a deleted
// MOTD never stays missing.
func (m *Manager) Ensure() error {
	if _, err := os.Stat(m.path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("create MOTD dir: %w", err)
	}
	if err := os.WriteFile(m.path, []byte(DefaultContent), 0644); err != nil {
		return fmt.Errorf("seed MOTD: %w", err)
	}
	return nil
}

// Path returns the MOTD file location.
func (m *Manager) Path() string { return m.path }

// Read returns the raw MOTD markdown.
func (m *Manager) Read() (string, error) {
	if err := m.Ensure(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return "", fmt.Errorf("read MOTD: %w", err)
	}
	return string(data), nil
}

// Write replaces the MOTD contents, subject to the text size cap.
func (m *Manager) Write(content string) (int64, error) {
	if int64(len(content)) > m.maxBytes {
		return 0, fmt.Errorf("MOTD payload of %d bytes: %w", len(content), store.ErrTooLarge)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return 0, fmt.Errorf("create MOTD dir: %w", err)
	}
	if err := os.WriteFile(m.path, []byte(content), 0644); err != nil {
		return 0, fmt.Errorf("write MOTD: %w", err)
	}
	return int64(len(content)), nil
}

// ModTime returns the MOTD modification time, or the zero time when the
// file is missing.
func (m *Manager) ModTime() time.Time {
	info, err := os.Stat(m.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime().UTC()
}

// RenderHTML converts the current MOTD markdown to HTML.
func (m *Manager) RenderHTML() (string, error) {
	content, err := m.Read()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render MOTD: %w", err)
	}
	return buf.String(), nil
}
