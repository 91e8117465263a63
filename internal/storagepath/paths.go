package storagepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docvault/internal/config"
	"docvault/pkg/logger_i"
)

// Manager hands out per-tenant upload directories and performs the advisory
// artifact cleanup. Cleanup failures are logged and swallowed: the vector
// store records are authoritative, leftover files are not a correctness bug.
type Manager struct {
	root   string
	logger *logger_i.Logger
}

func NewManager(root string) *Manager {
	if root == "" {
		root = config.DataPath()
	}
	return &Manager{root: root, logger: logger_i.NewLogger("Storage")}
}

// UserDir returns (and creates if needed) the tenant's upload directory.
func (m *Manager) UserDir(username string) (string, error) {
	if username == "" || strings.ContainsAny(username, `/\`) || username == ".." {
		return "", fmt.Errorf("invalid username for storage path: %q", username)
	}
	dir := filepath.Join(m.root, username)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating user directory: %w", err)
	}
	return dir, nil
}

// RemoveArtifacts deletes the document's text artifact plus the sibling PDF,
// best effort.
func (m *Manager) RemoveArtifacts(txtPath string) {
	m.safeRemove(txtPath)
	m.safeRemove(strings.TrimSuffix(txtPath, filepath.Ext(txtPath)) + ".pdf")
}

// PruneUserDir removes the directory holding txtPath if it is now empty.
// The data root itself is never removed.
func (m *Manager) PruneUserDir(txtPath string) {
	dir := filepath.Dir(txtPath)
	if dir == m.root || dir == "." || dir == string(filepath.Separator) {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	if err := os.Remove(dir); err != nil {
		m.logger.Debug("could not prune tenant directory", "dir", dir, "error", err)
	}
}

func (m *Manager) safeRemove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.logger.Debug("advisory cleanup failed", "path", path, "error", err)
	}
}
