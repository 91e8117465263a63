package storagepath

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUserDirCreatesTenantDirectory(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	dir, err := m.UserDir("alice")
	if err != nil {
		t.Fatalf("UserDir failed: %v", err)
	}
	if dir != filepath.Join(root, "alice") {
		t.Errorf("got %s, want %s", dir, filepath.Join(root, "alice"))
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("expected directory at %s", dir)
	}
}

func TestUserDirRejectsPathTraversal(t *testing.T) {
	m := NewManager(t.TempDir())

	for _, name := range []string{"", "..", "a/b", `a\b`} {
		if _, err := m.UserDir(name); err == nil {
			t.Errorf("UserDir(%q) should have failed", name)
		}
	}
}

func TestRemoveArtifactsDeletesTxtAndPdf(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	txt := filepath.Join(root, "alice", "report.txt")
	pdf := filepath.Join(root, "alice", "report.pdf")
	os.MkdirAll(filepath.Dir(txt), 0o750)
	os.WriteFile(txt, []byte("text"), 0o644)
	os.WriteFile(pdf, []byte("pdf"), 0o644)

	m.RemoveArtifacts(txt)

	for _, p := range []string{txt, pdf} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed", p)
		}
	}
}

func TestRemoveArtifactsMissingFileIsNoop(t *testing.T) {
	m := NewManager(t.TempDir())
	// must not panic or error when the artifact is already gone
	m.RemoveArtifacts(filepath.Join(m.root, "bob", "ghost.txt"))
}

func TestPruneUserDir(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	txt := filepath.Join(root, "alice", "report.txt")
	os.MkdirAll(filepath.Dir(txt), 0o750)

	m.PruneUserDir(txt)
	if _, err := os.Stat(filepath.Dir(txt)); !os.IsNotExist(err) {
		t.Error("expected empty tenant directory to be pruned")
	}

	// non-empty directories stay
	txt2 := filepath.Join(root, "bob", "a.txt")
	os.MkdirAll(filepath.Dir(txt2), 0o750)
	os.WriteFile(txt2, []byte("x"), 0o644)
	m.PruneUserDir(txt2)
	if _, err := os.Stat(filepath.Dir(txt2)); err != nil {
		t.Error("non-empty tenant directory must not be pruned")
	}

	// the data root itself is never removed
	m.PruneUserDir(filepath.Join(root, "c.txt"))
	if _, err := os.Stat(root); err != nil {
		t.Error("data root must never be pruned")
	}
}
