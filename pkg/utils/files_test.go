package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspaceCleanup(t *testing.T) {
	parent := t.TempDir()

	ws, err := NewWorkspace(parent, "render-*")
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	if err := os.WriteFile(ws.Path("a.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := ws.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Errorf("Workspace %s still exists", ws.Dir)
	}

	var nilWS *Workspace
	if err := nilWS.Cleanup(); err != nil {
		t.Errorf("nil Cleanup should be a no-op, got %v", err)
	}
}

func TestMoveFileCreatesParent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "nested", "out", "dst.txt")
	if err := os.WriteFile(src, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}
	if FileSize(dst) != 5 {
		t.Errorf("Expected 5 bytes at destination, got %d", FileSize(dst))
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("Source should be gone after move")
	}
}
