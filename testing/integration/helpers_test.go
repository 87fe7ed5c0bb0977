package integration

import (
	"os"
	"path/filepath"
	"testing"
)

// writeState replaces name in dir with content through a rename so that a
// watcher never reads a partial document. Returns the path.
func writeState(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("failed to rename %s: %v", tmp, err)
	}
	return path
}
