package extract

import (
	"os"
	"path/filepath"
	"testing"

	"csvextract/internal/datasource/file"
)

// writeFile writes content to name inside dir and returns the full path.
func writeFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// localFile writes content to a temp file and returns a Source for it.
func localFile(t testing.TB, name, content string) *file.Local {
	t.Helper()
	return file.NewLocal(writeFile(t, t.TempDir(), name, content))
}

func readFile(t testing.TB, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}
