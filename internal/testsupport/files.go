package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Zoorn/logging2"
)

// WriteDocument places a configuration document into dir.
func WriteDocument(t testing.TB, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write document %s: %v", name, err)
	}
}

// FlushAndRead flushes the coordinator and returns the lines written to path.
func FlushAndRead(t testing.TB, coord *logging2.Coordinator, path string) []string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := coord.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return ReadLines(t, path)
}

// ReadLines returns the non-empty lines of path.
func ReadLines(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
