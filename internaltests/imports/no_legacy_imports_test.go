package imports_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNoLegacyFrameworkImports(t *testing.T) {
	root := filepath.Clean("../..")
	legacy := []string{
		"\"github.com/leeforge/framework",
		"\"leeforge/frame-core",
	}
	var hits []string

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || path == filepath.Join(root, "internaltests") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		b, _ := os.ReadFile(path)
		content := string(b)
		for _, k := range legacy {
			if strings.Contains(content, k) {
				hits = append(hits, path)
				break
			}
		}
		return nil
	})

	if len(hits) > 0 {
		t.Fatalf("legacy imports found: %v", hits[:min(10, len(hits))])
	}
}

func TestEventPackageStaysLeaf(t *testing.T) {
	// event must not depend on the packages that build on it
	forbidden := []string{
		"github.com/zenterm/zenbus/metrics",
		"github.com/zenterm/zenbus/config",
		"github.com/zenterm/zenbus/appevents",
		"github.com/zenterm/zenbus/redis_client",
	}
	files, err := filepath.Glob(filepath.Join("..", "..", "event", "*.go"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no event sources found")
	}
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		for _, imp := range forbidden {
			if strings.Contains(string(b), "\""+imp+"\"") {
				t.Errorf("%s imports %s", f, imp)
			}
		}
	}
}
