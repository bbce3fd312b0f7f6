package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"dvw-reader/internal/parser"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.dvw"), "")
	writeFile(t, filepath.Join(root, "season", "a.DVW"), "")
	writeFile(t, filepath.Join(root, "notes.txt"), "")
	writeFile(t, filepath.Join(root, "season", "export.csv"), "")

	entries, err := NewWalker(parser.DefaultOptions()).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	want := []string{
		filepath.Join(root, "b.dvw"),
		filepath.Join(root, "season", "a.DVW"),
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i, e := range entries {
		if e.Path != want[i] {
			t.Errorf("entries[%d].Path = %q, want %q", i, e.Path, want[i])
		}
		if e.Ext != ".dvw" {
			t.Errorf("entries[%d].Ext = %q, want .dvw", i, e.Ext)
		}
		if e.Parser == nil {
			t.Errorf("entries[%d] has no parser", i)
		}
	}
}

func TestWalk_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "match.dvw")
	writeFile(t, file, "")

	if _, err := NewWalker(parser.DefaultOptions()).Walk(file); err == nil {
		t.Error("Walk on a file succeeded, want error")
	}
	if _, err := NewWalker(parser.DefaultOptions()).Walk(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Walk on a missing root succeeded, want error")
	}
}

func TestParseFile(t *testing.T) {
	root := t.TempDir()
	src, err := os.ReadFile(filepath.Join("..", "parser", "testdata", "match.dvw"))
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "match.dvw"), string(src))
	writeFile(t, filepath.Join(root, "broken.dvw"), "[3DATAVOLLEYSCOUT]\n")

	w := NewWalker(parser.DefaultOptions())
	entries, err := w.Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	// Sorted: broken.dvw first.
	if _, err := w.ParseFile(entries[0]); err == nil {
		t.Error("ParseFile on a truncated file succeeded")
	}

	res, err := w.ParseFile(entries[1])
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if res.Record.HomeTeam.ID != "HVC" || len(res.Record.Actions) != 6 {
		t.Errorf("unexpected record: home %q, %d actions", res.Record.HomeTeam.ID, len(res.Record.Actions))
	}
}
