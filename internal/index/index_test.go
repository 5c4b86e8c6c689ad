package index

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(filepath.Join(t.TempDir(), "symbols.db"))
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestOpenDB(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		t.Fatalf("checking schema_version: %v", err)
	}
	if count != 1 {
		t.Errorf("schema_version should have 1 row, got %d", count)
	}
}

func TestNewIndexEmpty(t *testing.T) {
	idx := newTestIndex(t)

	symbolCount, fileCount, err := idx.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if symbolCount != 0 || fileCount != 0 {
		t.Errorf("expected empty index, got %d symbols / %d files", symbolCount, fileCount)
	}

	syms, err := idx.FindSymbol("anything", "", 10)
	if err != nil {
		t.Fatalf("FindSymbol() error = %v", err)
	}
	if len(syms) != 0 {
		t.Errorf("expected 0 symbols, got %d", len(syms))
	}
}

func TestUpdateAndFind(t *testing.T) {
	idx := newTestIndex(t)
	root := writeProject(t, map[string]string{
		"game/script.rpy":  "label start:\n    pass\n\ndefine config.name = \"Demo\"\n",
		"game/screens.rpy": "screen save_slot(slot):\n    pass\n",
		"README.md":        "not a script\n",
	})

	if err := idx.Update(root); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	symbolCount, fileCount, err := idx.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if symbolCount != 3 {
		t.Errorf("symbols = %d, want 3", symbolCount)
	}
	if fileCount != 2 {
		t.Errorf("files = %d, want 2 (README.md is not a script)", fileCount)
	}

	syms, err := idx.FindSymbol("save_slot", "", 10)
	if err != nil {
		t.Fatalf("FindSymbol() error = %v", err)
	}
	if len(syms) != 1 {
		t.Fatalf("found %d symbols, want 1", len(syms))
	}
	if syms[0].Kind != "screen" || syms[0].Path != filepath.Join("game", "screens.rpy") {
		t.Errorf("unexpected symbol: %+v", syms[0])
	}
}

func TestFindSymbolKindFilter(t *testing.T) {
	idx := newTestIndex(t)
	root := writeProject(t, map[string]string{
		"game/a.rpy": "label intro:\n    pass\ndefine intro_music = \"a.ogg\"\n",
	})
	if err := idx.Update(root); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	syms, err := idx.FindSymbol("intro", "label", 10)
	if err != nil {
		t.Fatalf("FindSymbol() error = %v", err)
	}
	if len(syms) != 1 || syms[0].Kind != "label" {
		t.Errorf("kind filter failed: %+v", syms)
	}
}

func TestLookupSymbol(t *testing.T) {
	idx := newTestIndex(t)
	root := writeProject(t, map[string]string{
		"game/fn.rpy": "init python:\n    def greet(who, loud=False):\n        pass\n",
	})
	if err := idx.Update(root); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	sym, err := idx.LookupSymbol("greet")
	if err != nil {
		t.Fatalf("LookupSymbol() error = %v", err)
	}
	if sym == nil {
		t.Fatal("LookupSymbol() = nil, want symbol")
	}
	if sym.Args != "who, loud=False" {
		t.Errorf("Args = %q", sym.Args)
	}

	missing, err := idx.LookupSymbol("no_such_symbol")
	if err != nil {
		t.Fatalf("LookupSymbol() error = %v", err)
	}
	if missing != nil {
		t.Errorf("LookupSymbol() = %+v, want nil for unknown name", missing)
	}
}

func TestUpdateIncremental(t *testing.T) {
	idx := newTestIndex(t)
	root := writeProject(t, map[string]string{
		"game/a.rpy": "label one:\n    pass\n",
	})
	if err := idx.Update(root); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Rewrite the file with different content and size; the old symbol must
	// be replaced, not duplicated.
	path := filepath.Join(root, "game", "a.rpy")
	if err := os.WriteFile(path, []byte("label two_renamed:\n    pass\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := idx.Update(root); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if syms, _ := idx.FindSymbol("one", "", 10); len(syms) != 0 {
		t.Errorf("stale symbol survived reindex: %+v", syms)
	}
	if syms, _ := idx.FindSymbol("two_renamed", "", 10); len(syms) != 1 {
		t.Errorf("new symbol missing after reindex")
	}
}

func TestFullReindex(t *testing.T) {
	idx := newTestIndex(t)
	root := writeProject(t, map[string]string{
		"game/a.rpy": "label start:\n    pass\n",
	})
	if err := idx.Update(root); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := idx.FullReindex(root); err != nil {
		t.Fatalf("FullReindex() error = %v", err)
	}

	symbolCount, _, err := idx.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if symbolCount != 1 {
		t.Errorf("symbols = %d, want 1", symbolCount)
	}
}

func TestGitignoreFiltering(t *testing.T) {
	idx := newTestIndex(t)
	root := writeProject(t, map[string]string{
		".gitignore":      "generated/\n",
		"game/a.rpy":      "label keep:\n    pass\n",
		"generated/b.rpy": "label skip_me:\n    pass\n",
	})
	if err := idx.Update(root); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if syms, _ := idx.FindSymbol("skip_me", "", 10); len(syms) != 0 {
		t.Errorf("gitignored file was indexed: %+v", syms)
	}
	if syms, _ := idx.FindSymbol("keep", "", 10); len(syms) != 1 {
		t.Error("non-ignored file missing from index")
	}
}

func TestIsIgnoredDir(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".git", true},
		{".rpyscope", true},
		{"cache", true},
		{"saves", true},
		{"game", false},
		{"tl", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsIgnoredDir(tt.name); got != tt.want {
				t.Errorf("IsIgnoredDir(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestSetExtensions(t *testing.T) {
	idx := newTestIndex(t)
	idx.SetExtensions([]string{"rpy", ".custom"})

	if !idx.isScriptFile("a.rpy") || !idx.isScriptFile("b.CUSTOM") {
		t.Error("configured extensions not recognized")
	}
	if idx.isScriptFile("c.rpym") {
		t.Error("default extension should be replaced, not merged")
	}
}
