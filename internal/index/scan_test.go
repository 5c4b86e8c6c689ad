package index

import "testing"

const sampleScript = `label start:
    "Welcome!"

screen save_slot(slot, label="Save"):
    vbox:
        pass

define config.name = "Demo Game"
default points = 0

init python:
    def add_points(amount, reason=None, **kwargs):
        """Adds points to the player's total.

        The running total is stored in points."""
        store.points += amount

transform fade_in:
    alpha 0.0

style button_text:
    size 24
`

func TestScanSource(t *testing.T) {
	syms := ScanSource("demo", "game/script.rpy", sampleScript)

	byName := make(map[string]Symbol)
	for _, s := range syms {
		byName[s.Name] = s
	}

	tests := []struct {
		name string
		kind string
		line int
	}{
		{"start", "label", 1},
		{"save_slot", "screen", 4},
		{"config.name", "define", 8},
		{"points", "default", 9},
		{"add_points", "def", 12},
		{"fade_in", "transform", 18},
		{"button_text", "style", 21},
	}

	if len(syms) != len(tests) {
		t.Errorf("found %d symbols, want %d: %+v", len(syms), len(tests), syms)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := byName[tt.name]
			if !ok {
				t.Fatalf("symbol %q not found", tt.name)
			}
			if s.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", s.Kind, tt.kind)
			}
			if s.Line != tt.line {
				t.Errorf("Line = %d, want %d", s.Line, tt.line)
			}
			if s.Source != "demo" {
				t.Errorf("Source = %q, want demo", s.Source)
			}
		})
	}
}

func TestScanSourceArgs(t *testing.T) {
	syms := ScanSource("demo", "s.rpy", sampleScript)
	byName := make(map[string]Symbol)
	for _, s := range syms {
		byName[s.Name] = s
	}

	if got := byName["save_slot"].Args; got != `slot, label="Save"` {
		t.Errorf("save_slot Args = %q", got)
	}
	if got := byName["add_points"].Args; got != "amount, reason=None, **kwargs" {
		t.Errorf("add_points Args = %q", got)
	}
	if got := byName["start"].Args; got != "" {
		t.Errorf("start Args = %q, want empty", got)
	}
}

func TestScanSourceLiterals(t *testing.T) {
	syms := ScanSource("demo", "s.rpy", sampleScript)
	byName := make(map[string]Symbol)
	for _, s := range syms {
		byName[s.Name] = s
	}

	if got := byName["config.name"].Literal; got != `"Demo Game"` {
		t.Errorf("config.name Literal = %q", got)
	}
	if got := byName["points"].Literal; got != "0" {
		t.Errorf("points Literal = %q", got)
	}
}

func TestScanSourceDocstring(t *testing.T) {
	syms := ScanSource("demo", "s.rpy", sampleScript)
	for _, s := range syms {
		if s.Name != "add_points" {
			continue
		}
		want := "Adds points to the player's total.\n\n        The running total is stored in points."
		if s.Docs != want {
			t.Errorf("Docs = %q, want %q", s.Docs, want)
		}
		return
	}
	t.Fatal("add_points not found")
}

func TestScanSourceIgnoresStrings(t *testing.T) {
	// A definition-looking line inside a string must not produce a symbol.
	syms := ScanSource("demo", "s.rpy", `    narrator "then he said define x = 1"`)
	if len(syms) != 0 {
		t.Errorf("found %d symbols in pure dialogue, want 0: %+v", len(syms), syms)
	}
}

func TestScanSourceColumn(t *testing.T) {
	syms := ScanSource("demo", "s.rpy", "    def helper(x):")
	if len(syms) != 1 {
		t.Fatalf("found %d symbols, want 1", len(syms))
	}
	if syms[0].Column != 8 {
		t.Errorf("Column = %d, want 8", syms[0].Column)
	}
}

func TestSymbolRange(t *testing.T) {
	s := Symbol{Name: "helper", Path: "game/script.rpy", Line: 3, Column: 8}
	want := "game/script.rpy:3;8-14"
	if got := s.Range(); got != want {
		t.Errorf("Range() = %q, want %q", got, want)
	}
}

func TestNewSymbolNormalizesDocs(t *testing.T) {
	s := NewSymbol(Symbol{Name: "f", Docs: `Shows \"text\".`})
	if s.Docs != `Shows "text".` {
		t.Errorf("Docs = %q, escaped quotes should be normalized at construction", s.Docs)
	}
}

func TestExtractDocstringSingleLine(t *testing.T) {
	lines := []string{"def f():", `    """One line."""`, "    pass"}
	if got := extractDocstring(lines, 1); got != "One line." {
		t.Errorf("extractDocstring() = %q, want %q", got, "One line.")
	}
}

func TestExtractDocstringAbsent(t *testing.T) {
	lines := []string{"def f():", "    return 1"}
	if got := extractDocstring(lines, 1); got != "" {
		t.Errorf("extractDocstring() = %q, want empty", got)
	}
}
