package document

import "testing"

func TestNew(t *testing.T) {
	d := New("first\nsecond\r\nthird")

	if d.LineCount() != 3 {
		t.Fatalf("LineCount() = %d, want 3", d.LineCount())
	}
	if d.Line(1) != "second" {
		t.Errorf("Line(1) = %q, want %q (CR should be stripped)", d.Line(1), "second")
	}
	if d.Line(2) != "third" {
		t.Errorf("Line(2) = %q, want %q", d.Line(2), "third")
	}
}

func TestLineOutOfRange(t *testing.T) {
	d := New("only")

	if got := d.Line(-1); got != "" {
		t.Errorf("Line(-1) = %q, want empty", got)
	}
	if got := d.Line(5); got != "" {
		t.Errorf("Line(5) = %q, want empty", got)
	}
}

func TestEmptyText(t *testing.T) {
	d := New("")

	if d.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1 (empty text is one empty line)", d.LineCount())
	}
	if d.Line(0) != "" {
		t.Errorf("Line(0) = %q, want empty", d.Line(0))
	}
}
