package analysis

import "testing"

func TestUnescapeQuotes(t *testing.T) {
	got := UnescapeQuotes(`Say \"hello\" or \'hi\'.`)
	want := `Say "hello" or 'hi'.`
	if got != want {
		t.Errorf("UnescapeQuotes() = %q, want %q", got, want)
	}
}

func TestCleanDocFenceSpacing(t *testing.T) {
	got := CleanDoc("Example:\n```renpy\npause 1.0\n```")
	want := "Example:\n\n```renpy\npause 1.0\n```"
	if got != want {
		t.Errorf("CleanDoc() = %q, want %q", got, want)
	}

	// Already well-formed fences are left alone.
	ok := "Example:\n\n```renpy\npause 1.0\n```"
	if got := CleanDoc(ok); got != ok {
		t.Errorf("CleanDoc() changed well-formed input: %q", got)
	}
}

func TestCleanDocMultipleFences(t *testing.T) {
	// Only opening fences gain a blank line; closing fences stay put.
	got := CleanDoc("A:\n```\nx\n```\nB:\n```\ny\n```")
	want := "A:\n\n```\nx\n```\nB:\n\n```\ny\n```"
	if got != want {
		t.Errorf("CleanDoc() = %q, want %q", got, want)
	}
}

func TestCleanDocStripsCrossRefs(t *testing.T) {
	got := CleanDoc("See :func:`renpy.pause` and :var:`config.name`.")
	want := "See `renpy.pause` and `config.name`."
	if got != want {
		t.Errorf("CleanDoc() = %q, want %q", got, want)
	}
}

func TestCleanDocEmpty(t *testing.T) {
	if got := CleanDoc(""); got != "" {
		t.Errorf("CleanDoc(\"\") = %q, want empty", got)
	}
}
