package analysis

import "testing"

func TestInferType(t *testing.T) {
	tests := []struct {
		literal string
		want    string
	}{
		{"True", TypeBoolean},
		{"False", TypeBoolean},
		{"3.14", TypeNumber},
		{"42", TypeNumber},
		{"-7", TypeNumber},
		{`"hello"`, TypeString},
		{"'hi'", TypeString},
		{"`raw`", TypeString},
		{"_translated", TypeString},
		{"[", TypeSet},
		{"[1, 2]", TypeSet},
		{"{", TypeDictionary},
		{"{'k': 1}", TypeDictionary},
		{"Foo", "Foo"},
		{"solid.Color", "solid.Color"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			got := InferType("baseclass", tt.literal)
			if got.Type != tt.want {
				t.Errorf("InferType(%q).Type = %q, want %q", tt.literal, got.Type, tt.want)
			}
			if got.Name != "baseclass" {
				t.Errorf("Name = %q, want baseclass", got.Name)
			}
		})
	}
}

func TestInferTypeOverrides(t *testing.T) {
	img := TypeOverride{Type: "image", Literals: []string{"im.", "Image("}}

	if got := InferType("bg", `im.Scale("bg.png", 100, 100)`, img); got.Type != "image" {
		t.Errorf("Type = %q, want image", got.Type)
	}
	if got := InferType("bg", `Image("bg.png")`, img); got.Type != "image" {
		t.Errorf("Type = %q, want image", got.Type)
	}

	// An override can replace a type the built-in rules already assigned.
	str := TypeOverride{Type: "filename", Literals: []string{`"`}}
	if got := InferType("path", `"script.rpy"`, str); got.Type != "filename" {
		t.Errorf("Type = %q, want filename (override wins)", got.Type)
	}

	// Non-matching overrides leave the built-in result alone.
	if got := InferType("flag", "True", img); got.Type != TypeBoolean {
		t.Errorf("Type = %q, want boolean", got.Type)
	}
}
