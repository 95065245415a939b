package utils

import "testing"

func TestResolveParentGrammarPath(t *testing.T) {
	tests := []struct {
		childPath, parentName, expected string
	}{
		{"grammars/Child.peg", "Base", "grammars/Base.peg"},
		{"Child.peg", "Base", "Base.peg"},
		{"/abs/path/Child.peg", "Shared", "/abs/path/Shared.peg"},
	}

	for _, tt := range tests {
		t.Run(tt.childPath, func(t *testing.T) {
			got := ResolveParentGrammarPath(tt.childPath, tt.parentName)
			if got != tt.expected {
				t.Errorf("ResolveParentGrammarPath(%q, %q) = %q; want %q", tt.childPath, tt.parentName, got, tt.expected)
			}
		})
	}
}

func TestExtractGrammarName(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"simple.peg", "simple"},
		{"path/to/Grammar.peg", "Grammar"},
		{"name.with.dots.peg", "name.with.dots"},
		{"module.grammar", "module"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := ExtractGrammarName(tt.path)
			if got != tt.expected {
				t.Errorf("ExtractGrammarName(%q) = %q; want %q", tt.path, got, tt.expected)
			}
		})
	}
}
