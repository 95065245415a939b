// Package utils holds small path-resolution helpers used by
// internal/model. Adapted from a sibling-path resolver originally used to
// resolve a script's `import` path relative to the importing file's
// directory; repurposed here to resolve a grammar's `parent` name (the
// supplemental inheritance feature) against the child grammar file's own
// directory instead of a module import.
package utils

import (
	"path/filepath"
	"strings"

	"github.com/funvibe/peggen/internal/config"
)

// ResolveParentGrammarPath returns the file path of a grammar's parent,
// given the child grammar's own file path and the parent's bare name from
// `grammar Child : Parent { ... }`. The parent is expected to live
// alongside the child as "<Parent><config.SourceFileExt>".
func ResolveParentGrammarPath(childPath, parentName string) string {
	return filepath.Join(filepath.Dir(childPath), parentName+config.SourceFileExt)
}

// ExtractGrammarName derives a grammar's file-system name from its path:
// the base filename with any recognized source extension stripped.
func ExtractGrammarName(path string) string {
	name := filepath.Base(path)
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
