// Package config is the single source of truth for constants shared across
// the lexer, parser, analyzer, and emitter. When adding a new primitive or
// reserved word, update this file; the meta-primitives and the
// separated/repeated pseudo-rules are also matched by name in
// internal/emitter/pattern.go.
package config

const SourceFileExt = ".peg"

// Version is stamped into the cache key (internal/cache) so a peggen
// upgrade invalidates every previously cached grammar without needing to
// touch the cache file.
const Version = "0.1.0"

// SourceFileExtensions are all recognized grammar file extensions.
var SourceFileExtensions = []string{".peg", ".grammar"}

// WildcardSymbol marks a literal token class that matches any token
// (used by analyzer.CollectCustomKeywords, spec §4.1.1, to skip the
// wildcard instead of recording it as a custom keyword).
const WildcardSymbol = "_"

// ReservedHostKeywords are identifiers the literal resolver (spec §4.1.2)
// maps to a Go `token.XXX`-shaped type rather than treating as a custom
// keyword, mirroring how `syn`'s `Token![ident]` macro only accepts the
// host language's reserved words.
var ReservedHostKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// PrimitiveRules are rule names the emitter resolves directly to a runtime
// call instead of a user-defined `parse_<name>_impl` (spec §4.3.4).
// PrimitiveCast (below) names the Go width each narrower primitive casts
// down to from pegrt's int64/uint64/float64-returning runtime calls:
// pegrt.ParseInt, pegrt.ParseUint and pegrt.ParseFloat stay concrete,
// non-generic functions, and the
// emitter inserts the narrowing conversion at the call site rather than the
// runtime library carrying one instantiation per width.
var PrimitiveRules = map[string]string{
	"ident":       "pegrt.ParseIdent",
	"integer":     "pegrt.ParseInt",
	"i8":          "pegrt.ParseInt",
	"i16":         "pegrt.ParseInt",
	"i32":         "pegrt.ParseInt",
	"i64":         "pegrt.ParseInt",
	"u8":          "pegrt.ParseUint",
	"u16":         "pegrt.ParseUint",
	"u32":         "pegrt.ParseUint",
	"u64":         "pegrt.ParseUint",
	"usize":       "pegrt.ParseUint",
	"f32":         "pegrt.ParseFloat",
	"f64":         "pegrt.ParseFloat",
	"string":      "pegrt.ParseString",
	"lit_int":     "pegrt.ParseInt",
	"lit_bool":    "pegrt.ParseBool",
	"lit_str":     "pegrt.ParseString",
	"any_byte":    "pegrt.AnyByte",
}

// PrimitiveCast is the Go width a primitive rule's pegrt result must be cast
// to, keyed the same as PrimitiveRules; a primitive absent here needs no cast
// (pegrt's return type already matches).
var PrimitiveCast = map[string]string{
	"integer": "int64", "i8": "int8", "i16": "int16", "i32": "int32", "i64": "int64",
	"u8": "uint8", "u16": "uint16", "u32": "uint32", "u64": "uint64", "usize": "uint",
	"f32": "float32", "f64": "float64", "lit_int": "int64",
}

// MetaPrimitives are zero/one-argument primitives emitted inline rather
// than as a function call (spec §4.3.4: eof, fail, whitespace, alpha, ...).
var MetaPrimitives = map[string]bool{
	"eof": true, "fail": true, "whitespace": true,
	"alpha": true, "digit": true, "alphanumeric": true,
	"hex_digit": true, "oct_digit": true,
}
