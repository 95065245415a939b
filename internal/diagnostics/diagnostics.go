package diagnostics

import (
	"fmt"

	"github.com/funvibe/peggen/internal/token"
)

// Phase represents the compiler stage where an error occurred.
type Phase string

const (
	PhaseLexer        Phase = "lexer"
	PhaseParser       Phase = "parser"
	PhaseModel        Phase = "model"
	PhaseAnalyzer     Phase = "analyzer"
	PhaseMonomorphize Phase = "monomorphize"
	PhaseEmitter      Phase = "emitter"
)

type ErrorCode string

// Error codes for the peggen compiler itself (spec §7, first list: "Error
// kinds produced by the core generator"). Errors the *emitted* parser can
// raise at the target program's runtime are a distinct type, pegrt.Error,
// since they never pass through this compiler's diagnostic surface.
const (
	ErrL001 ErrorCode = "L001" // invalid character

	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // expected identifier
	ErrP003 ErrorCode = "P003" // could not parse literal
	ErrP004 ErrorCode = "P004" // no prefix parse function for pattern start
	ErrP005 ErrorCode = "P005" // expected closing delimiter

	ErrM001 ErrorCode = "M001" // duplicate rule
	ErrM002 ErrorCode = "M002" // undefined rule
	ErrM003 ErrorCode = "M003" // argument-count mismatch
	ErrM004 ErrorCode = "M004" // named-argument misuse
	ErrM005 ErrorCode = "M005" // invalid literal (bare delimiter / bool / leading digit)
	ErrM006 ErrorCode = "M006" // ill-formed recover
	ErrM007 ErrorCode = "M007" // ill-formed until (binding inside pattern)
	ErrM008 ErrorCode = "M008" // parent grammar resolution failed

	ErrA001 ErrorCode = "A001" // indirect left recursion
	ErrA002 ErrorCode = "A002" // left-recursive rule with no base variant
	ErrA003 ErrorCode = "A003" // shadowing / ambiguity
	ErrA004 ErrorCode = "A004" // unreachable (unused) rule
	ErrA005 ErrorCode = "A005" // duplicate cut in one variant

	ErrE001 ErrorCode = "E001" // internal codegen failure
	ErrE002 ErrorCode = "E002" // generated source failed to gofmt/parse
)

var errorTemplates = map[ErrorCode]string{
	ErrL001: "invalid character: '%s'",
	ErrP001: "unexpected token: expected '%s', but got '%s'",
	ErrP002: "expected an identifier, got '%s'",
	ErrP003: "could not parse '%s' as a literal",
	ErrP004: "cannot parse pattern starting with '%s'",
	ErrP005: "expected closing '%s'",

	ErrM001: "duplicate rule: '%s'",
	ErrM002: "undefined rule: '%s'",
	ErrM003: "rule '%s' expects %d argument(s), got %d",
	ErrM004: "named argument misuse: %s",
	ErrM005: "invalid literal '%s': %s",
	ErrM006: "ill-formed recover: %s",
	ErrM007: "until pattern may not contain bindings: %s",
	ErrM008: "parent grammar resolution failed: %s",

	ErrA001: "indirect left recursion through rule '%s'",
	ErrA002: "rule '%s' has recursive variants but no base variant",
	ErrA003: "variant %d of rule '%s' shadows variant %d (same first-set prefix)",
	ErrA004: "rule '%s' is unreachable from any public rule or 'main'",
	ErrA005: "variant of rule '%s' contains more than one cut",

	ErrE001: "internal codegen failure: %s",
	ErrE002: "generated source is not valid Go: %s",
}

// DiagnosticError is a single compiler diagnostic: a coded message tied to
// a compiler phase and a source position.
type DiagnosticError struct {
	Code  ErrorCode
	Phase Phase
	Args  []interface{}
	Token token.Token
	File  string
}

func (e *DiagnosticError) Error() string {
	template, ok := errorTemplates[e.Code]
	if !ok {
		return fmt.Sprintf("unknown error code: %s", e.Code)
	}

	message := fmt.Sprintf(template, e.Args...)

	prefix := ""
	if e.File != "" {
		prefix = fmt.Sprintf("%s: ", e.File)
	}

	phaseStr := ""
	if e.Phase != "" {
		phaseStr = fmt.Sprintf("[%s] ", e.Phase)
	}

	if e.Token.Line > 0 {
		return fmt.Sprintf("%s%serror at %d:%d [%s]: %s", prefix, phaseStr, e.Token.Line, e.Token.Column, e.Code, message)
	}
	return fmt.Sprintf("%s%serror [%s]: %s", prefix, phaseStr, e.Code, message)
}

// NewError creates an error with just a code and token.
func NewError(code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Args: args}
}

// NewPhaseError creates an error tagged with the phase it was raised in.
func NewPhaseError(phase Phase, code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Phase: phase, Token: tok, Args: args}
}
