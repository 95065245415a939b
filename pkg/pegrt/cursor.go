// Package pegrt is the runtime library every generated parser imports: the
// cursor type over an already-tokenized atom stream, the fork/attempt/peek
// backtracking primitives, the fatal-commit flag, the best-error register,
// and the separated/repeated combinators (spec §4.4, §5, §6, §8).
package pegrt

// TokenClass classifies an Atom the way the host token model's `peek(class)`
// contract (spec §6) expects.
type TokenClass int

const (
	ClassIdent TokenClass = iota
	ClassString
	ClassInt
	ClassFloat
	ClassPunct
	ClassKeyword
	ClassGroup
	ClassEOF
)

// DelimKind is the bracket flavor of a delimited sub-stream, mirroring
// gast.DelimKind/model.DelimKind for the generated code's own use.
type DelimKind int

const (
	Bracketed DelimKind = iota
	Braced
	Parenthesized
)

// Atom is one token tree in the already-tokenized input stream: either a
// leaf (ident/string/int/float/punct/keyword) or a delimited group holding
// its own inner atom slice (spec §6: "delimited helpers that split a
// delimited group's inner content into a new cursor").
type Atom struct {
	Class   TokenClass
	Text    string
	Pos     int // byte offset, used for deep-error comparison
	Line    int
	Column  int
	Delim   DelimKind
	Inner   []Atom // populated only when Class == ClassGroup
}

// Span is a half-open byte-offset range.
type Span struct {
	Start, End int
}

// Error is a parse failure raised by generated code or a pegrt primitive.
// Distinct from internal/diagnostics.DiagnosticError: that type never
// leaves the compiler, this one is raised by the *emitted* parser at the
// target program's runtime (spec §7: "two distinct error surfaces").
type Error struct {
	Pos     int
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil pegrt.Error>"
	}
	return e.Message
}

// NewError constructs a pegrt.Error positioned at the cursor's current atom.
func NewError(c *Cursor, msg string) *Error {
	pos, line, col := c.byteOffset(), c.Line(), c.Column()
	if a, ok := c.current(); ok {
		pos, line, col = a.Pos, a.Line, a.Column
	}
	return &Error{Pos: pos, Line: line, Column: col, Message: msg}
}

type bestError struct {
	err  *Error
	deep bool
}

type sharedState struct {
	fatal   bool
	bestErr *bestError
}

// Cursor is the concrete token-tree cursor generated parsers operate on.
// Forking shares the backing atom slice and the fatal/best-error state
// (a *sharedState pointer) with the parent, so recording a deep error or
// raising a cut inside a forked attempt is visible to the top-level parse,
// without reaching for a package-level global that would leak across
// concurrent parses in the same process.
type Cursor struct {
	atoms []Atom
	pos   int
	st    *sharedState
}

// NewCursor creates a top-level cursor over a fully tokenized atom slice.
func NewCursor(atoms []Atom) *Cursor {
	return &Cursor{atoms: atoms, st: &sharedState{}}
}

func (c *Cursor) current() (Atom, bool) {
	if c.pos >= len(c.atoms) {
		return Atom{}, false
	}
	return c.atoms[c.pos], true
}

// IsEmpty reports whether the cursor has no more atoms.
func (c *Cursor) IsEmpty() bool { return c.pos >= len(c.atoms) }

// Pos returns the cursor's progress marker, comparable across forks of the
// same top-level cursor (spec §6: "cursor() for equality checks of progress").
func (c *Cursor) Pos() int { return c.pos }

// Line and Column report the position of the atom the cursor is about to
// read, or of the last atom if the stream is exhausted.
func (c *Cursor) Line() int {
	if a, ok := c.current(); ok {
		return a.Line
	}
	if len(c.atoms) > 0 {
		return c.atoms[len(c.atoms)-1].Line
	}
	return 0
}

func (c *Cursor) Column() int {
	if a, ok := c.current(); ok {
		return a.Column
	}
	if len(c.atoms) > 0 {
		return c.atoms[len(c.atoms)-1].Column
	}
	return 0
}

// Span reports the byte range covered by the atom at the cursor's position.
func (c *Cursor) Span() Span {
	a, ok := c.current()
	if !ok {
		return Span{Start: c.byteOffset(), End: c.byteOffset()}
	}
	return Span{Start: a.Pos, End: a.Pos + len(a.Text)}
}

func (c *Cursor) byteOffset() int {
	if len(c.atoms) == 0 {
		return 0
	}
	if c.pos < len(c.atoms) {
		return c.atoms[c.pos].Pos
	}
	last := c.atoms[len(c.atoms)-1]
	return last.Pos + len(last.Text)
}

// Fork creates a speculative copy sharing the fatal flag and best-error
// register with c.
func (c *Cursor) Fork() *Cursor {
	return &Cursor{atoms: c.atoms, pos: c.pos, st: c.st}
}

// AdvanceTo commits a fork's progress back onto c (spec §6: "advance_to(fork)").
func (c *Cursor) AdvanceTo(fork *Cursor) { c.pos = fork.pos }

// Advance consumes and returns the current atom.
func (c *Cursor) Advance() (Atom, bool) {
	a, ok := c.current()
	if ok {
		c.pos++
	}
	return a, ok
}

// Peek reports whether the current atom matches class, without consuming it.
func (c *Cursor) Peek(class TokenClass) bool {
	a, ok := c.current()
	return ok && a.Class == class
}

// Delimited splits a delimited group atom into a fresh cursor over its
// inner content, failing if the current atom isn't a group of kind. The
// sub-cursor shares c's fatal flag and best-error register.
func (c *Cursor) Delimited(kind DelimKind) (*Cursor, bool) {
	a, ok := c.current()
	if !ok || a.Class != ClassGroup || a.Delim != kind {
		return nil, false
	}
	c.pos++
	return &Cursor{atoms: a.Inner, st: c.st}, true
}

// SetFatal toggles the cut-commit flag (spec §6's fatal flag: once set, an
// enclosing attempt stops backtracking and propagates the error instead).
func (c *Cursor) SetFatal(v bool) { c.st.fatal = v }

// CheckFatal reports the current cut-commit flag.
func (c *Cursor) CheckFatal() bool { return c.st.fatal }

// recordError updates the best-error register: an error is deep when its
// byte offset differs from the attempt's starting byte offset (compared by
// offset rather than formatted span text). A deep error replaces a shallow
// one; otherwise the first recorded error is kept.
func (c *Cursor) recordError(err *Error, startPos int) {
	isDeep := err.Pos != startPos
	if c.st.bestErr == nil || (isDeep && !c.st.bestErr.deep) {
		c.st.bestErr = &bestError{err: err, deep: isDeep}
	}
}

// TakeBestError returns and clears the error held by the best-error register.
func (c *Cursor) TakeBestError() *Error {
	if c.st.bestErr == nil {
		return nil
	}
	err := c.st.bestErr.err
	c.st.bestErr = nil
	return err
}
