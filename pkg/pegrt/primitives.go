package pegrt

import (
	"strconv"
)

// ParseIdent consumes an identifier atom, allowing keywords as names too
// (spec's config.PrimitiveRules "ident" entry) — any ClassIdent or
// ClassKeyword atom qualifies.
func ParseIdent(c *Cursor) (string, error) {
	a, ok := c.current()
	if !ok || (a.Class != ClassIdent && a.Class != ClassKeyword) {
		return "", NewError(c, "expected an identifier")
	}
	c.pos++
	return a.Text, nil
}

// ParseInt consumes an integer atom and parses it as an int64, with the
// emitter narrowing to the rule's declared return width where needed.
func ParseInt(c *Cursor) (int64, error) {
	a, ok := c.current()
	if !ok || a.Class != ClassInt {
		return 0, NewError(c, "expected an integer literal")
	}
	v, err := strconv.ParseInt(a.Text, 0, 64)
	if err != nil {
		return 0, NewError(c, "invalid integer literal: "+a.Text)
	}
	c.pos++
	return v, nil
}

// ParseUint is ParseInt's unsigned counterpart, for usize/u8..u64 rules.
func ParseUint(c *Cursor) (uint64, error) {
	a, ok := c.current()
	if !ok || a.Class != ClassInt {
		return 0, NewError(c, "expected an integer literal")
	}
	v, err := strconv.ParseUint(a.Text, 0, 64)
	if err != nil {
		return 0, NewError(c, "invalid integer literal: "+a.Text)
	}
	c.pos++
	return v, nil
}

// ParseFloat consumes a float atom.
func ParseFloat(c *Cursor) (float64, error) {
	a, ok := c.current()
	if !ok || a.Class != ClassFloat {
		return 0, NewError(c, "expected a float literal")
	}
	v, err := strconv.ParseFloat(a.Text, 64)
	if err != nil {
		return 0, NewError(c, "invalid float literal: "+a.Text)
	}
	c.pos++
	return v, nil
}

// ParseString consumes a string atom, returning its unquoted content.
func ParseString(c *Cursor) (string, error) {
	a, ok := c.current()
	if !ok || a.Class != ClassString {
		return "", NewError(c, "expected a string literal")
	}
	c.pos++
	return a.Text, nil
}

// ParseBool consumes an identifier atom spelling "true" or "false" (the
// config.PrimitiveRules "lit_bool" entry).
func ParseBool(c *Cursor) (bool, error) {
	a, ok := c.current()
	if !ok || a.Class != ClassIdent {
		return false, NewError(c, "expected a boolean literal")
	}
	switch a.Text {
	case "true":
		c.pos++
		return true, nil
	case "false":
		c.pos++
		return false, nil
	default:
		return false, NewError(c, "expected 'true' or 'false'")
	}
}

// AnyByte consumes exactly one atom of any kind, for the `any_byte` primitive.
func AnyByte(c *Cursor) (Atom, error) {
	a, ok := c.current()
	if !ok {
		return Atom{}, NewError(c, "unexpected end of input")
	}
	c.pos++
	return a, nil
}

// Eof succeeds only at the end of the stream (config.MetaPrimitives "eof").
func Eof(c *Cursor) (struct{}, error) {
	if c.IsEmpty() {
		return struct{}{}, nil
	}
	return struct{}{}, NewError(c, "expected end of input")
}

// Fail always fails (config.MetaPrimitives "fail"); used as an explicit
// base-case terminator in hand-written left-recursive rules.
func Fail(c *Cursor) (struct{}, error) {
	return struct{}{}, NewError(c, "fail")
}

// Whitespace matches a single whitespace-text atom, for token models where
// whitespace survives as its own atom (config.MetaPrimitives "whitespace").
func Whitespace(c *Cursor) (struct{}, error) {
	a, ok := c.current()
	if !ok || len(a.Text) == 0 || !isWhitespaceText(a.Text) {
		return struct{}{}, NewError(c, "expected whitespace")
	}
	c.pos++
	return struct{}{}, nil
}

func isWhitespaceText(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// Alpha, Digit, Alphanumeric, HexDigit, OctDigit match a single-character
// atom in the corresponding class (config.MetaPrimitives). These assume a
// char-granular token model; a caller tokenizing at a coarser grain (e.g.
// whole identifiers) would never reach them except inside `until`/`recover`
// synchronization patterns operating byte-at-a-time.
func Alpha(c *Cursor) (byte, error)         { return matchByteClass(c, isAlphaByte, "a letter") }
func Digit(c *Cursor) (byte, error)         { return matchByteClass(c, isDigitByte, "a digit") }
func Alphanumeric(c *Cursor) (byte, error) {
	return matchByteClass(c, func(b byte) bool { return isAlphaByte(b) || isDigitByte(b) }, "a letter or digit")
}
func HexDigit(c *Cursor) (byte, error) { return matchByteClass(c, isHexByte, "a hex digit") }
func OctDigit(c *Cursor) (byte, error) { return matchByteClass(c, isOctByte, "an octal digit") }

func matchByteClass(c *Cursor, pred func(byte) bool, desc string) (byte, error) {
	a, ok := c.current()
	if !ok || len(a.Text) != 1 || !pred(a.Text[0]) {
		return 0, NewError(c, "expected "+desc)
	}
	c.pos++
	return a.Text[0], nil
}

func isAlphaByte(b byte) bool { return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' }
func isDigitByte(b byte) bool { return '0' <= b && b <= '9' }
func isHexByte(b byte) bool {
	return isDigitByte(b) || ('a' <= b && b <= 'f') || ('A' <= b && b <= 'F')
}
func isOctByte(b byte) bool { return '0' <= b && b <= '7' }
