package pegrt_test

import (
	"testing"

	"github.com/funvibe/peggen/pkg/pegrt"
)

func identAtoms(names ...string) []pegrt.Atom {
	atoms := make([]pegrt.Atom, len(names))
	for i, n := range names {
		atoms[i] = pegrt.Atom{Class: pegrt.ClassIdent, Text: n, Pos: i * 10}
	}
	return atoms
}

func TestAttemptBacktracksOnFailure(t *testing.T) {
	c := pegrt.NewCursor(identAtoms("a", "b"))

	_, ok, err := pegrt.Attempt(c, pegrt.ParseInt) // atoms are idents, never ints: always fails
	if err != nil || ok {
		t.Fatalf("got ok=%v err=%v, want ok=false err=nil", ok, err)
	}
	if c.Pos() != 0 {
		t.Fatalf("cursor advanced on failed attempt: pos=%d", c.Pos())
	}

	v, ok, err := pegrt.Attempt(c, pegrt.ParseIdent)
	if err != nil || !ok || v != "a" {
		t.Fatalf("got v=%q ok=%v err=%v", v, ok, err)
	}
	if c.Pos() != 1 {
		t.Fatalf("cursor did not advance on successful attempt: pos=%d", c.Pos())
	}
}

func TestAttemptPropagatesFatal(t *testing.T) {
	c := pegrt.NewCursor(identAtoms("a"))

	_, ok, err := pegrt.Attempt(c, func(c *pegrt.Cursor) (struct{}, error) {
		c.SetFatal(true)
		return struct{}{}, pegrt.NewError(c, "boom")
	})
	if ok {
		t.Fatal("expected failure")
	}
	if err == nil {
		t.Fatal("fatal failure should propagate as an error, not a soft no-match")
	}
	if !c.CheckFatal() {
		t.Fatal("fatal flag should remain set on the parent cursor")
	}
}

func TestAttemptRecoverIgnoresFatal(t *testing.T) {
	c := pegrt.NewCursor(identAtoms("a"))
	c.SetFatal(true) // simulate a prior cut already committed

	_, ok := pegrt.AttemptRecover(c, func(c *pegrt.Cursor) (struct{}, error) {
		return struct{}{}, pegrt.NewError(c, "inner failure")
	})
	if ok {
		t.Fatal("expected recovery attempt to fail")
	}
	if !c.CheckFatal() {
		t.Fatal("recover must restore the pre-existing fatal state, not clear it")
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	c := pegrt.NewCursor(identAtoms("a", "b"))
	if !pegrt.Peek(c, pegrt.ParseIdent) {
		t.Fatal("expected peek to succeed")
	}
	if c.Pos() != 0 {
		t.Fatalf("peek consumed input: pos=%d", c.Pos())
	}
}

func TestNotCheck(t *testing.T) {
	c := pegrt.NewCursor(identAtoms("a"))
	if pegrt.NotCheck(c, pegrt.ParseIdent) {
		t.Fatal("NotCheck should fail when the inner parser would succeed")
	}
	if !pegrt.NotCheck(c, pegrt.ParseInt) {
		t.Fatal("NotCheck should succeed when the inner parser would fail")
	}
}

func TestSkipUntil(t *testing.T) {
	atoms := identAtoms("a", "b", "stop", "c")
	c := pegrt.NewCursor(atoms)
	pegrt.SkipUntil(c, func(c *pegrt.Cursor) bool {
		return pegrt.Peek(c, func(c *pegrt.Cursor) (string, error) {
			s, err := pegrt.ParseIdent(c)
			if err == nil && s != "stop" {
				return "", pegrt.NewError(c, "not stop")
			}
			return s, err
		})
	})
	if c.Pos() != 2 {
		t.Fatalf("got pos=%d, want 2 (stopped at 'stop')", c.Pos())
	}
}

func TestRepeatedCollectsZeroOrMore(t *testing.T) {
	c := pegrt.NewCursor(identAtoms("a", "b", "c"))
	sink, err := pegrt.Repeated[string](c, &pegrt.SliceSink[string]{}, pegrt.ParseIdent)
	if err != nil {
		t.Fatal(err)
	}
	if got := sink.Items(); len(got) != 3 {
		t.Fatalf("got %v, want 3 items", got)
	}
	if !c.IsEmpty() {
		t.Fatal("expected cursor exhausted")
	}
}

func TestRepeatedPlusRequiresOne(t *testing.T) {
	c := pegrt.NewCursor(nil)
	_, err := pegrt.RepeatedPlus[string](c, &pegrt.SliceSink[string]{}, pegrt.ParseIdent)
	if err == nil {
		t.Fatal("expected an error on empty input")
	}
}

func TestSeparatedStopsWhenSeparatorMissing(t *testing.T) {
	atoms := []pegrt.Atom{
		{Class: pegrt.ClassIdent, Text: "a"},
		{Class: pegrt.ClassPunct, Text: ","},
		{Class: pegrt.ClassIdent, Text: "b"},
	}
	c := pegrt.NewCursor(atoms)
	comma := func(c *pegrt.Cursor) (struct{}, error) {
		a, ok := c.Advance()
		if !ok || a.Class != pegrt.ClassPunct || a.Text != "," {
			return struct{}{}, pegrt.NewError(c, "expected ','")
		}
		return struct{}{}, nil
	}
	sink, err := pegrt.Separated[string](c, &pegrt.SliceSink[string]{}, pegrt.ParseIdent, comma)
	if err != nil {
		t.Fatal(err)
	}
	items := sink.Items()
	if len(items) != 2 || items[0] != "a" || items[1] != "b" {
		t.Fatalf("got %v", items)
	}
}

func TestDeepErrorWinsOverShallow(t *testing.T) {
	atoms := identAtoms("a", "b", "c")
	c := pegrt.NewCursor(atoms)

	// Shallow failure: fails at the start position, no progress made.
	pegrt.Attempt(c, func(c *pegrt.Cursor) (struct{}, error) {
		return struct{}{}, pegrt.NewError(c, "shallow")
	})
	// Deep failure: consumes one atom before failing.
	pegrt.Attempt(c, func(c *pegrt.Cursor) (struct{}, error) {
		c.Advance()
		return struct{}{}, pegrt.NewError(c, "deep")
	})

	best := c.TakeBestError()
	if best == nil || best.Message != "deep" {
		t.Fatalf("got %v, want the deep error to win", best)
	}
}

func TestForkIsolatesProgressUntilAdvanceTo(t *testing.T) {
	c := pegrt.NewCursor(identAtoms("a", "b"))
	fork := c.Fork()
	fork.Advance()
	if c.Pos() != 0 {
		t.Fatalf("parent cursor mutated by fork: pos=%d", c.Pos())
	}
	c.AdvanceTo(fork)
	if c.Pos() != 1 {
		t.Fatalf("AdvanceTo did not commit fork progress: pos=%d", c.Pos())
	}
}
