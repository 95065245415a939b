package pegrt

// Attempt runs parse on a fork of c, committing the fork's progress back to
// c only on success. On failure it records a (possibly deep) error into
// the shared best-error register and reports ok=false rather than
// returning the error — unless parse raised the cut flag, in which case
// the fatal flag propagates and the error is returned.
func Attempt[T any](c *Cursor, parse func(*Cursor) (T, error)) (val T, ok bool, err error) {
	wasFatal := c.st.fatal
	c.st.fatal = false
	start := c.byteOffset()

	fork := c.Fork()
	v, perr := parse(fork)
	nowFatal := c.st.fatal

	if perr == nil {
		c.AdvanceTo(fork)
		c.st.fatal = wasFatal
		return v, true, nil
	}
	if nowFatal {
		c.st.fatal = true
		var zero T
		return zero, false, perr
	}
	c.st.fatal = wasFatal
	c.recordError(asError(perr, c), start)
	var zero T
	return zero, false, nil
}

// AttemptRecover is like Attempt but always swallows the inner fatal flag:
// its purpose is explicitly to resume after a failure (spec §3.4's Recover
// pattern), so a cut inside the failed body must not abort the recovery.
func AttemptRecover[T any](c *Cursor, parse func(*Cursor) (T, error)) (val T, ok bool) {
	wasFatal := c.st.fatal
	c.st.fatal = false
	start := c.byteOffset()

	fork := c.Fork()
	v, perr := parse(fork)
	c.st.fatal = wasFatal

	if perr == nil {
		c.AdvanceTo(fork)
		return v, true
	}
	c.recordError(asError(perr, c), start)
	var zero T
	return zero, false
}

// Peek reports whether parse would succeed from c's current position,
// without consuming any input (spec §3.4's Peek pattern).
func Peek[T any](c *Cursor, parse func(*Cursor) (T, error)) bool {
	fork := c.Fork()
	_, err := parse(fork)
	return err == nil
}

// NotCheck reports whether parse would fail from c's current position,
// without consuming any input (spec §3.4's Not pattern).
func NotCheck[T any](c *Cursor, parse func(*Cursor) (T, error)) bool {
	return !Peek(c, parse)
}

// SkipUntil advances c one atom at a time until predicate matches or the
// stream is exhausted; generated code uses it for the Recover pattern's
// skip to its synchronization point.
func SkipUntil(c *Cursor, predicate func(*Cursor) bool) {
	for !c.IsEmpty() && !predicate(c) {
		if _, ok := c.Advance(); !ok {
			break
		}
	}
}

func asError(err error, c *Cursor) *Error {
	if pe, ok := err.(*Error); ok {
		return pe
	}
	return NewError(c, err.Error())
}

// Sink is the append-only container contract separated/repeated accumulate
// into. SPEC_FULL's custom-container extension (§4.3.4: "container type may
// be supplied via type argument, default slice") lets a grammar collect
// into anything satisfying this instead of always building a []T.
type Sink[T any] interface {
	Append(v T)
}

// SliceSink is the default Sink, backing a plain Go slice.
type SliceSink[T any] struct{ items []T }

func (s *SliceSink[T]) Append(v T) { s.items = append(s.items, v) }

// Items returns the accumulated slice.
func (s *SliceSink[T]) Items() []T { return s.items }

// Repeated accumulates zero or more parse results into sink (spec §3.4's
// Repeat pattern, `*` suffix), stopping at the first failed attempt.
func Repeated[T any, S Sink[T]](c *Cursor, sink S, parse func(*Cursor) (T, error)) (S, error) {
	for {
		v, ok, err := Attempt(c, parse)
		if err != nil {
			var zero S
			return zero, err
		}
		if !ok {
			return sink, nil
		}
		sink.Append(v)
	}
}

// RepeatedPlus accumulates one or more parse results (spec §3.4's Plus
// pattern, `+` suffix), failing if the first attempt fails.
func RepeatedPlus[T any, S Sink[T]](c *Cursor, sink S, parse func(*Cursor) (T, error)) (S, error) {
	v, ok, err := Attempt(c, parse)
	if err != nil {
		var zero S
		return zero, err
	}
	if !ok {
		var zero S
		return zero, NewError(c, "expected at least one match")
	}
	sink.Append(v)
	return Repeated(c, sink, parse)
}

// Separated accumulates parse results divided by sep, stopping once sep
// fails to match (spec §4.3.4's `separated` pseudo-rule).
func Separated[T any, S Sink[T]](c *Cursor, sink S, parse func(*Cursor) (T, error), sep func(*Cursor) (struct{}, error)) (S, error) {
	v, ok, err := Attempt(c, parse)
	if err != nil {
		var zero S
		return zero, err
	}
	if !ok {
		return sink, nil
	}
	sink.Append(v)

	for {
		_, sepOK, sepErr := Attempt(c, sep)
		if sepErr != nil {
			var zero S
			return zero, sepErr
		}
		if !sepOK {
			return sink, nil
		}
		v, ok, err := Attempt(c, parse)
		if err != nil {
			var zero S
			return zero, err
		}
		if !ok {
			return sink, nil
		}
		sink.Append(v)
	}
}
