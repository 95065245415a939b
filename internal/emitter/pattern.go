package emitter

import (
	"fmt"
	"strings"

	"github.com/funvibe/peggen/internal/analyzer"
	"github.com/funvibe/peggen/internal/config"
	"github.com/funvibe/peggen/internal/model"
)

// generateSequence emits a rule variant's body: its steps followed by the
// action expression (spec §4.3.4's entry point, wrapping the per-step
// statements with a trailing return of the action value). cv names the
// cursor variable in scope — "c" for every rule body and every generated
// closure, since each closure declares its own parameter of that name.
func generateSequence(gc *genCtx, seq []model.Pattern, action, retType, cv string) (string, error) {
	steps, err := generateSequenceSteps(gc, seq, retType, cv)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(steps)
	fmt.Fprintf(&b, "return %s, nil\n", action)
	return b.String(), nil
}

// generateSequenceSteps concatenates the per-pattern statements for seq,
// without a trailing return (used both for whole variants and for a cut's
// pre/post halves separately, spec §4.3.2).
func generateSequenceSteps(gc *genCtx, seq []model.Pattern, retType, cv string) (string, error) {
	var b strings.Builder
	for _, p := range seq {
		step, err := generatePatternStep(gc, p, retType, cv)
		if err != nil {
			return "", err
		}
		b.WriteString(step)
	}
	return b.String(), nil
}

func zeroReturn(retType string) string {
	return fmt.Sprintf("var zero %s\nreturn zero, err\n", retType)
}

// generatePatternStep emits the statements for one pattern, per the
// per-kind rules spec §4.3.4 lists. retType is the enclosing closure's
// return type, needed only to build a well-typed zero value on failure. cv
// is the variable holding the cursor this step advances — ordinarily "c",
// but the sub-cursor a Delimited group slices off when this step sits
// inside one.
func generatePatternStep(gc *genCtx, p model.Pattern, retType, cv string) (string, error) {
	switch n := p.(type) {
	case *model.Cut:
		// Consumed structurally by the rule-level cut split (rule.go);
		// a Cut reached here (inside a Group alternative) is a no-op.
		return "", nil

	case *model.Literal:
		return generateLiteralStep(gc, n, retType, cv)

	case *model.RuleCall:
		return generateRuleCallStep(gc, n, retType, cv)

	case *model.Group:
		return generateGroupStep(gc, n, retType, cv)

	case *model.Delimited:
		return generateDelimitedStep(gc, n, retType, cv)

	case *model.Optional:
		return generateOptionalStep(gc, n, retType, cv)

	case *model.Repeat:
		return generateRepeatStep(gc, n.Inner, retType, cv, false)

	case *model.Plus:
		return generateRepeatStep(gc, n.Inner, retType, cv, true)

	case *model.SpanBinding:
		return generateSpanBindingStep(gc, n, retType, cv)

	case *model.Recover:
		return generateRecoverStep(gc, n, retType, cv)

	case *model.Peek:
		return generatePeekStep(gc, n, retType, cv)

	case *model.Not:
		return generateNotStep(gc, n, retType, cv)

	case *model.Until:
		return generateUntilStep(gc, n, retType, cv)

	default:
		return "", fmt.Errorf("emitter: unhandled pattern kind %T", p)
	}
}

// generateLiteralStep matches spec §4.3.4's Literal rule: parse each
// resolved token type in order, checking byte-adjacency between tokens 2+,
// binding either the lone token's text or a tuple of them.
func generateLiteralStep(gc *genCtx, n *model.Literal, retType, cv string) (string, error) {
	refs := gc.analysis.ResolvedLits[n]
	var b strings.Builder
	vars := make([]string, len(refs))

	for i, ref := range refs {
		v := gc.fresh("lit")
		vars[i] = v
		fmt.Fprintf(&b, "%s, ok := %s.Advance()\n", v, cv)
		fmt.Fprintf(&b, "if !ok || %s {\n", literalMismatchCond(v, ref))
		fmt.Fprintf(&b, "\terr := pegrt.NewError(%s, %q)\n", cv, "expected '"+n.Lit+"'")
		b.WriteString("\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t"))
		b.WriteString("}\n")
		if i > 0 {
			prev := vars[i-1]
			fmt.Fprintf(&b, "if %s.Pos+len(%s.Text) != %s.Pos {\n", prev, prev, v)
			fmt.Fprintf(&b, "\terr := pegrt.NewError(%s, %q)\n", cv, "expected '"+n.Lit+"', found space between tokens")
			b.WriteString("\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t"))
			b.WriteString("}\n")
		}
	}

	if n.HasBinding() {
		if len(vars) <= 1 {
			if len(vars) == 1 {
				fmt.Fprintf(&b, "%s := %s.Text\n", n.Binding, vars[0])
			} else {
				fmt.Fprintf(&b, "%s := %q\n", n.Binding, n.Lit)
			}
		} else {
			texts := make([]string, len(vars))
			for i, v := range vars {
				texts[i] = v + ".Text"
			}
			fmt.Fprintf(&b, "%s := [%d]string{%s}\n", n.Binding, len(vars), strings.Join(texts, ", "))
		}
	}
	return b.String(), nil
}

func literalMismatchCond(varName string, ref analyzer.TokenTypeRef) string {
	switch ref.Kind {
	case analyzer.KindPunct:
		return fmt.Sprintf("%s.Class != pegrt.ClassPunct || %s.Text != %q", varName, varName, string(ref.Punct))
	default: // KindHostKeyword, KindCustomKeyword: both surface as an ident/keyword atom
		return fmt.Sprintf("(%s.Class != pegrt.ClassIdent && %s.Class != pegrt.ClassKeyword) || %s.Text != %q",
			varName, varName, varName, ref.Keyword)
	}
}

// generateRuleCallStep handles both user-rule calls and the primitive/
// meta-primitive/pseudo-rule table from spec §4.3.4.
func generateRuleCallStep(gc *genCtx, n *model.RuleCall, retType, cv string) (string, error) {
	switch n.Name {
	case "eof":
		return generateMetaEof(gc, n, retType, cv)
	case "fail":
		return generateMetaFail(retType, cv)
	case "whitespace":
		return generateMetaWhitespace(gc, n, retType, cv)
	case "separated":
		return generateSeparatedStep(gc, n, retType, cv)
	case "repeated":
		return generateRepeatedCallStep(gc, n, retType, cv)
	}
	if config.MetaPrimitives[n.Name] {
		return generateByteClassStep(gc, n, retType, cv)
	}
	if fn, ok := config.PrimitiveRules[n.Name]; ok {
		return generatePrimitiveCallStep(gc, n, fn, retType, cv)
	}

	var b strings.Builder
	v := gc.fresh("call")
	args := make([]string, 0, len(n.ValueArgs)+1)
	args = append(args, cv)
	for _, arg := range n.ValueArgs {
		// A surviving ValueArg here is a *typed* value parameter (spec
		// §4.2: only untyped/pattern parameters get erased by
		// monomorphization); its pattern is evaluated inline for the value
		// to forward positionally into the callee's typed parameter list.
		argVar := gc.fresh("arg")
		step, err := generatePatternStep(gc, bindAs(arg, argVar), retType, cv)
		if err != nil {
			return "", err
		}
		b.WriteString(step)
		args = append(args, argVar)
	}
	fmt.Fprintf(&b, "%s, err := %s(%s)\n", v, goIdent(n.Name), strings.Join(args, ", "))
	b.WriteString("if err != nil {\n\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t") + "}\n")
	if n.HasBinding() {
		fmt.Fprintf(&b, "%s := %s\n", n.Binding, v)
	}
	return b.String(), nil
}

func generatePrimitiveCallStep(gc *genCtx, n *model.RuleCall, fn, retType, cv string) (string, error) {
	var b strings.Builder
	v := gc.fresh("prim")
	fmt.Fprintf(&b, "%s, err := %s(%s)\n", v, fn, cv)
	b.WriteString("if err != nil {\n\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t") + "}\n")
	if n.HasBinding() {
		if cast, ok := config.PrimitiveCast[n.Name]; ok {
			fmt.Fprintf(&b, "%s := %s(%s)\n", n.Binding, cast, v)
		} else {
			fmt.Fprintf(&b, "%s := %s\n", n.Binding, v)
		}
	}
	return b.String(), nil
}

func generateMetaEof(gc *genCtx, n *model.RuleCall, retType, cv string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "if _, err := pegrt.Eof(%s); err != nil {\n\t%s}\n", cv, strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t"))
	return b.String(), nil
}

func generateMetaFail(retType, cv string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "err := pegrt.NewError(%s, \"fail\")\n", cv)
	b.WriteString(zeroReturn(retType))
	return b.String(), nil
}

func generateMetaWhitespace(gc *genCtx, n *model.RuleCall, retType, cv string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "if _, err := pegrt.Whitespace(%s); err != nil {\n\t%s}\n", cv, strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t"))
	return b.String(), nil
}

func generateByteClassStep(gc *genCtx, n *model.RuleCall, retType, cv string) (string, error) {
	fn := map[string]string{
		"alpha": "pegrt.Alpha", "digit": "pegrt.Digit", "alphanumeric": "pegrt.Alphanumeric",
		"hex_digit": "pegrt.HexDigit", "oct_digit": "pegrt.OctDigit",
	}[n.Name]
	var b strings.Builder
	v := gc.fresh("byte")
	fmt.Fprintf(&b, "%s, err := %s(%s)\n", v, fn, cv)
	b.WriteString("if err != nil {\n\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t") + "}\n")
	if n.HasBinding() {
		fmt.Fprintf(&b, "%s := %s\n", n.Binding, v)
	}
	return b.String(), nil
}

// itemClosure builds the `func(c *pegrt.Cursor) (T, error) { ... }` closure
// pegrt's generic combinators expect, for a single inner pattern used as a
// repeat/separated/optional item. The closure's own return type is the
// inner's target Go type when it is a direct, single-binding RuleCall
// (its type is then that rule's declared ReturnType, or the primitive's
// native Go type); a Literal yields `string`; any richer inner shape
// collapses to `any`, since the grammar model doesn't carry full structural
// types beyond a rule's own ReturnType. The closure's body always refers to
// its own parameter "c", regardless of what cursor variable the call site
// that builds this closure is itself threading.
func (gc *genCtx) itemClosure(inner model.Pattern, itemVar string) (closure string, itemType string) {
	itemType = gc.inferItemType(inner)
	body, _ := generatePatternStep(gc, bindAs(inner, itemVar), itemType, "c")
	return fmt.Sprintf("func(c *pegrt.Cursor) (%s, error) {\n%s\treturn %s, nil\n}", itemType, body, itemVar), itemType
}

// mapClosure builds a `func(c *pegrt.Cursor) (map[string]any, error)`
// closure over a single pattern that may carry several of its own nested
// bindings (the inner pattern of an Optional, Repeat or Plus) — unlike
// itemClosure's single-value case, every binding the inner pattern collects
// surfaces as its own map key, so the caller can destructure them all.
func (gc *genCtx) mapClosure(inner model.Pattern) (closure string, bindings []string) {
	bindings = analyzer.CollectBindings([]model.Pattern{inner})
	body, _ := generatePatternStep(gc, inner, "map[string]any", "c")
	return fmt.Sprintf("func(c *pegrt.Cursor) (map[string]any, error) {\n%s\treturn map[string]any{%s}, nil\n}",
		body, bindingMapLiteral(bindings)), bindings
}

// bindAs returns a shallow copy of p with its top-level binding forced to
// name, so a repeat/separated driver can capture each iteration's value
// under a predictable identifier regardless of what the grammar author
// bound it to in the source sequence.
func bindAs(p model.Pattern, name string) model.Pattern {
	switch n := p.(type) {
	case *model.Literal:
		c := *n
		c.Binding = name
		return &c
	case *model.RuleCall:
		c := *n
		c.Binding = name
		return &c
	case *model.Recover:
		c := *n
		c.Binding = name
		return &c
	case *model.Until:
		c := *n
		c.Binding = name
		return &c
	default:
		return p
	}
}

func (gc *genCtx) inferItemType(p model.Pattern) string {
	switch n := p.(type) {
	case *model.RuleCall:
		if r := gc.grammar.RuleByName(n.Name); r != nil {
			return r.ReturnType
		}
		if cast, ok := config.PrimitiveCast[n.Name]; ok {
			return cast
		}
		if n.Name == "ident" || n.Name == "string" {
			return "string"
		}
		return "any"
	case *model.Literal:
		return "string"
	default:
		return "any"
	}
}

// generateSeparatedStep implements the separated(rule, sep, min=0,
// trailing=false) pseudo-rule (spec §4.3.4): an in-line list driver built
// directly on pegrt.Attempt rather than on pegrt.Separated, since
// the min/trailing policy varies per call site.
func generateSeparatedStep(gc *genCtx, n *model.RuleCall, retType, cv string) (string, error) {
	if len(n.ValueArgs) < 2 {
		return "", fmt.Errorf("emitter: separated requires at least 2 arguments")
	}
	itemVar := gc.fresh("item")
	sepVar := gc.fresh("sep")
	min, trailing := separatedOptions(n.ValueArgs[2:])

	itemClosure, itemType := gc.itemClosure(n.ValueArgs[0], itemVar)
	sepClosure, _ := gc.itemClosure(n.ValueArgs[1], sepVar)

	sinkInit := fmt.Sprintf("&pegrt.SliceSink[%s]{}", itemType)
	if len(n.TypeArgs) > 0 {
		sinkInit = fmt.Sprintf("&%s{}", n.TypeArgs[0])
	}

	sinkVar := gc.fresh("sink")
	var b strings.Builder
	fmt.Fprintf(&b, "%s := %s\n", sinkVar, sinkInit)
	fmt.Fprintf(&b, "if v, ok, err := pegrt.Attempt(%s, %s); err != nil {\n\t%s} else if ok {\n\t%s.Append(v)\n", cv, itemClosure, strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t"), sinkVar)
	b.WriteString("\tfor {\n")
	fmt.Fprintf(&b, "\t\t_, sepOK, sepErr := pegrt.Attempt(%s, %s)\n", cv, sepClosure)
	b.WriteString("\t\tif sepErr != nil {\n\t\t\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t\t\t") + "\t\t}\n")
	b.WriteString("\t\tif !sepOK {\n\t\t\tbreak\n\t\t}\n")
	fmt.Fprintf(&b, "\t\titemV, itemOK, itemErr := pegrt.Attempt(%s, %s)\n", cv, itemClosure)
	b.WriteString("\t\tif itemErr != nil {\n\t\t\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t\t\t") + "\t\t}\n")
	if !trailing {
		fmt.Fprintf(&b, "\t\tif !itemOK {\n\t\t\terr := pegrt.NewError(%s, %q)\n\t\t\t%s\t\t}\n",
			cv, "expected item after separator", strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t\t\t"))
	} else {
		b.WriteString("\t\tif !itemOK {\n\t\t\tbreak\n\t\t}\n")
	}
	fmt.Fprintf(&b, "\t\t%s.Append(itemV)\n", sinkVar)
	b.WriteString("\t}\n")
	b.WriteString("}\n")
	if min > 0 {
		fmt.Fprintf(&b, "if len(%s.Items()) < %d {\n\terr := pegrt.NewError(%s, %q)\n\t%s}\n",
			sinkVar, min, cv, "expected at least "+fmt.Sprint(min)+" item(s)", strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t"))
	}
	if n.HasBinding() {
		fmt.Fprintf(&b, "%s := %s.Items()\n", n.Binding, sinkVar)
	}
	return b.String(), nil
}

func generateRepeatedCallStep(gc *genCtx, n *model.RuleCall, retType, cv string) (string, error) {
	if len(n.ValueArgs) < 1 {
		return "", fmt.Errorf("emitter: repeated requires at least 1 argument")
	}
	min := 0
	if len(n.ValueArgs) > 1 {
		min, _ = separatedOptions(n.ValueArgs[1:])
	}
	itemClosure, itemType := gc.itemClosure(n.ValueArgs[0], gc.fresh("item"))

	sinkInit := fmt.Sprintf("&pegrt.SliceSink[%s]{}", itemType)
	if len(n.TypeArgs) > 0 {
		sinkInit = fmt.Sprintf("&%s{}", n.TypeArgs[0])
	}

	sinkVar := gc.fresh("sink")
	var b strings.Builder
	fn := "pegrt.Repeated"
	if min > 0 {
		fn = "pegrt.RepeatedPlus"
	}
	fmt.Fprintf(&b, "%s, err := %s(%s, %s, %s)\n", sinkVar, fn, cv, sinkInit, itemClosure)
	b.WriteString("if err != nil {\n\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t") + "}\n")
	if n.HasBinding() {
		fmt.Fprintf(&b, "%s := %s.Items()\n", n.Binding, sinkVar)
	}
	return b.String(), nil
}

// separatedOptions reads the optional min=N / trailing=true arguments, both
// surfaced by the surface parser as plain Literal patterns carrying the
// literal text (peggen's grammar DSL has no real named-argument syntax
// beyond this convention — see internal/surface/parser.go's parseValueArgList).
func separatedOptions(args []model.Pattern) (min int, trailing bool) {
	for _, a := range args {
		lit, ok := a.(*model.Literal)
		if !ok {
			continue
		}
		switch lit.Lit {
		case "true":
			trailing = true
		case "false":
			trailing = false
		default:
			fmt.Sscanf(lit.Lit, "%d", &min)
		}
	}
	return
}

func generateGroupStep(gc *genCtx, n *model.Group, retType, cv string) (string, error) {
	bindings := uniqueBindings(n.Alternatives)
	resultType := "map[string]any"
	resultVar := gc.fresh("grp")

	var alts strings.Builder
	for _, alt := range n.Alternatives {
		altBindings := analyzer.CollectBindings(alt)
		body, err := generateSequenceSteps(gc, alt, resultType, "c")
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&alts, "if %s, ok, err := pegrt.Attempt(%s, func(c *pegrt.Cursor) (%s, error) {\n", resultVar, cv, resultType)
		alts.WriteString(body)
		fmt.Fprintf(&alts, "\treturn map[string]any{%s}, nil\n", bindingMapLiteral(altBindings))
		alts.WriteString("}); err != nil {\n\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t") + "} else if ok {\n")
		fmt.Fprintf(&alts, "\t%sResult = %s\n\tgoto %sDone\n}\n", resultVar, resultVar, resultVar)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "var %sResult %s\n", resultVar, resultType)
	b.WriteString(alts.String())
	fmt.Fprintf(&b, "{\n\terr := pegrt.NewError(%s, \"no matching alternative in group\")\n\t%s}\n", cv, strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t"))
	fmt.Fprintf(&b, "%sDone:\n", resultVar)
	for _, name := range bindings {
		fmt.Fprintf(&b, "%s := %s[%q]\n", name, resultVar+"Result", name)
	}
	return b.String(), nil
}

func uniqueBindings(alts [][]model.Pattern) []string {
	seen := map[string]bool{}
	var out []string
	for _, alt := range alts {
		for _, name := range analyzer.CollectBindings(alt) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func bindingMapLiteral(names []string) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%q: %s", name, name)
	}
	return strings.Join(parts, ", ")
}

// generateDelimitedStep splits a delimited group off the host token model
// into a sub-cursor, then recurses the inner sequence against it directly
// — as a plain statement sequence over the sub-cursor variable rather than
// a fresh closure, so every nested step (including a nested
// Optional/Group/Repeat's own closures, which always parameterize
// themselves as "c") threads the sub-cursor by variable, not by rewriting
// generated text (spec §4.3.4's Bracketed/Braced/Parenthesized rule).
func generateDelimitedStep(gc *genCtx, n *model.Delimited, retType, cv string) (string, error) {
	kindName := map[model.DelimKind]string{
		model.Bracketed: "pegrt.Bracketed", model.Braced: "pegrt.Braced", model.Parenthesized: "pegrt.Parenthesized",
	}[n.Kind]
	subVar := gc.fresh("sub")
	var b strings.Builder
	fmt.Fprintf(&b, "%s, ok := %s.Delimited(%s)\n", subVar, cv, kindName)
	b.WriteString("if !ok {\n\terr := pegrt.NewError(" + cv + ", \"expected a delimited group\")\n\t" +
		strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t") + "}\n")
	inner, err := generateSequenceSteps(gc, n.Inner, retType, subVar)
	if err != nil {
		return "", err
	}
	b.WriteString(inner)
	return b.String(), nil
}

// generateOptionalStep follows spec §4.3.4: peek-driven when the inner
// pattern has a simple peek (no backtracking needed), otherwise a
// speculative attempt; each inner binding surfaces as an `any`, nil on miss.
func generateOptionalStep(gc *genCtx, n *model.Optional, retType, cv string) (string, error) {
	peek := analyzer.GetSimplePeek(n.Inner, gc.analysis.ResolvedLits)

	resultVar := gc.fresh("opt")
	closure, bindings := gc.mapClosure(n.Inner)

	var b strings.Builder
	if peek.Known {
		fmt.Fprintf(&b, "var %s map[string]any\n", resultVar)
		fmt.Fprintf(&b, "if %s {\n", peekCond(peek.Ref, cv))
		fmt.Fprintf(&b, "\tv, err := (%s)(%s)\n", closure, cv)
		b.WriteString("\tif err != nil {\n\t\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t\t") + "\t}\n")
		fmt.Fprintf(&b, "\t%s = v\n}\n", resultVar)
	} else {
		fmt.Fprintf(&b, "%s, _, err := pegrt.Attempt(%s, %s)\n", resultVar, cv, closure)
		b.WriteString("if err != nil {\n\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t") + "}\n")
	}
	for _, name := range bindings {
		fmt.Fprintf(&b, "var %s any\nif %s != nil {\n\t%s = %s[%q]\n}\n", name, resultVar, name, resultVar, name)
	}
	return b.String(), nil
}

func peekCond(ref analyzer.TokenTypeRef, cv string) string {
	classOK, text := "(a.Class == pegrt.ClassIdent || a.Class == pegrt.ClassKeyword)", ref.Keyword
	if ref.Kind == analyzer.KindPunct {
		classOK, text = "a.Class == pegrt.ClassPunct", string(ref.Punct)
	}
	return fmt.Sprintf("(func() bool { a, ok := %s.Fork().Advance(); return ok && %s && a.Text == %q }())", cv, classOK, text)
}

// generateRepeatStep drives Repeat (`*`) / Plus (`+`) via pegrt.Repeated /
// pegrt.RepeatedPlus, rebinding each inner binding name to its accumulated
// slice (spec §4.3.4).
func generateRepeatStep(gc *genCtx, innerPattern model.Pattern, retType, cv string, plus bool) (string, error) {
	closure, bindings := gc.mapClosure(innerPattern)

	sinkVar := gc.fresh("sink")
	fn := "pegrt.Repeated"
	if plus {
		fn = "pegrt.RepeatedPlus"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s, err := %s(%s, &pegrt.SliceSink[map[string]any]{}, %s)\n", sinkVar, fn, cv, closure)
	b.WriteString("if err != nil {\n\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t") + "}\n")
	for _, name := range bindings {
		fmt.Fprintf(&b, "var %s []any\nfor _, _m := range %s.Items() {\n\t%s = append(%s, _m[%q])\n}\n",
			name, sinkVar, name, name, name)
	}
	return b.String(), nil
}

func generateSpanBindingStep(gc *genCtx, n *model.SpanBinding, retType, cv string) (string, error) {
	startVar := gc.fresh("spanStart")
	var b strings.Builder
	fmt.Fprintf(&b, "%s := %s.Span()\n", startVar, cv)
	inner, err := generatePatternStep(gc, n.Inner, retType, cv)
	if err != nil {
		return "", err
	}
	b.WriteString(inner)
	fmt.Fprintf(&b, "%s := pegrt.Span{Start: %s.Start, End: %s.Span().Start}\n", n.SpanName, startVar, cv)
	return b.String(), nil
}

// generateRecoverStep follows spec §4.3.4: try body; on failure skip to the
// sync point and surface the miss as an optional rather than aborting.
func generateRecoverStep(gc *genCtx, n *model.Recover, retType, cv string) (string, error) {
	bodyVar := gc.fresh("recov")
	bindings := analyzer.CollectBindings([]model.Pattern{n.Body})
	closure, _ := gc.itemClosure(n.Body, bodyVar)
	syncPeek := analyzer.GetSimplePeek(n.Sync, gc.analysis.ResolvedLits)

	var b strings.Builder
	fmt.Fprintf(&b, "%s, %sOK := pegrt.AttemptRecover(%s, %s)\n", bodyVar, bodyVar, cv, closure)
	fmt.Fprintf(&b, "if !%sOK {\n", bodyVar)
	if syncPeek.Known {
		fmt.Fprintf(&b, "\tpegrt.SkipUntil(%s, func(c *pegrt.Cursor) bool { return %s })\n", cv, peekCond(syncPeek.Ref, "c"))
	} else {
		fmt.Fprintf(&b, "\tpegrt.SkipUntil(%s, func(c *pegrt.Cursor) bool { return pegrt.Peek(c, %s) })\n", cv, mustItemClosure(gc, n.Sync))
	}
	b.WriteString("}\n")
	if n.HasBinding() {
		fmt.Fprintf(&b, "var %s any\nif %sOK {\n\t%s = %s\n}\n", n.Binding, bodyVar, n.Binding, bodyVar)
	}
	for _, name := range bindings {
		fmt.Fprintf(&b, "var %s any\nif %sOK {\n\t%s = %s[%q]\n}\n", name, bodyVar, name, bodyVar, name)
	}
	return b.String(), nil
}

// generatePeekStep forks, runs inner, discards the real stream's advance,
// but keeps any bindings inner produced (spec §4.3.4's Peek rule).
func generatePeekStep(gc *genCtx, n *model.Peek, retType, cv string) (string, error) {
	resultVar := gc.fresh("peek")
	closure, bindings := gc.mapClosure(n.Inner)

	var b strings.Builder
	fmt.Fprintf(&b, "%s, %sOK, err := func() (map[string]any, bool, error) {\n", resultVar, resultVar)
	fmt.Fprintf(&b, "\tfork := %s.Fork()\n\tv, perr := (%s)(fork)\n", cv, closure)
	b.WriteString("\tif perr != nil {\n\t\treturn nil, false, nil\n\t}\n")
	b.WriteString("\treturn v, true, nil\n}()\n")
	b.WriteString("if err != nil {\n\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t") + "}\n")
	fmt.Fprintf(&b, "if !%sOK {\n\terr := pegrt.NewError(%s, \"peek failed\")\n\t%s}\n",
		resultVar, cv, strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t"))
	for _, name := range bindings {
		fmt.Fprintf(&b, "%s := %s[%q]\n", name, resultVar, name)
	}
	return b.String(), nil
}

// generateNotStep forks, runs inner; succeeds (without advancing) only if
// inner fails (spec §4.3.4's Not rule).
func generateNotStep(gc *genCtx, n *model.Not, retType, cv string) (string, error) {
	closure, _ := gc.mapClosure(n.Inner)
	var b strings.Builder
	fmt.Fprintf(&b, "if pegrt.Peek(%s, %s) {\n\terr := pegrt.NewError(%s, \"unexpected input\")\n\t%s}\n",
		cv, closure, cv, strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t"))
	return b.String(), nil
}

// generateUntilStep loops consuming raw atoms while the stream is
// non-empty and the sync pattern hasn't matched yet (spec §4.3.4's
// Until(pattern) rule), collecting the skipped atoms.
func generateUntilStep(gc *genCtx, n *model.Until, retType, cv string) (string, error) {
	peek := analyzer.GetSimplePeek(n.Pattern, gc.analysis.ResolvedLits)
	collected := gc.fresh("until")
	var b strings.Builder
	fmt.Fprintf(&b, "var %s []pegrt.Atom\n", collected)
	fmt.Fprintf(&b, "for !%s.IsEmpty() {\n", cv)
	if peek.Known {
		fmt.Fprintf(&b, "\tif %s {\n\t\tbreak\n\t}\n", peekCond(peek.Ref, cv))
	} else {
		fmt.Fprintf(&b, "\tif pegrt.Peek(%s, %s) {\n\t\tbreak\n\t}\n", cv, mustItemClosure(gc, n.Pattern))
	}
	fmt.Fprintf(&b, "\ta, _ := %s.Advance()\n\t%s = append(%s, a)\n", cv, collected, collected)
	b.WriteString("}\n")
	if n.HasBinding() {
		fmt.Fprintf(&b, "%s := %s\n", n.Binding, collected)
	}
	return b.String(), nil
}

func mustItemClosure(gc *genCtx, p model.Pattern) string {
	closure, _ := gc.itemClosure(p, gc.fresh("u"))
	return closure
}
