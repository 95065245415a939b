package emitter

import (
	"fmt"
	"strings"

	"github.com/funvibe/peggen/internal/analyzer"
	"github.com/funvibe/peggen/internal/model"
)

// generateRule emits one rule's parse_<name>_impl function (spec §4.3.1),
// splitting into the direct-left-recursion loop shape when the rule has a
// variant that calls itself first (spec §4.3.3), or the flat variant
// dispatch otherwise (spec §4.3.2).
func generateRule(gc *genCtx, r *model.Rule) (string, error) {
	fnName := goIdent(r.Name)
	retType := r.ReturnType

	params := make([]string, 0, len(r.ValueParams)+1)
	params = append(params, "c *pegrt.Cursor")
	for _, vp := range r.ValueParams {
		params = append(params, fmt.Sprintf("%s %s", vp.Name, vp.Type))
	}

	split := analyzer.SplitLeftRecursive(r.Name, r.Variants)

	var body string
	if len(split.Recursive) == 0 {
		b, err := generateVariantsInternal(gc, r.Variants, true, retType)
		if err != nil {
			return "", err
		}
		body = b
	} else {
		if len(split.Base) == 0 {
			return "", fmt.Errorf("emitter: left-recursive rule %q requires at least one non-recursive base variant", r.Name)
		}
		baseLogic, err := generateVariantsInternal(gc, split.Base, true, retType)
		if err != nil {
			return "", err
		}
		loopLogic, err := generateRecursiveLoopBody(gc, split.Recursive, retType)
		if err != nil {
			return "", err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "lhs, err := func() (%s, error) {\n", retType)
		b.WriteString(baseLogic)
		b.WriteString("}()\n")
		b.WriteString("if err != nil {\n\tvar zero " + retType + "\n\treturn zero, err\n}\n")
		b.WriteString("for {\n")
		b.WriteString(loopLogic)
		b.WriteString("\tbreak\n")
		b.WriteString("}\n")
		b.WriteString("return lhs, nil\n")
		body = b.String()
	}

	var out strings.Builder
	fmt.Fprintf(&out, "// %s parses the %q rule.\n", fnName, r.Name)
	fmt.Fprintf(&out, "func %s(%s) (%s, error) {\n", fnName, strings.Join(params, ", "), retType)
	out.WriteString(body)
	out.WriteString("}\n\n")

	if r.Public || r.Name == "main" {
		out.WriteString(generatePublicWrapper(r, fnName, retType))
	}

	return out.String(), nil
}

// generatePublicWrapper exposes an exported Parse<Name> entry point with
// the same signature minus any internal-only machinery (spec §4.3.1).
func generatePublicWrapper(r *model.Rule, fnName, retType string) string {
	pubName := goPublicIdent(r.Name)
	params := make([]string, 0, len(r.ValueParams)+1)
	args := make([]string, 0, len(r.ValueParams)+1)
	params = append(params, "c *pegrt.Cursor")
	args = append(args, "c")
	for _, vp := range r.ValueParams {
		params = append(params, fmt.Sprintf("%s %s", vp.Name, vp.Type))
		args = append(args, vp.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "// %s is the exported entry point for the %q rule.\n", pubName, r.Name)
	fmt.Fprintf(&b, "func %s(%s) (%s, error) {\n\treturn %s(%s)\n}\n\n", pubName, strings.Join(params, ", "), retType, fnName, strings.Join(args, ", "))
	return b.String()
}

// generateRecursiveLoopBody emits one if-peek-and-attempt (or blind-attempt)
// block per left-recursive variant, rebinding lhs on a strictly-advancing
// match and erroring on a non-advancing one (spec §4.3.3).
func generateRecursiveLoopBody(gc *genCtx, variants []*model.Variant, retType string) (string, error) {
	var b strings.Builder
	for _, v := range variants {
		tail := v.Patterns[1:]

		var bindStmt string
		if rc, ok := v.Patterns[0].(*model.RuleCall); ok && rc.Binding != "" {
			bindStmt = fmt.Sprintf("%s := lhs\n", rc.Binding)
		}

		logic, err := generateSequence(gc, tail, v.Action, retType, "c")
		if err != nil {
			return "", err
		}
		closure := fmt.Sprintf("func(c *pegrt.Cursor) (%s, error) {\n%s%s}", retType, bindStmt, logic)

		peek := analyzer.GetSequencePeek(tail, gc.analysis.ResolvedLits)
		startVar := gc.fresh("startPos")

		var attemptBlock strings.Builder
		fmt.Fprintf(&attemptBlock, "%s := c.Pos()\n", startVar)
		fmt.Fprintf(&attemptBlock, "if newVal, ok, err := pegrt.Attempt(c, %s); err != nil {\n\tvar zero %s\n\treturn zero, err\n} else if ok {\n", closure, retType)
		fmt.Fprintf(&attemptBlock, "\tif %s == c.Pos() {\n\t\terr := pegrt.NewError(c, \"left-recursive rule matched empty string\")\n\t\tvar zero %s\n\t\treturn zero, err\n\t}\n", startVar, retType)
		attemptBlock.WriteString("\tlhs = newVal\n\tcontinue\n}\n")

		if peek.Known {
			fmt.Fprintf(&b, "if %s {\n%s}\n", peekCond(peek.Ref, "c"), attemptBlock.String())
		} else {
			b.WriteString(attemptBlock.String())
		}
	}
	return b.String(), nil
}

// generateVariantsInternal emits the flat dispatch over variants, choosing
// per-variant between a committed-unique-prefix block, a peek-gated
// speculative attempt, or a blind speculative attempt, then falling through
// to the best recorded error (spec §4.3.2).
func generateVariantsInternal(gc *genCtx, variants []*model.Variant, isTopLevel bool, retType string) (string, error) {
	if len(variants) == 0 {
		var b strings.Builder
		b.WriteString("err := pegrt.NewError(c, \"no variants defined\")\n")
		b.WriteString(zeroReturn(retType))
		return b.String(), nil
	}

	tokenCounts := map[string]int{}
	for _, v := range variants {
		if key, ok := peekTokenString(gc, v.Patterns); ok {
			tokenCounts[key]++
		}
	}

	var arms strings.Builder
	for _, v := range variants {
		cut := analyzer.FindCut(v.Patterns)
		peek := analyzer.GetSequencePeek(v.Patterns, gc.analysis.ResolvedLits)
		key, hasKey := peekTokenString(gc, v.Patterns)
		isUnique := hasKey && tokenCounts[key] == 1

		var armCode string
		var err error
		if cut != nil {
			armCode, err = generateCutArm(gc, v, cut, peek, isUnique, retType)
		} else {
			armCode, err = generateStandardArm(gc, v, peek, isUnique, retType)
		}
		if err != nil {
			return "", err
		}
		arms.WriteString(armCode)
	}

	errMsg := "no matching variant in group"
	if isTopLevel {
		errMsg = "no matching rule variant found"
	}

	var b strings.Builder
	b.WriteString(arms.String())
	fmt.Fprintf(&b, "if best := c.TakeBestError(); best != nil {\n\tvar zero %s\n\treturn zero, best\n}\n", retType)
	fmt.Fprintf(&b, "err := pegrt.NewError(c, %q)\n", errMsg)
	b.WriteString(zeroReturn(retType))
	return b.String(), nil
}

// peekTokenString renders a variant sequence's first simple peek as a
// string key, used only to count how many sibling variants share the exact
// same leading token (the "unique prefix" commit-immediately optimization).
func peekTokenString(gc *genCtx, seq []model.Pattern) (string, bool) {
	peek := analyzer.GetSequencePeek(seq, gc.analysis.ResolvedLits)
	if !peek.Known {
		return "", false
	}
	switch peek.Ref.Kind {
	case analyzer.KindPunct:
		return "punct:" + string(peek.Ref.Punct), true
	default:
		return "kw:" + peek.Ref.Keyword, true
	}
}

// generateCutArm emits one variant whose sequence contains a cut: the
// pre-cut half stays speculative (or, when the leading token is unique, runs
// linearly with the rest, so a pre-cut failure also sets the fatal flag),
// the post-cut half runs linearly and any failure there sets the
// fatal flag before propagating (spec §4.3.2's cut-arm rule).
func generateCutArm(gc *genCtx, v *model.Variant, cut *analyzer.CutAnalysis, peek analyzer.SimplePeek, isUnique bool, retType string) (string, error) {
	preLogic, err := generateSequenceSteps(gc, cut.PreCut, retType, "c")
	if err != nil {
		return "", err
	}
	postLogic, err := generateSequenceSteps(gc, cut.PostCut, retType, "c")
	if err != nil {
		return "", err
	}

	var logicBlock strings.Builder
	if isUnique {
		fmt.Fprintf(&logicBlock, "resV, runErr := func() (%s, error) {\n", retType)
		logicBlock.WriteString(preLogic)
		logicBlock.WriteString(postLogic)
		fmt.Fprintf(&logicBlock, "\treturn %s, nil\n", v.Action)
		logicBlock.WriteString("}()\n")
		logicBlock.WriteString("if runErr != nil {\n\tc.SetFatal(true)\n\treturn resV, runErr\n}\n")
		logicBlock.WriteString("return resV, nil\n")
	} else {
		preBindings := analyzer.CollectBindings(cut.PreCut)
		preVar := gc.fresh("pre")
		preType := "map[string]any"
		if len(preBindings) == 0 {
			preType = "struct{}"
		}
		fmt.Fprintf(&logicBlock, "%s, %sOK, err := pegrt.Attempt(c, func(c *pegrt.Cursor) (%s, error) {\n", preVar, preVar, preType)
		logicBlock.WriteString(preLogic)
		if len(preBindings) == 0 {
			logicBlock.WriteString("\treturn struct{}{}, nil\n")
		} else {
			fmt.Fprintf(&logicBlock, "\treturn map[string]any{%s}, nil\n", bindingMapLiteral(preBindings))
		}
		logicBlock.WriteString("})\n")
		logicBlock.WriteString("if err != nil {\n\t" + strings.ReplaceAll(zeroReturn(retType), "\n", "\n\t") + "}\n")
		fmt.Fprintf(&logicBlock, "if %sOK {\n", preVar)
		for _, name := range preBindings {
			fmt.Fprintf(&logicBlock, "\t%s := %s[%q]\n", name, preVar, name)
		}
		fmt.Fprintf(&logicBlock, "\tresV, postErr := func() (%s, error) {\n", retType)
		logicBlock.WriteString(indentLines(postLogic, "\t\t"))
		fmt.Fprintf(&logicBlock, "\t\treturn %s, nil\n", v.Action)
		logicBlock.WriteString("\t}()\n")
		logicBlock.WriteString("\tif postErr != nil {\n\t\tc.SetFatal(true)\n\t\treturn resV, postErr\n\t}\n")
		logicBlock.WriteString("\treturn resV, nil\n")
		logicBlock.WriteString("}\n")
	}

	if peek.Known {
		return fmt.Sprintf("if %s {\n%s}\n", peekCond(peek.Ref, "c"), logicBlock.String()), nil
	}
	return logicBlock.String(), nil
}

// generateStandardArm emits one cut-free variant: commit immediately under
// a unique leading token, otherwise attempt speculatively (peek-gated when
// a simple peek is known, blind otherwise) and return on success (spec
// §4.3.2's standard-arm rule).
func generateStandardArm(gc *genCtx, v *model.Variant, peek analyzer.SimplePeek, isUnique bool, retType string) (string, error) {
	logic, err := generateSequence(gc, v.Patterns, v.Action, retType, "c")
	if err != nil {
		return "", err
	}

	if isUnique {
		var b strings.Builder
		fmt.Fprintf(&b, "if %s {\n", peekCond(peek.Ref, "c"))
		fmt.Fprintf(&b, "\tresV, runErr := func() (%s, error) {\n", retType)
		b.WriteString(indentLines(logic, "\t\t"))
		b.WriteString("\t}()\n")
		b.WriteString("\tif runErr != nil {\n\t\tc.SetFatal(true)\n\t\treturn resV, runErr\n\t}\n")
		b.WriteString("\treturn resV, nil\n")
		b.WriteString("}\n")
		return b.String(), nil
	}

	if peek.Known {
		var b strings.Builder
		fmt.Fprintf(&b, "if %s {\n", peekCond(peek.Ref, "c"))
		fmt.Fprintf(&b, "\tif res, ok, err := pegrt.Attempt(c, func(c *pegrt.Cursor) (%s, error) {\n", retType)
		b.WriteString(indentLines(logic, "\t\t"))
		b.WriteString("\t}); err != nil {\n\t\treturn res, err\n\t} else if ok {\n\t\treturn res, nil\n\t}\n")
		b.WriteString("}\n")
		return b.String(), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "if res, ok, err := pegrt.Attempt(c, func(c *pegrt.Cursor) (%s, error) {\n", retType)
	b.WriteString(indentLines(logic, "\t"))
	b.WriteString("}); err != nil {\n\treturn res, err\n} else if ok {\n\treturn res, nil\n}\n")
	return b.String(), nil
}

// indentLines prefixes every non-empty line of s with prefix; go/format.Source
// normalizes the final whitespace, so this only needs to keep the
// intermediate source readable enough to debug by eye.
func indentLines(s, prefix string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
