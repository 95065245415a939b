// Package monomorphize instantiates generic rules (and rules taking
// untyped pattern parameters) into concrete, parameter-free rules — spec
// §4.2's "eliminate templates by instantiation, keyed by (template name,
// structural hash of argument patterns)". Templates, instantiations, and a
// pending-rules work queue track which instantiations still need their
// bodies built, with substitution done directly over the model.Pattern
// tree rather than any token-level splicing.
package monomorphize

import (
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/funvibe/peggen/internal/model"
)

// Monomorphizer expands every template rule reachable from a grammar's
// concrete rules into a distinct instantiation, named `<template>_<hash>`.
type Monomorphizer struct {
	templates      map[string]*model.Rule
	instantiations map[string]string // (templateName + "\x00" + argsRepr) -> instantiated name
	usedNames      map[string]string // instantiated name -> its key, to detect real hash collisions
	ruleTypes      map[string]string
	processed      []*model.Rule
	pending        []*model.Rule
}

// New partitions rules into templates (generic, or taking at least one
// untyped pattern parameter) and concrete rules, seeding the work queue
// with the concrete ones.
func New(rules []*model.Rule) *Monomorphizer {
	m := &Monomorphizer{
		templates:      map[string]*model.Rule{},
		instantiations: map[string]string{},
		usedNames:      map[string]string{},
		ruleTypes:      map[string]string{},
	}
	for _, r := range rules {
		if r.IsTemplate {
			m.templates[r.Name] = r
			continue
		}
		m.ruleTypes[r.Name] = r.ReturnType
		m.pending = append(m.pending, r)
	}
	return m
}

// Process drains the work queue, expanding every rule call to a template
// into a fresh concrete instantiation, until nothing generic remains
// reachable. Returns the flattened, fully concrete rule set (spec §4.2's
// monomorphized output, consumed next by internal/emitter).
func (m *Monomorphizer) Process() []*model.Rule {
	for len(m.pending) > 0 {
		r := m.pending[len(m.pending)-1]
		m.pending = m.pending[:len(m.pending)-1]
		m.expandRule(r)
		m.processed = append(m.processed, r)
	}
	return m.processed
}

func (m *Monomorphizer) expandRule(r *model.Rule) {
	for _, v := range r.Variants {
		for i, p := range v.Patterns {
			v.Patterns[i] = m.expandPattern(p)
		}
	}
}

// expandPattern rewrites a RuleCall targeting a template into a call to its
// instantiation, recursing first into the call's own value arguments (an
// argument can itself reference another template).
func (m *Monomorphizer) expandPattern(p model.Pattern) model.Pattern {
	switch n := p.(type) {
	case *model.RuleCall:
		for i, a := range n.ValueArgs {
			n.ValueArgs[i] = m.expandPattern(a)
		}
		if tmpl, ok := m.templates[n.Name]; ok {
			newName := m.instantiate(tmpl, n.ValueArgs)
			n.Name = newName
			n.ValueArgs = nil
		}
		return n
	case *model.Group:
		for _, alt := range n.Alternatives {
			for i, sub := range alt {
				alt[i] = m.expandPattern(sub)
			}
		}
		return n
	case *model.Delimited:
		for i, sub := range n.Inner {
			n.Inner[i] = m.expandPattern(sub)
		}
		return n
	case *model.Optional:
		n.Inner = m.expandPattern(n.Inner)
		return n
	case *model.Repeat:
		n.Inner = m.expandPattern(n.Inner)
		return n
	case *model.Plus:
		n.Inner = m.expandPattern(n.Inner)
		return n
	case *model.SpanBinding:
		n.Inner = m.expandPattern(n.Inner)
		return n
	case *model.Peek:
		n.Inner = m.expandPattern(n.Inner)
		return n
	case *model.Not:
		n.Inner = m.expandPattern(n.Inner)
		return n
	case *model.Recover:
		n.Body = m.expandPattern(n.Body)
		n.Sync = m.expandPattern(n.Sync)
		return n
	default:
		return p
	}
}

// instantiate produces (or reuses) a concrete rule for template called with
// args, keyed by the template's name plus the args' structural repr.
func (m *Monomorphizer) instantiate(tmpl *model.Rule, args []model.Pattern) string {
	argsRepr := reprSeq(args)
	key := tmpl.Name + "\x00" + argsRepr
	if name, ok := m.instantiations[key]; ok {
		return name
	}

	newName := m.nameFor(tmpl.Name, argsRepr, key)
	m.instantiations[key] = newName

	var patternParams []string
	for _, vp := range tmpl.ValueParams {
		if vp.IsPatternParam() {
			patternParams = append(patternParams, vp.Name)
		}
	}
	paramMap := map[string]model.Pattern{}
	for i, name := range patternParams {
		if i < len(args) {
			paramMap[name] = args[i]
		}
	}

	newRule := cloneRule(tmpl)
	newRule.Name = newName
	generics := newRule.GenericParams
	newRule.GenericParams = nil
	newRule.IsTemplate = false

	var keptParams []model.ValueParam
	for _, vp := range newRule.ValueParams {
		if !vp.IsPatternParam() {
			keptParams = append(keptParams, vp)
		}
	}
	newRule.ValueParams = keptParams

	for _, v := range newRule.Variants {
		for i, p := range v.Patterns {
			v.Patterns[i] = substituteParams(p, paramMap)
		}
	}

	typeMap := map[string]string{}
	for i, gp := range generics {
		if i < len(args) {
			if ty, ok := m.inferType(args[i]); ok {
				typeMap[gp.Name] = ty
			}
		}
	}
	newRule.ReturnType = substituteType(newRule.ReturnType, typeMap)

	m.ruleTypes[newName] = newRule.ReturnType
	m.pending = append(m.pending, newRule)
	return newName
}

// nameFor hashes argsRepr with FNV-1a (spec's "structural hash" requirement;
// any stable non-cryptographic hash serves the same disambiguation
// purpose). A genuine collision — same
// hash, different repr — falls back to a uuid suffix so two distinct
// instantiations never share a name.
func (m *Monomorphizer) nameFor(templateName, argsRepr, key string) string {
	h := fnv.New64a()
	h.Write([]byte(argsRepr))
	name := fmt.Sprintf("%s_%x", templateName, h.Sum64())

	if existingKey, taken := m.usedNames[name]; taken && existingKey != key {
		name = fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
	}
	m.usedNames[name] = key
	return name
}

// inferType derives an argument pattern's host type: a bare literal
// argument carries no host type (unit), a rule-call argument's type is
// whatever that rule returns.
func (m *Monomorphizer) inferType(p model.Pattern) (string, bool) {
	switch n := p.(type) {
	case *model.Literal:
		return "struct{}", true
	case *model.RuleCall:
		if ty, ok := m.ruleTypes[n.Name]; ok {
			return ty, true
		}
	}
	return "", false
}
