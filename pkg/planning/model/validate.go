package model

import (
	"fmt"
	"strings"
)

// InvalidProblem aggregates every well-formedness violation found in a
// Problem.
type InvalidProblem []string

func (e InvalidProblem) Error() string {
	return fmt.Sprintf("invalid problem: %s", strings.Join(e, "; "))
}

// Validate checks that every reference in p resolves: types, objects,
// fluents, parameters and arities. It returns an InvalidProblem listing
// all violations, or nil.
func (p *Problem) Validate() error {
	var errs InvalidProblem
	report := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	types := map[string]bool{}
	for _, t := range p.Types {
		if types[t.Name] {
			report("duplicate type %q", t.Name)
		}
		types[t.Name] = true
	}
	for _, t := range p.Types {
		if t.Parent != "" && !types[t.Parent] {
			report("type %q has unknown parent %q", t.Name, t.Parent)
		}
	}

	objects := map[string]bool{}
	for _, o := range p.Objects {
		if objects[o.Name] {
			report("duplicate object %q", o.Name)
		}
		objects[o.Name] = true
		if !types[o.Type] {
			report("object %q has unknown type %q", o.Name, o.Type)
		}
	}

	fluents := map[string]Fluent{}
	for _, f := range p.Fluents {
		if _, ok := fluents[f.Name]; ok {
			report("duplicate fluent %q", f.Name)
		}
		fluents[f.Name] = f
		for _, param := range f.Params {
			if !types[param.Type] {
				report("fluent %q parameter %q has unknown type %q", f.Name, param.Name, param.Type)
			}
		}
	}

	checkAtom := func(where string, a Atom, resolve func(string) (string, bool)) {
		f, ok := fluents[a.Fluent]
		if !ok {
			report("%s: unknown fluent %q", where, a.Fluent)
			return
		}
		if len(a.Args) != len(f.Params) {
			report("%s: %s expects %d arguments, got %d", where, a.Fluent, len(f.Params), len(a.Args))
			return
		}
		for i, arg := range a.Args {
			typ, ok := resolve(arg)
			if !ok {
				report("%s: unknown argument %q in %s", where, arg, a)
				continue
			}
			if !p.IsSubtype(typ, f.Params[i].Type) {
				report("%s: argument %q of %s has type %q, want %q", where, arg, a, typ, f.Params[i].Type)
			}
		}
	}
	objectType := func(name string) (string, bool) {
		o, ok := p.Object(name)
		return o.Type, ok
	}

	actions := map[string]bool{}
	for _, a := range p.Actions {
		if actions[a.Name] {
			report("duplicate action %q", a.Name)
		}
		actions[a.Name] = true
		params := map[string]string{}
		for _, param := range a.Params {
			if _, ok := params[param.Name]; ok {
				report("action %q declares parameter %q twice", a.Name, param.Name)
			}
			params[param.Name] = param.Type
			if !types[param.Type] {
				report("action %q parameter %q has unknown type %q", a.Name, param.Name, param.Type)
			}
		}
		paramType := func(name string) (string, bool) {
			t, ok := params[name]
			return t, ok
		}
		for _, l := range a.Preconditions {
			checkAtom(fmt.Sprintf("action %q precondition", a.Name), l.Atom, paramType)
		}
		for i, clause := range a.AnyOf {
			if len(clause) == 0 {
				report("action %q disjunctive precondition %d is empty", a.Name, i)
			}
			for _, l := range clause {
				checkAtom(fmt.Sprintf("action %q disjunctive precondition", a.Name), l.Atom, paramType)
			}
		}
		for _, l := range a.Effects {
			checkAtom(fmt.Sprintf("action %q effect", a.Name), l.Atom, paramType)
		}
		for _, ce := range a.ConditionalEffects {
			for _, l := range ce.When {
				checkAtom(fmt.Sprintf("action %q effect condition", a.Name), l.Atom, paramType)
			}
			for _, l := range ce.Effects {
				checkAtom(fmt.Sprintf("action %q conditional effect", a.Name), l.Atom, paramType)
			}
		}
		for _, pair := range a.Distinct {
			for _, name := range pair {
				if _, ok := params[name]; !ok {
					report("action %q distinct constraint names unknown parameter %q", a.Name, name)
				}
			}
		}
	}

	for _, atom := range p.Init {
		checkAtom("init", atom, objectType)
	}
	if len(p.Goals) == 0 {
		report("no goals")
	}
	for _, l := range p.Goals {
		checkAtom("goal", l.Atom, objectType)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
