package encoding

import (
	"fmt"
	"sort"

	"github.com/go-air/gini/z"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/operator-framework/smt-planner/pkg/planning/grounding"
)

// effect is one value an action may give a fluent. Group 0 is the
// unconditional effect, group k+1 the action's conditional effect k.
type effect struct {
	group int
	value bool
}

type writer struct {
	action  int
	effects []effect
}

// split returns the triggers, among the action's group triggers ts,
// that set the fluent to true and to false.
func (w writer) split(ts []z.Lit) (add, del []z.Lit) {
	for _, e := range w.effects {
		if e.value {
			add = append(add, ts[e.group])
		} else {
			del = append(del, ts[e.group])
		}
	}
	return add, del
}

// index checks that the grounded problem is internally consistent and
// records which actions may write each fluent.
func (b *Builder) index() error {
	p := b.problem
	var errs inconsistentLitMapping
	if len(p.Init) != len(p.Fluents) {
		errs = append(errs, fmt.Errorf("initial state has %d values for %d fluents", len(p.Init), len(p.Fluents)))
	}
	valid := func(f int) bool {
		return f >= 0 && f < len(p.Fluents)
	}
	b.writers = make([][]writer, len(p.Fluents))
	write := func(a int, f int, e effect) {
		ws := b.writers[f]
		if n := len(ws); n > 0 && ws[n-1].action == a {
			ws[n-1].effects = append(ws[n-1].effects, e)
			return
		}
		b.writers[f] = append(ws, writer{action: a, effects: []effect{e}})
	}
	for i, a := range p.Actions {
		if a.Index != i {
			errs = append(errs, fmt.Errorf("action %s has index %d at position %d", a.Name, a.Index, i))
		}
		for _, c := range a.Reads() {
			if !valid(c.Fluent) {
				errs = append(errs, fmt.Errorf("action %s reads unknown fluent %d", a.Name, c.Fluent))
			}
		}
		added := sets.New[int](a.Add...)
		for _, f := range a.Del {
			if added.Has(f) && valid(f) {
				errs = append(errs, fmt.Errorf("action %s both adds and deletes %s", a.Name, p.Fluents[f]))
			}
		}
		groups := [][]grounding.Condition{a.Effects()}
		for _, ce := range a.Conditional {
			groups = append(groups, ce.Effects())
		}
		for g, cs := range groups {
			for _, c := range cs {
				if !valid(c.Fluent) {
					errs = append(errs, fmt.Errorf("action %s writes unknown fluent %d", a.Name, c.Fluent))
					continue
				}
				write(i, c.Fluent, effect{group: g, value: c.Value})
			}
		}
	}
	for _, c := range p.Goals {
		if !valid(c.Fluent) {
			errs = append(errs, fmt.Errorf("goal references unknown fluent %d", c.Fluent))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (b *Builder) encodeInit() {
	b.d.addState(len(b.problem.Fluents))
	for f, v := range b.problem.Init {
		b.d.out.clause(b.d.FluentAt(0, f, v))
	}
}

// encodeStep adds the transition from step s to step s+1.
func (b *Builder) encodeStep(s int) {
	d := b.d
	ms := d.addActions(len(b.problem.Actions))
	d.addState(len(b.problem.Fluents))

	if b.parallelism == RelaxedThereExists {
		b.encodeChains(s)
		return
	}
	b.encodeTransition(s)
	switch b.parallelism {
	case Sequential:
		d.AtMostOne(ms)
		d.mutexes += len(ms) * (len(ms) - 1) / 2
	case ForAll, ThereExists:
		for _, pair := range b.mutexes {
			d.out.clause(d.ActionAt(s, pair[0]).Not(), d.ActionAt(s, pair[1]).Not())
		}
		d.mutexes += len(b.mutexes)
	}
}

// encodeConditions requires every action executed at s to satisfy its
// preconditions and one alternative of each disjunctive precondition,
// as read through read.
func (b *Builder) encodeConditions(s int, read func(a *grounding.Action, c grounding.Condition) z.Lit) {
	d := b.d
	for _, a := range b.problem.Actions {
		m := d.ActionAt(s, a.Index)
		for _, c := range a.Pre {
			d.out.clause(m.Not(), read(a, c))
		}
		for _, clause := range a.AnyOf {
			ms := []z.Lit{m.Not()}
			for _, c := range clause {
				ms = append(ms, read(a, c))
			}
			d.out.clause(ms...)
		}
	}
}

// triggers returns, per action, the literal of each of its effect groups
// firing at step s. Group 0 fires with the action, group k+1 when the
// action executes and the condition of conditional effect k holds.
func (b *Builder) triggers(s int, read func(a *grounding.Action, c grounding.Condition) z.Lit) [][]z.Lit {
	d := b.d
	ts := make([][]z.Lit, len(b.problem.Actions))
	for i, a := range b.problem.Actions {
		m := d.ActionAt(s, a.Index)
		t := make([]z.Lit, len(a.Conditional)+1)
		t[0] = m
		for k, ce := range a.Conditional {
			ms := []z.Lit{m}
			for _, c := range ce.When {
				ms = append(ms, read(a, c))
			}
			t[k+1] = d.and(ms...)
		}
		ts[i] = t
	}
	return ts
}

// encodeWrite asserts the effects of one writer on after: a firing add
// sets it, a firing delete clears it unless the same action also adds.
func (d *litMapping) encodeWrite(after z.Lit, add, del []z.Lit) {
	for _, t := range add {
		d.out.clause(t.Not(), after)
	}
	for _, t := range del {
		d.out.clause(append([]z.Lit{t.Not(), after.Not()}, add...)...)
	}
}

// encodeFrame asserts that the value only moves from before to after
// through one of the given triggers.
func (d *litMapping) encodeFrame(before, after z.Lit, add, del []z.Lit) {
	d.out.clause(append([]z.Lit{before, after.Not()}, add...)...)
	d.out.clause(append([]z.Lit{before.Not(), after}, del...)...)
}

// encodeTransition adds preconditions and effect conditions read at s,
// effects at s+1 and explanatory frame axioms: a fluent only changes
// when an effect firing at s changes it.
func (b *Builder) encodeTransition(s int) {
	d := b.d
	read := func(_ *grounding.Action, c grounding.Condition) z.Lit {
		return d.FluentAt(s, c.Fluent, c.Value)
	}
	b.encodeConditions(s, read)
	ts := b.triggers(s, read)
	for f, ws := range b.writers {
		before, after := d.FluentAt(s, f, true), d.FluentAt(s+1, f, true)
		var adds, dels []z.Lit
		for _, w := range ws {
			add, del := w.split(ts[w.action])
			d.encodeWrite(after, add, del)
			adds = append(adds, add...)
			dels = append(dels, del...)
		}
		d.encodeFrame(before, after, adds, dels)
	}
}

// encodeChains threads every fluent through the actions writing it, in
// action order. Slot 0 is the fluent at s, the last slot the fluent at
// s+1, and the writer at position i moves the value from slot i to slot
// i+1. A fluent without writers keeps its value. Conditions read the
// slot left by the closest earlier writer.
func (b *Builder) encodeChains(s int) {
	d := b.d
	chains := make([][]z.Lit, len(b.writers))
	for f, ws := range b.writers {
		chain := []z.Lit{d.FluentAt(s, f, true)}
		for i := 1; i < len(ws); i++ {
			chain = append(chain, d.c.Lit())
		}
		chains[f] = append(chain, d.FluentAt(s+1, f, true))
	}
	read := func(a *grounding.Action, c grounding.Condition) z.Lit {
		if c.Fluent < 0 || c.Fluent >= len(chains) {
			return d.FluentAt(s, c.Fluent, c.Value)
		}
		ws := b.writers[c.Fluent]
		slot := sort.Search(len(ws), func(i int) bool {
			return ws[i].action >= a.Index
		})
		m := chains[c.Fluent][slot]
		if !c.Value {
			m = m.Not()
		}
		return m
	}
	b.encodeConditions(s, read)
	ts := b.triggers(s, read)
	for f, ws := range b.writers {
		chain := chains[f]
		if len(ws) == 0 {
			d.encodeFrame(chain[0], chain[1], nil, nil)
			continue
		}
		for i, w := range ws {
			add, del := w.split(ts[w.action])
			d.encodeWrite(chain[i+1], add, del)
			d.encodeFrame(chain[i], chain[i+1], add, del)
		}
	}
}

// encodeGoal asserts the goal at step t. In incremental mode the goal is
// guarded by a fresh literal, which is returned so that it can be
// assumed for this length only.
func (b *Builder) encodeGoal(t int) z.Lit {
	d := b.d
	if !b.incremental {
		for _, c := range b.problem.Goals {
			d.out.clause(d.FluentAt(t, c.Fluent, c.Value))
		}
		return z.LitNull
	}
	if len(b.problem.Goals) == 0 {
		return z.LitNull
	}
	guard := d.c.Lit()
	for _, c := range b.problem.Goals {
		d.out.clause(guard.Not(), d.FluentAt(t, c.Fluent, c.Value))
	}
	return guard
}

// footprint collects the fluents an action may touch. add and del
// include conditional effects; preTrue and preFalse hold the values its
// preconditions and disjunctive preconditions ask for.
type footprint struct {
	reads, writes     sets.Set[int]
	add, del          sets.Set[int]
	preTrue, preFalse sets.Set[int]
	when              sets.Set[int]
}

func footprints(p *grounding.Problem) []footprint {
	out := make([]footprint, len(p.Actions))
	for i, a := range p.Actions {
		fp := footprint{
			reads:    sets.New[int](),
			writes:   sets.New[int](),
			add:      sets.New[int](),
			del:      sets.New[int](),
			preTrue:  sets.New[int](),
			preFalse: sets.New[int](),
			when:     sets.New[int](),
		}
		for _, c := range a.Reads() {
			fp.reads.Insert(c.Fluent)
		}
		for _, c := range a.Writes() {
			fp.writes.Insert(c.Fluent)
			if c.Value {
				fp.add.Insert(c.Fluent)
			} else {
				fp.del.Insert(c.Fluent)
			}
		}
		pre := append([]grounding.Condition(nil), a.Pre...)
		for _, clause := range a.AnyOf {
			pre = append(pre, clause...)
		}
		for _, c := range pre {
			if c.Value {
				fp.preTrue.Insert(c.Fluent)
			} else {
				fp.preFalse.Insert(c.Fluent)
			}
		}
		for _, ce := range a.Conditional {
			for _, c := range ce.When {
				fp.when.Insert(c.Fluent)
			}
		}
		out[i] = fp
	}
	return out
}

// forAllMutexes returns the action pairs where one action may change a
// fluent the other reads or writes.
func forAllMutexes(p *grounding.Problem) [][2]int {
	fps := footprints(p)
	touches := make([]sets.Set[int], len(fps))
	for i, fp := range fps {
		touches[i] = fp.writes.Union(fp.reads)
	}
	var pairs [][2]int
	for i := range fps {
		for j := i + 1; j < len(fps); j++ {
			if fps[i].writes.Intersection(touches[j]).Len() > 0 || fps[j].writes.Intersection(touches[i]).Len() > 0 {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

// thereExistsMutexes returns the pairs i < j, in action order, where i
// may falsify a precondition of j, may change a condition of j's
// effects, or the two may write opposite values.
func thereExistsMutexes(p *grounding.Problem) [][2]int {
	fps := footprints(p)
	var pairs [][2]int
	for i := range fps {
		for j := i + 1; j < len(fps); j++ {
			a, b := fps[i], fps[j]
			if a.add.Intersection(b.preFalse).Len() > 0 ||
				a.del.Intersection(b.preTrue).Len() > 0 ||
				a.writes.Intersection(b.when).Len() > 0 ||
				a.add.Intersection(b.del).Len() > 0 ||
				a.del.Intersection(b.add).Len() > 0 {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}
