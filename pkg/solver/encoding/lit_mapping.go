package encoding

import (
	"fmt"
	"strings"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

type inconsistentLitMapping []error

func (e inconsistentLitMapping) Error() string {
	s := make([]string, len(e))
	for i, err := range e {
		s[i] = err.Error()
	}
	return fmt.Sprintf("%d errors encountered: %s", len(s), strings.Join(s, ", "))
}

// clauseCounter counts the clauses taught to the underlying solver.
type clauseCounter struct {
	inter.Adder
	clauses int
}

func (c *clauseCounter) Add(m z.Lit) {
	c.Adder.Add(m)
	if m == z.LitNull {
		c.clauses++
	}
}

func (c *clauseCounter) clause(ms ...z.Lit) {
	for _, m := range ms {
		c.Add(m)
	}
	c.Add(z.LitNull)
}

// litMapping holds one solver instance together with the literals it
// assigns to every fluent and action at every encoded step. All
// variables are allocated from the circuit so that cardinality
// networks share its numbering.
type litMapping struct {
	c     *logic.C
	g     *gini.Gini
	out   *clauseCounter
	marks []int8

	fluents [][]z.Lit
	actions [][]z.Lit
	mutexes int
	errs    inconsistentLitMapping
}

func newLitMapping(fluents, actions int) *litMapping {
	g := gini.New()
	d := &litMapping{
		c:   logic.NewCCap(fluents + actions),
		g:   g,
		out: &clauseCounter{Adder: g},
	}
	return d
}

// Steps returns the number of encoded transitions.
func (d *litMapping) Steps() int {
	return len(d.actions)
}

func (d *litMapping) addState(n int) []z.Lit {
	ms := make([]z.Lit, n)
	for i := range ms {
		ms[i] = d.c.Lit()
	}
	d.fluents = append(d.fluents, ms)
	return ms
}

func (d *litMapping) addActions(n int) []z.Lit {
	ms := make([]z.Lit, n)
	for i := range ms {
		ms[i] = d.c.Lit()
	}
	d.actions = append(d.actions, ms)
	return ms
}

// FluentAt returns the literal asserting that fluent f has value v at
// step s.
func (d *litMapping) FluentAt(s, f int, v bool) z.Lit {
	if s < 0 || s >= len(d.fluents) || f < 0 || f >= len(d.fluents[s]) {
		d.errs = append(d.errs, fmt.Errorf("fluent %d referenced at step %d but not encoded", f, s))
		return d.c.F
	}
	m := d.fluents[s][f]
	if !v {
		m = m.Not()
	}
	return m
}

// ActionAt returns the literal of action a at step s.
func (d *litMapping) ActionAt(s, a int) z.Lit {
	if s < 0 || s >= len(d.actions) || a < 0 || a >= len(d.actions[s]) {
		d.errs = append(d.errs, fmt.Errorf("action %d referenced at step %d but not encoded", a, s))
		return d.c.F
	}
	return d.actions[s][a]
}

// AtMostOne adds a sorting network over ms and asserts that at most one
// of them holds.
func (d *litMapping) AtMostOne(ms []z.Lit) {
	if len(ms) < 2 {
		return
	}
	cs := d.c.CardSort(ms)
	leq := cs.Leq(1)
	d.marks, _ = d.c.CnfSince(d.out, d.marks, leq)
	d.out.clause(leq)
}

// and returns a literal equivalent to the conjunction of ms.
func (d *litMapping) and(ms ...z.Lit) z.Lit {
	if len(ms) == 1 {
		return ms[0]
	}
	m := d.c.Ands(ms...)
	d.marks, _ = d.c.CnfSince(d.out, d.marks, m)
	return m
}

// Value reports the value of m in the last satisfying model. Literals
// the solver never saw are false.
func (d *litMapping) Value(m z.Lit) bool {
	if m.Var() > d.g.MaxVar() {
		return false
	}
	return d.g.Value(m)
}

// Variables returns the number of solver variables.
func (d *litMapping) Variables() int {
	return int(d.g.MaxVar())
}

// Error returns a single error value that is an aggregation of all
// errors encountered during a litMapping's lifetime, or nil if there have
// been no errors.
func (d *litMapping) Error() error {
	if len(d.errs) == 0 {
		return nil
	}
	return d.errs
}
