package grounding

import (
	"sort"
	"strings"

	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"

	"github.com/operator-framework/smt-planner/pkg/planning/model"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
)

// ActionInstanceMap associates grounded action names with the original
// problem's action instances. It is never mutated after grounding.
type ActionInstanceMap struct {
	original map[string]plan.ActionInstance
}

func newActionInstanceMap() *ActionInstanceMap {
	return &ActionInstanceMap{
		original: make(map[string]plan.ActionInstance),
	}
}

func (m *ActionInstanceMap) add(grounded string, original plan.ActionInstance) {
	m.original[grounded] = original
}

// Len returns the number of mapped action instances.
func (m *ActionInstanceMap) Len() int {
	return len(m.original)
}

// MapBack translates an instance of the grounded problem into the
// original problem's vocabulary.
func (m *ActionInstanceMap) MapBack(a plan.ActionInstance) (plan.ActionInstance, error) {
	if len(a.Args) != 0 {
		return plan.ActionInstance{}, errors.Errorf("grounded action instance %s has arguments", a)
	}
	o, ok := m.original[a.Action]
	if !ok {
		return plan.ActionInstance{}, errors.Errorf("no original action for grounded action %q", a.Action)
	}
	return o, nil
}

type signature struct {
	Pre         []string
	AnyOf       []string
	Add         []string
	Del         []string
	Conditional []string
}

// Signature hashes the precondition/effect signature of a parameterless
// action. The hash ignores ordering and duplicates, and an atom both
// added and deleted by the same effect counts as added only.
func Signature(a model.Action) (uint64, error) {
	pres := map[string]bool{}
	for _, l := range a.Preconditions {
		pres[l.String()] = true
	}
	anyOf := map[string]bool{}
	for _, clause := range a.AnyOf {
		anyOf[literalSet(clause)] = true
	}
	adds, dels := effectSets(a.Effects)
	conditional := map[string]bool{}
	for _, ce := range a.ConditionalEffects {
		add, del := effectSets(ce.Effects)
		conditional[literalSet(ce.When)+" -> +"+strings.Join(sortedKeys(add), ",")+" -"+strings.Join(sortedKeys(del), ",")] = true
	}
	return hashstructure.Hash(signature{
		Pre:         sortedKeys(pres),
		AnyOf:       sortedKeys(anyOf),
		Add:         sortedKeys(adds),
		Del:         sortedKeys(dels),
		Conditional: sortedKeys(conditional),
	}, nil)
}

func literalSet(ls []model.Literal) string {
	set := map[string]bool{}
	for _, l := range ls {
		set[l.String()] = true
	}
	return "{" + strings.Join(sortedKeys(set), ",") + "}"
}

func effectSets(eff []model.Literal) (adds, dels map[string]bool) {
	adds = map[string]bool{}
	for _, l := range eff {
		if !l.Negated {
			adds[l.Atom.String()] = true
		}
	}
	dels = map[string]bool{}
	for _, l := range eff {
		if l.Negated && !adds[l.Atom.String()] {
			dels[l.Atom.String()] = true
		}
	}
	return adds, dels
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ActionSignature is Signature applied to a grounded action of p.
func ActionSignature(p *Problem, a *Action) (uint64, error) {
	inst := model.Action{
		Name:          a.Name,
		Preconditions: p.Literals(a.Pre),
		Effects:       p.Literals(a.Effects()),
	}
	for _, clause := range a.AnyOf {
		inst.AnyOf = append(inst.AnyOf, p.Literals(clause))
	}
	for _, ce := range a.Conditional {
		inst.ConditionalEffects = append(inst.ConditionalEffects, model.ConditionalEffect{
			When:    p.Literals(ce.When),
			Effects: p.Literals(ce.Effects()),
		})
	}
	return Signature(inst)
}
