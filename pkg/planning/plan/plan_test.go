package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func a(name string, args ...string) ActionInstance {
	return ActionInstance{Action: name, Args: args}
}

func TestPartialOrderPlan(t *testing.T) {
	p := PartialOrderPlan{Steps: [][]ActionInstance{
		{a("move", "d1", "d2"), a("move", "d3", "d4")},
		{a("move", "d2", "d3")},
		{a("finish")},
	}}

	assert.Equal(t, PartialOrderKind, p.Kind())
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, []Edge{{From: 0, To: 1}, {From: 1, To: 2}}, p.Edges())
	assert.Equal(t, SequentialPlan{Actions: []ActionInstance{
		a("move", "d1", "d2"), a("move", "d3", "d4"), a("move", "d2", "d3"), a("finish"),
	}}, p.ToSequential())
	assert.Nil(t, PartialOrderPlan{Steps: [][]ActionInstance{{a("x")}}}.Edges())
}

func TestReplaceActionInstances(t *testing.T) {
	upper := func(in ActionInstance) (ActionInstance, error) {
		return ActionInstance{Action: in.Action + "'", Args: in.Args}, nil
	}

	t.Run("sequential", func(t *testing.T) {
		p := SequentialPlan{Actions: []ActionInstance{a("x", "1"), a("y")}}
		out, err := p.ReplaceActionInstances(upper)
		require.NoError(t, err)
		assert.Equal(t, SequentialPlan{Actions: []ActionInstance{a("x'", "1"), a("y'")}}, out)
		// the receiver is left untouched
		assert.Equal(t, "x", p.Actions[0].Action)
	})

	t.Run("partial order", func(t *testing.T) {
		p := PartialOrderPlan{Steps: [][]ActionInstance{{a("x"), a("y")}, {a("z")}}}
		out, err := p.ReplaceActionInstances(upper)
		require.NoError(t, err)
		assert.Equal(t, PartialOrderPlan{Steps: [][]ActionInstance{{a("x'"), a("y'")}, {a("z'")}}}, out)
	})

	t.Run("error stops replacement", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := SequentialPlan{Actions: []ActionInstance{a("x")}}.ReplaceActionInstances(func(ActionInstance) (ActionInstance, error) {
			return ActionInstance{}, boom
		})
		assert.Equal(t, boom, err)
	})
}

func TestActionInstance(t *testing.T) {
	assert.Equal(t, "move(l1, l2)", a("move", "l1", "l2").String())
	assert.Equal(t, "finish()", a("finish").String())
	assert.True(t, a("move", "l1").Equal(a("move", "l1")))
	assert.False(t, a("move", "l1").Equal(a("move", "l2")))
	assert.False(t, a("move", "l1").Equal(a("move", "l1", "l2")))
}

func TestEncoded(t *testing.T) {
	for _, p := range []Plan{
		SequentialPlan{Actions: []ActionInstance{a("x")}},
		PartialOrderPlan{Steps: [][]ActionInstance{{a("x"), a("y")}}},
	} {
		out, err := Encode(p).Decode()
		require.NoError(t, err)
		assert.Equal(t, p, out)
	}

	var nilEncoded *Encoded
	out, err := nilEncoded.Decode()
	assert.NoError(t, err)
	assert.Nil(t, out)

	_, err = (&Encoded{Kind: "bogus"}).Decode()
	assert.Error(t, err)
}
