package plan

import "fmt"

// Encoded is the serialisable form of a Plan.
type Encoded struct {
	Kind    Kind               `json:"kind"`
	Actions []ActionInstance   `json:"actions,omitempty"`
	Steps   [][]ActionInstance `json:"steps,omitempty"`
}

// Encode converts p to its serialisable form. A nil plan encodes to nil.
func Encode(p Plan) *Encoded {
	switch p := p.(type) {
	case SequentialPlan:
		return &Encoded{Kind: SequentialKind, Actions: p.Actions}
	case PartialOrderPlan:
		return &Encoded{Kind: PartialOrderKind, Steps: p.Steps}
	}
	return nil
}

// Decode converts e back into a Plan.
func (e *Encoded) Decode() (Plan, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Kind {
	case SequentialKind:
		return SequentialPlan{Actions: e.Actions}, nil
	case PartialOrderKind:
		return PartialOrderPlan{Steps: e.Steps}, nil
	}
	return nil, fmt.Errorf("unknown plan kind %q", e.Kind)
}
