package encoding

import (
	"fmt"
	"strings"
)

// Parallelism selects which sets of actions may share a step.
type Parallelism int

const (
	// Sequential allows at most one action per step.
	Sequential Parallelism = iota
	// ForAll allows actions to share a step when no action changes a
	// fluent another one reads or writes, so every ordering is valid.
	ForAll
	// ThereExists allows actions to share a step when executing them in
	// the fixed action order is valid.
	ThereExists
	// RelaxedThereExists lets actions within a step observe the effects
	// of actions earlier in the fixed order.
	RelaxedThereExists
)

var parallelismNames = map[Parallelism]string{
	Sequential:         "sequential",
	ForAll:             "ForAll",
	ThereExists:        "ThereExists",
	RelaxedThereExists: "relaxed_ThereExists",
}

var parallelismAliases = map[string]Parallelism{
	"relaxed_relaxed_ThereExists": RelaxedThereExists,
}

// Parallelisms lists the accepted mode names.
func Parallelisms() []string {
	return []string{"sequential", "ForAll", "ThereExists", "relaxed_ThereExists"}
}

// ParseParallelism resolves a mode name. The empty string selects
// Sequential.
func ParseParallelism(s string) (Parallelism, error) {
	if s == "" {
		return Sequential, nil
	}
	for p, name := range parallelismNames {
		if name == s {
			return p, nil
		}
	}
	if p, ok := parallelismAliases[s]; ok {
		return p, nil
	}
	return Sequential, fmt.Errorf("unknown parallelism %q, expected one of %s", s, strings.Join(Parallelisms(), ", "))
}

func (p Parallelism) String() string {
	if name, ok := parallelismNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Parallelism(%d)", int(p))
}

// Set implements pflag.Value.
func (p *Parallelism) Set(s string) error {
	v, err := ParseParallelism(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Type implements pflag.Value.
func (p *Parallelism) Type() string {
	return "parallelism"
}

func (p Parallelism) MarshalText() ([]byte, error) {
	if _, ok := parallelismNames[p]; !ok {
		return nil, fmt.Errorf("unknown parallelism %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Parallelism) UnmarshalText(text []byte) error {
	return p.Set(string(text))
}
