package planner

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/operator-framework/smt-planner/pkg/solver/encoding"
	"github.com/operator-framework/smt-planner/pkg/solver/search"
)

// ResetSolver is the use_incremental_solving value that rebuilds the
// solver for every plan length.
const ResetSolver = "reset_solver"

// Options configure an SMTPlanner. The zero value searches sequential
// plans of unbounded length with incremental solving.
type Options struct {
	// MaxLength bounds the plan length, inclusive. Nil or negative means
	// unbounded.
	MaxLength     *int
	Parallelism   encoding.Parallelism
	ForAllGetSets bool
	ResetSolver   bool
	// StatsOutput is where statistics of a successful run are written.
	StatsOutput string
	UnitTest    bool
}

// Normalize returns a copy of o with inapplicable settings cleared.
func (o Options) Normalize() Options {
	if o.MaxLength != nil && *o.MaxLength < 0 {
		o.MaxLength = nil
	}
	if o.MaxLength != nil {
		n := *o.MaxLength
		o.MaxLength = &n
	}
	if o.Parallelism != encoding.ForAll {
		o.ForAllGetSets = false
	}
	return o
}

func (o Options) search(runID string) search.Options {
	return search.Options{
		RunID:         runID,
		MaxLength:     o.MaxLength,
		Parallelism:   o.Parallelism,
		ForAllGetSets: o.ForAllGetSets,
		Incremental:   !o.ResetSolver,
		UnitTest:      o.UnitTest,
	}
}

// OptionsFromMap reads the planner's named options, as found in
// configuration files. Unknown names and mistyped values are reported
// together.
func OptionsFromMap(m map[string]interface{}) (Options, error) {
	var o Options
	var errs []error
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := m[k]
		var err error
		switch k {
		case "max_length":
			o.MaxLength = maxLength(v)
		case "parallelism":
			s, ok := v.(string)
			if !ok {
				err = fmt.Errorf("expected a string, got %T", v)
				break
			}
			o.Parallelism, err = encoding.ParseParallelism(s)
		case "forall_get_sets", "ForAll_get_sets":
			o.ForAllGetSets, err = boolOption(v)
		case "use_incremental_solving":
			if s, ok := v.(string); ok {
				if s != ResetSolver {
					err = fmt.Errorf("expected a boolean or %q, got %q", ResetSolver, s)
				}
				o.ResetSolver = true
				break
			}
			var incremental bool
			incremental, err = boolOption(v)
			o.ResetSolver = !incremental
		case "stats_output":
			s, ok := v.(string)
			if !ok {
				err = fmt.Errorf("expected a string, got %T", v)
			}
			o.StatsOutput = s
		case "unit_test":
			o.UnitTest, err = boolOption(v)
		default:
			err = errors.New("unknown option")
		}
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "option %q", k))
		}
	}
	if err := utilerrors.NewAggregate(errs); err != nil {
		return Options{}, err
	}
	return o.Normalize(), nil
}

// maxLength accepts any non-negative integral number and treats
// everything else as unbounded.
func maxLength(v interface{}) *int {
	var n int64
	switch v := v.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		n = int64(v)
	case uint64:
		if v > math.MaxInt32 {
			return nil
		}
		n = int64(v)
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 {
			return nil
		}
		n = int64(v)
	default:
		return nil
	}
	if n < 0 || n > math.MaxInt32 {
		return nil
	}
	i := int(n)
	return &i
}

func boolOption(v interface{}) (bool, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	}
	return false, fmt.Errorf("expected a boolean, got %T", v)
}

// AddFlags binds the options to flags of fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.Var(&maxLengthValue{p: &o.MaxLength}, "max-length", "longest plan length to check, negative for unbounded")
	fs.Var(&o.Parallelism, "parallelism", fmt.Sprintf("which actions may share a step, one of %v", encoding.Parallelisms()))
	fs.BoolVar(&o.ForAllGetSets, "forall-get-sets", false, "return ForAll plans as partial-order plans of parallel steps")
	fs.BoolVar(&o.ResetSolver, "reset-solver", false, "rebuild the solver for every plan length instead of solving incrementally")
	fs.StringVar(&o.StatsOutput, "stats-output", "", "write search statistics to this file (.db, .sqlite, .json or YAML)")
	fs.BoolVar(&o.UnitTest, "unit-test", false, "return the raw action sequence without assembling and validating a plan")
}

type maxLengthValue struct {
	p **int
}

func (v *maxLengthValue) String() string {
	if v.p == nil || *v.p == nil {
		return "-1"
	}
	return strconv.Itoa(**v.p)
}

func (v *maxLengthValue) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if n < 0 {
		*v.p = nil
		return nil
	}
	*v.p = &n
	return nil
}

func (v *maxLengthValue) Type() string {
	return "int"
}
