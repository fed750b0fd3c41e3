package cassowary

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSolverProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("required bounds always hold over a weaker target", prop.ForAll(
		func(lo, span, target float64) bool {
			hi := lo + span

			vars := NewVars()
			x := vars.New("x")
			s := NewSolver()
			err := s.AddConstraints(
				NewConstraint(x.Expr().Sub(Constant(lo)), GE, Required),
				NewConstraint(x.Expr().Sub(Constant(hi)), LE, Required),
				NewConstraint(x.Expr().Sub(Constant(target)), EQ, Strong),
			)
			if err != nil {
				return false
			}
			s.FetchChanges()
			want := math.Min(math.Max(target, lo), hi)
			return math.Abs(s.Value(x)-want) < 1e-6
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(0.5, 100),
		gen.Float64Range(-250, 250),
	))

	properties.Property("the stronger of two targets wins", prop.ForAll(
		func(a, b float64) bool {
			vars := NewVars()
			x := vars.New("x")
			s := NewSolver()
			err := s.AddConstraints(
				NewConstraint(x.Expr().Sub(Constant(a)), EQ, Strong),
				NewConstraint(x.Expr().Sub(Constant(b)), EQ, Medium),
			)
			if err != nil {
				return false
			}
			s.FetchChanges()
			return math.Abs(s.Value(x)-a) < 1e-6
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
	))

	properties.Property("a second fetch with no mutation is empty", prop.ForAll(
		func(v1, v2 float64) bool {
			vars := NewVars()
			x := vars.New("x")
			y := vars.New("y")
			s := NewSolver()
			if err := s.AddEditVariable(x, Strong); err != nil {
				return false
			}
			if err := s.AddConstraint(NewConstraint(y.Expr().Sub(x.Expr().Scale(2)), EQ, Required)); err != nil {
				return false
			}
			if err := s.SuggestValue(x, v1); err != nil {
				return false
			}
			if err := s.SuggestValue(x, v2); err != nil {
				return false
			}
			s.FetchChanges()
			return len(s.FetchChanges()) == 0
		},
		gen.Float64Range(-1000, 1000),
		gen.Float64Range(-1000, 1000),
	))

	properties.Property("removing an overriding constraint restores the value", prop.ForAll(
		func(a, b float64) bool {
			vars := NewVars()
			x := vars.New("x")
			s := NewSolver()
			if err := s.AddConstraint(NewConstraint(x.Expr().Sub(Constant(a)), EQ, Medium)); err != nil {
				return false
			}
			s.FetchChanges()
			override := NewConstraint(x.Expr().Sub(Constant(b)), EQ, Strong)
			if err := s.AddConstraint(override); err != nil {
				return false
			}
			s.FetchChanges()
			if math.Abs(s.Value(x)-b) > 1e-6 {
				return false
			}
			if err := s.RemoveConstraint(override); err != nil {
				return false
			}
			s.FetchChanges()
			return math.Abs(s.Value(x)-a) < 1e-6
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
