package cassowary

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// fetchMap folds a change set into a map for order-independent assertions.
func fetchMap(s *Solver) map[Variable]float64 {
	m := make(map[Variable]float64)
	for _, ch := range s.FetchChanges() {
		m[ch.Variable] = ch.Value
	}
	return m
}

func TestRequiredSatisfaction(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")
	y := vars.New("y")

	s := NewSolver()
	assert.NoError(s.AddConstraint(NewConstraint(x.Expr().Sub(Constant(10)), EQ, Required)))
	assert.NoError(s.AddConstraint(NewConstraint(x.Expr().Add(y.Expr()).Sub(Constant(30)), EQ, Required)))

	got := fetchMap(s)
	assert.InDelta(10, got[x], 1e-8)
	assert.InDelta(20, got[y], 1e-8)
	assert.InDelta(10, s.Value(x), 1e-8)
	assert.InDelta(20, s.Value(y), 1e-8)
}

func TestInequalities(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")

	s := NewSolver()
	assert.NoError(s.AddConstraints(
		NewConstraint(x.Expr().Sub(Constant(10)), GE, Required),
		NewConstraint(x.Expr().Sub(Constant(100)), LE, Required),
		NewConstraint(x.Expr().Sub(Constant(5)), EQ, Strong),
	))

	// strong pull to 5 stops at the required lower bound
	got := fetchMap(s)
	assert.InDelta(10, got[x], 1e-8)
}

func TestStrengthDominance(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()

	for name, order := range map[string][2]Strength{
		"strong first": {Strong, Medium},
		"medium first": {Medium, Strong},
	} {
		x := vars.New("x")
		targets := map[Strength]float64{Strong: 100, Medium: 50}

		s := NewSolver()
		for _, strength := range order {
			c := NewConstraint(x.Expr().Sub(Constant(targets[strength])), EQ, strength)
			assert.NoError(s.AddConstraint(c), name)
		}

		// the stronger target wins whatever the insertion order
		got := fetchMap(s)
		assert.InDelta(100, got[x], 1e-8, name)
	}
}

func TestFetchChangesIdempotent(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")

	s := NewSolver()
	assert.NoError(s.AddConstraint(NewConstraint(x.Expr().Sub(Constant(7)), EQ, Required)))

	assert.NotEmpty(s.FetchChanges())
	assert.Empty(s.FetchChanges())
	assert.InDelta(7, s.Value(x), 1e-8)
}

func TestFetchChangesOrderedByAllocation(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")
	y := vars.New("y")

	s := NewSolver()
	// y is constrained first, x second; changes still come out in
	// allocation order
	assert.NoError(s.AddConstraint(NewConstraint(y.Expr().Sub(Constant(2)), EQ, Required)))
	assert.NoError(s.AddConstraint(NewConstraint(x.Expr().Sub(Constant(1)), EQ, Required)))

	want := []Change{{Variable: x, Value: 1}, {Variable: y, Value: 2}}
	if diff := cmp.Diff(want, s.FetchChanges(), cmp.AllowUnexported(Variable{})); diff != "" {
		assert.Fail("change set mismatch", diff)
	}
}

func TestValueReadsSnapshotOnly(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")

	s := NewSolver()
	assert.NoError(s.AddConstraint(NewConstraint(x.Expr().Sub(Constant(3)), EQ, Required)))

	// mutations are not observable until a fetch
	assert.Equal(0.0, s.Value(x))
	s.FetchChanges()
	assert.InDelta(3, s.Value(x), 1e-8)
}

func TestDuplicateConstraint(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")

	s := NewSolver()
	c := NewConstraint(x.Expr(), GE, Required)
	assert.NoError(s.AddConstraint(c))
	assert.ErrorIs(s.AddConstraint(c), ErrDuplicateConstraint)

	// a structural twin is a distinct constraint
	twin := NewConstraint(x.Expr(), GE, Required)
	assert.NoError(s.AddConstraint(twin))
	assert.True(s.HasConstraint(c))
	assert.True(s.HasConstraint(twin))
}

func TestRemoveConstraint(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")

	s := NewSolver()
	strong := NewConstraint(x.Expr().Sub(Constant(10)), EQ, Strong)
	weak := NewConstraint(x.Expr().Sub(Constant(20)), EQ, Weak)
	assert.NoError(s.AddConstraints(strong, weak))
	assert.InDelta(10, fetchMap(s)[x], 1e-8)

	// with the strong target gone the weak one takes over
	assert.NoError(s.RemoveConstraint(strong))
	assert.False(s.HasConstraint(strong))
	assert.InDelta(20, fetchMap(s)[x], 1e-8)

	assert.ErrorIs(s.RemoveConstraint(strong), ErrUnknownConstraint)
}

func TestAddConstraintsAtomicFailure(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	y := vars.New("y")

	s := NewSolver()
	ok := NewConstraint(y.Expr(), GE, Required)
	bad := NewConstraint(Constant(5), LE, Required)

	err := s.AddConstraints(ok, bad)
	assert.ErrorIs(err, ErrUnsatisfiableConstraint)

	// the already-added prefix was taken out again
	assert.False(s.HasConstraint(ok))
	assert.Empty(s.FetchChanges())
}

func TestUnsatisfiableRollback(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")

	s := NewSolver()
	lower := NewConstraint(x.Expr().Sub(Constant(10)), GE, Required)
	assert.NoError(s.AddConstraint(lower))
	assert.InDelta(10, fetchMap(s)[x], 1e-8)

	conflicting := NewConstraint(x.Expr().Sub(Constant(5)), LE, Required)
	assert.ErrorIs(s.AddConstraint(conflicting), ErrUnsatisfiableConstraint)

	// the failed call left no trace
	assert.False(s.HasConstraint(conflicting))
	assert.Empty(s.FetchChanges())
	assert.InDelta(10, s.Value(x), 1e-8)
	assert.True(s.HasConstraint(lower))

	// and the solver still accepts compatible constraints
	assert.NoError(s.AddConstraint(NewConstraint(x.Expr().Sub(Constant(20)), LE, Required)))
	assert.Empty(s.FetchChanges())
	assert.InDelta(10, s.Value(x), 1e-8)
}

func TestDegenerateConstraints(t *testing.T) {
	assert := require.New(t)

	s := NewSolver()

	// trivially satisfiable: -5 <= 0 and 0 == 0
	assert.NoError(s.AddConstraint(NewConstraint(Constant(-5), LE, Required)))
	assert.NoError(s.AddConstraint(NewConstraint(Constant(0), EQ, Required)))

	// trivially unsatisfiable: 5 == 0
	assert.ErrorIs(s.AddConstraint(NewConstraint(Constant(5), EQ, Required)), ErrUnsatisfiableConstraint)
}

func TestRemovalRestoresFeasibility(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")

	s := NewSolver()
	lower := NewConstraint(x.Expr().Sub(Constant(10)), GE, Required)
	upper := NewConstraint(x.Expr().Sub(Constant(5)), LE, Required)

	assert.NoError(s.AddConstraint(lower))
	assert.ErrorIs(s.AddConstraint(upper), ErrUnsatisfiableConstraint)

	// removing the sole conflicting constraint unblocks the rejected one
	assert.NoError(s.RemoveConstraint(lower))
	assert.NoError(s.AddConstraint(upper))
	assert.LessOrEqual(fetchMap(s)[x], 5+1e-8)
}

func TestEditVariableErrors(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")

	s := NewSolver()
	assert.ErrorIs(s.AddEditVariable(x, Required), ErrBadRequiredStrength)
	assert.ErrorIs(s.AddEditVariable(x, Required+1), ErrBadRequiredStrength)
	assert.ErrorIs(s.SuggestValue(x, 1), ErrUnknownEditVariable)
	assert.ErrorIs(s.RemoveEditVariable(x), ErrUnknownEditVariable)

	assert.NoError(s.AddEditVariable(x, Strong))
	assert.ErrorIs(s.AddEditVariable(x, Weak), ErrDuplicateEditVariable)
	assert.True(s.HasEditVariable(x))
}

func TestSuggestValue(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")
	y := vars.New("y")

	s := NewSolver()
	assert.NoError(s.AddEditVariable(x, Strong))
	// y = x + 5
	assert.NoError(s.AddConstraint(NewConstraint(y.Expr().Sub(x.Expr()).Sub(Constant(5)), EQ, Required)))
	s.FetchChanges()

	assert.NoError(s.SuggestValue(x, 10))
	got := fetchMap(s)
	assert.InDelta(10, got[x], 1e-8)
	assert.InDelta(15, got[y], 1e-8)

	assert.NoError(s.SuggestValue(x, -2))
	got = fetchMap(s)
	assert.InDelta(-2, got[x], 1e-8)
	assert.InDelta(3, got[y], 1e-8)
}

func TestSuggestValueIncremental(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")
	y := vars.New("y")
	z := vars.New("z")

	s := NewSolver()
	assert.NoError(s.AddEditVariable(x, Strong))
	assert.NoError(s.AddConstraint(NewConstraint(y.Expr().Sub(x.Expr()), EQ, Required)))
	assert.NoError(s.AddConstraint(NewConstraint(z.Expr().Sub(Constant(7)), EQ, Required)))
	s.FetchChanges()

	// z is not reachable from x's constraint graph and must not reappear
	assert.NoError(s.SuggestValue(x, 3))
	got := fetchMap(s)
	assert.InDelta(3, got[x], 1e-8)
	assert.InDelta(3, got[y], 1e-8)
	assert.NotContains(got, z)
}

func TestEditVariableLifecycle(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")

	s := NewSolver()
	assert.NoError(s.AddEditVariable(x, Medium))
	assert.NoError(s.SuggestValue(x, 42))
	assert.InDelta(42, fetchMap(s)[x], 1e-8)

	assert.NoError(s.RemoveEditVariable(x))
	assert.False(s.HasEditVariable(x))
	assert.ErrorIs(s.SuggestValue(x, 1), ErrUnknownEditVariable)
}

// threeColumnScenario drives the end-to-end layout case: three columns laid
// end to end in a container suggested to width 50, preferred widths 60/30/10
// at strong strength, 2:1 and 3:1 width ratios at medium strength. The
// preferred widths cannot fit, so the ratios decide the split.
func threeColumnScenario() (widths, lefts [3]float64, err error) {
	vars := NewVars()
	cw := vars.New("container.width")
	var x, w [3]Variable
	for i := range x {
		x[i] = vars.New()
		w[i] = vars.New()
	}

	s := NewSolver()
	if err = s.AddEditVariable(cw, Required-1); err != nil {
		return
	}
	if err = s.AddConstraint(NewConstraint(cw.Expr(), GE, Required)); err != nil {
		return
	}
	for i := range x {
		if err = s.AddConstraints(
			NewConstraint(x[i].Expr(), GE, Required),
			NewConstraint(w[i].Expr(), GE, Required),
			NewConstraint(x[i].Expr().Add(w[i].Expr()).Sub(cw.Expr()), LE, Required),
		); err != nil {
			return
		}
	}
	prefer := [3]float64{60, 30, 10}
	for i := range x {
		if err = s.AddConstraint(NewConstraint(w[i].Expr().Sub(Constant(prefer[i])), EQ, Strong)); err != nil {
			return
		}
	}
	if err = s.AddConstraints(
		NewConstraint(x[0].Expr().Add(w[0].Expr()).Sub(x[1].Expr()), EQ, Required),
		NewConstraint(x[1].Expr().Add(w[1].Expr()).Sub(x[2].Expr()), EQ, Required),
		NewConstraint(w[0].Expr().Div(2).Sub(w[1].Expr()), EQ, Medium),
		NewConstraint(w[1].Expr().Div(3).Sub(w[2].Expr()), EQ, Medium),
	); err != nil {
		return
	}

	if err = s.SuggestValue(cw, 50); err != nil {
		return
	}
	s.FetchChanges()
	for i := range x {
		widths[i] = s.Value(w[i])
		lefts[i] = s.Value(x[i])
	}
	return
}

func TestThreeColumnScenario(t *testing.T) {
	assert := require.New(t)

	widths, lefts, err := threeColumnScenario()
	assert.NoError(err)
	assert.InDelta(30, widths[0], 1e-8)
	assert.InDelta(15, widths[1], 1e-8)
	assert.InDelta(5, widths[2], 1e-8)
	assert.InDelta(0, lefts[0], 1e-8)
	assert.InDelta(30, lefts[1], 1e-8)
	assert.InDelta(45, lefts[2], 1e-8)
}

func TestIndependentSolversInParallel(t *testing.T) {
	assert := require.New(t)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			widths, _, err := threeColumnScenario()
			if err != nil {
				return err
			}
			want := [3]float64{30, 15, 5}
			for i := range widths {
				if !nearZero(widths[i] - want[i]) {
					return internalError("unexpected widths")
				}
			}
			return nil
		})
	}
	assert.NoError(g.Wait())
}
