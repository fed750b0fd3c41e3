package cassowary

import (
	"testing"

	"golang.org/x/exp/rand"
)

func BenchmarkAddConstraint(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	const chain = 100

	vars := NewVars()
	xs := make([]Variable, chain+1)
	for i := range xs {
		xs[i] = vars.New()
	}
	batch := make([]*Constraint, chain)
	for i := 0; i < chain; i++ {
		gap := 1 + rng.Float64()*9
		batch[i] = NewConstraint(xs[i+1].Expr().Sub(xs[i].Expr()).Sub(Constant(gap)), EQ, Required)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := NewSolver()
		for _, c := range batch {
			if err := s.AddConstraint(c); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkSuggestValue(b *testing.B) {
	rng := rand.New(rand.NewSource(2))
	const columns = 20

	vars := NewVars()
	cw := vars.New("container.width")
	s := NewSolver()
	if err := s.AddEditVariable(cw, Required-1); err != nil {
		b.Fatal(err)
	}

	var prev Variable
	for i := 0; i < columns; i++ {
		x, w := vars.New(), vars.New()
		err := s.AddConstraints(
			NewConstraint(x.Expr(), GE, Required),
			NewConstraint(w.Expr(), GE, Required),
			NewConstraint(x.Expr().Add(w.Expr()).Sub(cw.Expr()), LE, Required),
			NewConstraint(w.Expr().Sub(Constant(10+rng.Float64()*50)), EQ, Strong),
		)
		if err != nil {
			b.Fatal(err)
		}
		if prev.Valid() {
			if err := s.AddConstraint(NewConstraint(w.Expr().Sub(prev.Expr()), EQ, Medium)); err != nil {
				b.Fatal(err)
			}
		}
		prev = w
	}
	s.FetchChanges()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.SuggestValue(cw, 100+rng.Float64()*900); err != nil {
			b.Fatal(err)
		}
		s.FetchChanges()
	}
}
