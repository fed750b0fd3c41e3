package cassowary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpressionFolding(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")
	y := vars.New("y")

	e := NewExpression(5, x.Times(2), y.Times(1), x.Times(3))
	assert.Equal(5.0, e.Constant)
	assert.Len(e.Terms, 2)
	assert.Equal(5.0, e.CoefficientFor(x))
	assert.Equal(1.0, e.CoefficientFor(y))

	// canceling coefficients drop the variable entirely
	e = NewExpression(0, x.Times(2), x.Times(-2), y.Times(1))
	assert.Equal(0.0, e.CoefficientFor(x))
	assert.Len(e.Terms, 1)

	// terms come out ordered by allocation
	e = NewExpression(0, y.Times(1), x.Times(1))
	assert.Equal(x, e.Terms[0].Variable)
	assert.Equal(y, e.Terms[1].Variable)

	// invalid handles are ignored
	e = NewExpression(1, Term{Coefficient: 4})
	assert.True(e.IsConstant())
}

func TestExpressionArithmetic(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New("x")
	y := vars.New("y")

	sum := x.Expr().Add(y.Expr()).Add(Constant(3))
	assert.Equal(3.0, sum.Constant)
	assert.Equal(1.0, sum.CoefficientFor(x))
	assert.Equal(1.0, sum.CoefficientFor(y))

	diff := sum.Sub(x.Expr())
	assert.Equal(0.0, diff.CoefficientFor(x))
	assert.Equal(1.0, diff.CoefficientFor(y))

	scaled := sum.Scale(2)
	assert.Equal(6.0, scaled.Constant)
	assert.Equal(2.0, scaled.CoefficientFor(x))

	halved := scaled.Div(2)
	assert.Equal(3.0, halved.Constant)
	assert.Equal(1.0, halved.CoefficientFor(x))

	neg := sum.Neg()
	assert.Equal(-3.0, neg.Constant)
	assert.Equal(-1.0, neg.CoefficientFor(y))

	// builders never mutate their receiver
	assert.Equal(3.0, sum.Constant)
	assert.Equal(1.0, sum.CoefficientFor(x))
}

func TestExpressionString(t *testing.T) {
	assert := require.New(t)

	vars := NewVars()
	x := vars.New()

	assert.Equal("5", Constant(5).String())
	assert.Equal("2*"+x.String(), NewExpression(0, x.Times(2)).String())
	assert.Equal("1*"+x.String()+" + -3", NewExpression(-3, x.Times(1)).String())
}
