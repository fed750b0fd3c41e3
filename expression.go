// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cassowary

import (
	"slices"
	"strconv"
	"strings"
)

// Term is one coefficient*variable product inside an expression.
type Term struct {
	Variable    Variable
	Coefficient float64
}

func (t Term) String() string {
	return formatFloat(t.Coefficient) + "*" + t.Variable.String()
}

// Expression is the linear form sum(coefficient_i * variable_i) + constant.
// Expressions are immutable values: every builder returns a fresh expression
// and never touches a solver. Terms are kept folded (one term per variable,
// near-zero coefficients dropped) and ordered by variable id, so structurally
// equal forms compare equal with reflect-style diffing.
type Expression struct {
	Terms    []Term
	Constant float64
}

// Constant returns the expression holding only the constant k.
func Constant(k float64) Expression {
	return Expression{Constant: k}
}

// NewExpression builds the expression constant + sum(terms), folding
// duplicate variables by summing their coefficients and dropping variables
// whose folded coefficient vanishes.
func NewExpression(constant float64, terms ...Term) Expression {
	folded := make([]Term, 0, len(terms))
	for _, t := range terms {
		if !t.Variable.Valid() {
			continue
		}
		if i := termIndex(folded, t.Variable); i >= 0 {
			folded[i].Coefficient += t.Coefficient
		} else {
			folded = append(folded, t)
		}
	}
	folded = slices.DeleteFunc(folded, func(t Term) bool { return nearZero(t.Coefficient) })
	slices.SortFunc(folded, func(a, b Term) int {
		switch {
		case a.Variable.id < b.Variable.id:
			return -1
		case a.Variable.id > b.Variable.id:
			return 1
		}
		return 0
	})
	return Expression{Terms: folded, Constant: constant}
}

func termIndex(terms []Term, v Variable) int {
	return slices.IndexFunc(terms, func(t Term) bool { return t.Variable == v })
}

// Add returns e + other.
func (e Expression) Add(other Expression) Expression {
	terms := make([]Term, 0, len(e.Terms)+len(other.Terms))
	terms = append(terms, e.Terms...)
	terms = append(terms, other.Terms...)
	return NewExpression(e.Constant+other.Constant, terms...)
}

// Sub returns e - other.
func (e Expression) Sub(other Expression) Expression {
	return e.Add(other.Neg())
}

// Neg returns -e.
func (e Expression) Neg() Expression {
	return e.Scale(-1)
}

// Scale returns k*e.
func (e Expression) Scale(k float64) Expression {
	terms := make([]Term, 0, len(e.Terms))
	for _, t := range e.Terms {
		terms = append(terms, Term{Variable: t.Variable, Coefficient: t.Coefficient * k})
	}
	return NewExpression(e.Constant*k, terms...)
}

// Div returns e/k. Division keeps IEEE semantics; k is expected nonzero.
func (e Expression) Div(k float64) Expression {
	return e.Scale(1 / k)
}

// IsConstant reports whether e carries no variable terms.
func (e Expression) IsConstant() bool {
	return len(e.Terms) == 0
}

// CoefficientFor returns the folded coefficient of v in e, zero if absent.
func (e Expression) CoefficientFor(v Variable) float64 {
	if i := termIndex(e.Terms, v); i >= 0 {
		return e.Terms[i].Coefficient
	}
	return 0
}

func (e Expression) String() string {
	var sbb strings.Builder
	for i, t := range e.Terms {
		if i > 0 {
			sbb.WriteString(" + ")
		}
		sbb.WriteString(t.String())
	}
	if len(e.Terms) == 0 || e.Constant != 0 {
		if len(e.Terms) > 0 {
			sbb.WriteString(" + ")
		}
		sbb.WriteString(formatFloat(e.Constant))
	}
	return sbb.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
