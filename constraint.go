// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cassowary

// Operator is the relation a constraint imposes between its expression and
// zero. The set is closed; solver code switches over it exhaustively.
type Operator uint8

const (
	// LE constrains expression <= 0.
	LE Operator = iota
	// EQ constrains expression == 0.
	EQ
	// GE constrains expression >= 0.
	GE
)

func (op Operator) String() string {
	switch op {
	case LE:
		return "<="
	case EQ:
		return "=="
	case GE:
		return ">="
	}
	return "op(?)"
}

// Constraint restricts a linear expression against zero: expression op 0.
//
// Identity is the *Constraint pointer, not the structural content: building
// the same relation twice yields two distinct constraints and a solver tracks
// each separately. Constraints are immutable once built and may be shared
// between solvers.
type Constraint struct {
	expression Expression
	op         Operator
	strength   Strength
}

// NewConstraint pairs an expression with an operator and a strength. The
// strength is clipped into [0, Required]. Construction never fails; a
// degenerate constant-only expression is classified as trivially satisfied
// or unsatisfiable when the constraint is added to a solver.
func NewConstraint(e Expression, op Operator, strength Strength) *Constraint {
	return &Constraint{
		expression: e,
		op:         op,
		strength:   clip(strength),
	}
}

// Expression returns the constrained linear form.
func (c *Constraint) Expression() Expression { return c.expression }

// Op returns the relational operator.
func (c *Constraint) Op() Operator { return c.op }

// Strength returns the (clipped) priority of the constraint.
func (c *Constraint) Strength() Strength { return c.strength }

func (c *Constraint) String() string {
	return c.expression.String() + " " + c.op.String() + " 0 | " + c.strength.String()
}
