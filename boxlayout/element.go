// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package boxlayout maps rectangle layout onto the cassowary solver: an
// element is four variables (left edge, top edge, width, height), layout
// rules are convenience constraints over them, and a Layout resolves the
// whole arrangement against a suggested container size.
package boxlayout

import (
	"github.com/tangramlabs/cassowary"
)

// Element is one laid-out box, represented by its four layout variables.
// Elements are plain values; the solved geometry is read back from the
// owning [Layout].
type Element struct {
	Left   cassowary.Variable
	Top    cassowary.Variable
	Width  cassowary.Variable
	Height cassowary.Variable
}

// NewElement allocates the four variables of a box from the given arena.
// The name seeds the variables' debug labels.
func NewElement(vars *cassowary.Vars, name string) Element {
	return Element{
		Left:   vars.New(name + ".left"),
		Top:    vars.New(name + ".top"),
		Width:  vars.New(name + ".width"),
		Height: vars.New(name + ".height"),
	}
}

// Right returns the derived expression left + width.
func (e Element) Right() cassowary.Expression {
	return cassowary.NewExpression(0, e.Left.Times(1), e.Width.Times(1))
}

// Bottom returns the derived expression top + height.
func (e Element) Bottom() cassowary.Expression {
	return cassowary.NewExpression(0, e.Top.Times(1), e.Height.Times(1))
}

// PrecedesHorizontally pins e's right edge to other's left edge.
func (e Element) PrecedesHorizontally(other Element) *cassowary.Constraint {
	return cassowary.NewConstraint(e.Right().Sub(other.Left.Expr()), cassowary.EQ, cassowary.Required)
}

// PrecedesVertically pins e's bottom edge to other's top edge.
func (e Element) PrecedesVertically(other Element) *cassowary.Constraint {
	return cassowary.NewConstraint(e.Bottom().Sub(other.Top.Expr()), cassowary.EQ, cassowary.Required)
}

// HasWidth asks for a fixed width at Strong strength, so it yields to
// required bounds but wins over proportional ties.
func (e Element) HasWidth(width float64) *cassowary.Constraint {
	return cassowary.NewConstraint(e.Width.Expr().Sub(cassowary.Constant(width)), cassowary.EQ, cassowary.Strong)
}

// HasHeight asks for a fixed height at Strong strength.
func (e Element) HasHeight(height float64) *cassowary.Constraint {
	return cassowary.NewConstraint(e.Height.Expr().Sub(cassowary.Constant(height)), cassowary.EQ, cassowary.Strong)
}

// HasMinWidth bounds the width from below, as a hard constraint.
func (e Element) HasMinWidth(width float64) *cassowary.Constraint {
	return cassowary.NewConstraint(e.Width.Expr().Sub(cassowary.Constant(width)), cassowary.GE, cassowary.Required)
}

// HasMaxWidth bounds the width from above, as a hard constraint.
func (e Element) HasMaxWidth(width float64) *cassowary.Constraint {
	return cassowary.NewConstraint(e.Width.Expr().Sub(cassowary.Constant(width)), cassowary.LE, cassowary.Required)
}

// HasMinHeight bounds the height from below, as a hard constraint.
func (e Element) HasMinHeight(height float64) *cassowary.Constraint {
	return cassowary.NewConstraint(e.Height.Expr().Sub(cassowary.Constant(height)), cassowary.GE, cassowary.Required)
}

// HasMaxHeight bounds the height from above, as a hard constraint.
func (e Element) HasMaxHeight(height float64) *cassowary.Constraint {
	return cassowary.NewConstraint(e.Height.Expr().Sub(cassowary.Constant(height)), cassowary.LE, cassowary.Required)
}

// HasProportionalWidth ties e's width to ratio times other's width at Medium
// strength: width/ratio == other.width.
func (e Element) HasProportionalWidth(other Element, ratio float64) *cassowary.Constraint {
	return cassowary.NewConstraint(e.Width.Expr().Div(ratio).Sub(other.Width.Expr()), cassowary.EQ, cassowary.Medium)
}

// HasProportionalHeight ties e's height to ratio times other's height at
// Medium strength.
func (e Element) HasProportionalHeight(other Element, ratio float64) *cassowary.Constraint {
	return cassowary.NewConstraint(e.Height.Expr().Div(ratio).Sub(other.Height.Expr()), cassowary.EQ, cassowary.Medium)
}
