// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package boxlayout

import (
	"fmt"

	"github.com/tangramlabs/cassowary"
	"github.com/tangramlabs/cassowary/logger"
)

// Rect is the solved geometry of one element.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect { x: %4.1f, y: %4.1f, width: %4.1f, height: %4.1f }", r.X, r.Y, r.Width, r.Height)
}

// Layout owns a variable arena, a solver, and the two container-size edit
// variables, and keeps the last resolved value of every element variable.
//
// Like the solver backing it, a Layout is not safe for concurrent use.
type Layout struct {
	vars   *cassowary.Vars
	solver *cassowary.Solver

	width  cassowary.Variable
	height cassowary.Variable

	elements []Element
	values   map[cassowary.Variable]float64
}

// New returns an empty layout whose container width and height are open for
// suggestion at the strongest non-required strength and bounded nonnegative.
func New() (*Layout, error) {
	vars := cassowary.NewVars()
	solver := cassowary.NewSolver()

	width := vars.New("container.width")
	height := vars.New("container.height")

	if err := solver.AddEditVariable(width, cassowary.Required-1); err != nil {
		return nil, fmt.Errorf("container width: %w", err)
	}
	if err := solver.AddEditVariable(height, cassowary.Required-1); err != nil {
		return nil, fmt.Errorf("container height: %w", err)
	}
	err := solver.AddConstraints(
		cassowary.NewConstraint(width.Expr(), cassowary.GE, cassowary.Required),
		cassowary.NewConstraint(height.Expr(), cassowary.GE, cassowary.Required),
	)
	if err != nil {
		return nil, fmt.Errorf("container bounds: %w", err)
	}

	return &Layout{
		vars:   vars,
		solver: solver,
		width:  width,
		height: height,
		values: make(map[cassowary.Variable]float64),
	}, nil
}

// AddElement allocates a named element and constrains it to the container:
// nonnegative position, and right/bottom edges within the container size.
func (l *Layout) AddElement(name string) (Element, error) {
	e := NewElement(l.vars, name)
	err := l.solver.AddConstraints(
		cassowary.NewConstraint(e.Left.Expr(), cassowary.GE, cassowary.Required),
		cassowary.NewConstraint(e.Top.Expr(), cassowary.GE, cassowary.Required),
		cassowary.NewConstraint(e.Right().Sub(l.width.Expr()), cassowary.LE, cassowary.Required),
		cassowary.NewConstraint(e.Bottom().Sub(l.height.Expr()), cassowary.LE, cassowary.Required),
	)
	if err != nil {
		return Element{}, fmt.Errorf("element %s: %w", name, err)
	}
	l.elements = append(l.elements, e)
	return e, nil
}

// AddConstraint adds one layout rule to the underlying solver.
func (l *Layout) AddConstraint(c *cassowary.Constraint) error {
	return l.solver.AddConstraint(c)
}

// AddConstraints adds a batch of layout rules, failing atomically.
func (l *Layout) AddConstraints(batch ...*cassowary.Constraint) error {
	return l.solver.AddConstraints(batch...)
}

// SetSize suggests a new container size and folds the resulting changes into
// the layout's resolved values.
func (l *Layout) SetSize(width, height float64) error {
	if err := l.solver.SuggestValue(l.width, width); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	if err := l.solver.SuggestValue(l.height, height); err != nil {
		return fmt.Errorf("set height: %w", err)
	}

	changes := l.solver.FetchChanges()
	for _, ch := range changes {
		l.values[ch.Variable] = ch.Value
	}
	log := logger.Logger()
	log.Debug().
		Float64("width", width).
		Float64("height", height).
		Int("nbChanges", len(changes)).
		Msg("layout resolved")
	return nil
}

// Size returns the container size as last resolved.
func (l *Layout) Size() (width, height float64) {
	return l.values[l.width], l.values[l.height]
}

// Rect returns the geometry of e as last resolved. Variables never resolved
// read as zero.
func (l *Layout) Rect(e Element) Rect {
	return Rect{
		X:      l.values[e.Left],
		Y:      l.values[e.Top],
		Width:  l.values[e.Width],
		Height: l.values[e.Height],
	}
}

// Elements returns the elements in insertion order.
func (l *Layout) Elements() []Element {
	return l.elements
}

// Vars exposes the layout's variable arena, for callers building their own
// expressions over element variables.
func (l *Layout) Vars() *cassowary.Vars {
	return l.vars
}
