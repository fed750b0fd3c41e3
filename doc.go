// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package cassowary provides an incremental solver for systems of linear
// constraints over real-valued variables, based on the Cassowary algorithm.
//
// A constraint relates a linear [Expression] to zero with one of the
// operators <=, == or >= and carries a [Strength]; Required constraints must
// hold exactly, weaker ones are satisfied on a best-effort basis in
// lexicographic strength order. The [Solver] keeps a simplex tableau
// incrementally up to date while constraints are added and removed and while
// edit variables receive new suggested values, so a mutation costs work
// proportional to the part of the system it disturbs rather than a full
// re-solve.
//
// Typical use:
//
//	vars := cassowary.NewVars()
//	x, w := vars.New("x"), vars.New("w")
//
//	s := cassowary.NewSolver()
//	err := s.AddConstraints(
//	    cassowary.NewConstraint(x.Expr(), cassowary.GE, cassowary.Required),
//	    cassowary.NewConstraint(w.Expr().Sub(cassowary.Constant(30)), cassowary.EQ, cassowary.Strong),
//	)
//	...
//	for _, ch := range s.FetchChanges() {
//	    fmt.Println(ch.Variable, ch.Value)
//	}
//
// Solvers are not safe for concurrent use; callers serialize access to an
// instance. Independent instances are fully isolated from each other.
package cassowary

import "github.com/blang/semver/v4"

// Version of the cassowary library
var Version = semver.MustParse("0.4.1")
