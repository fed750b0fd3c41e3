// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cassowary

import "strconv"

// symbolKind partitions tableau columns by role.
type symbolKind uint8

const (
	symbolInvalid symbolKind = iota
	// symbolExternal columns stand for caller variables.
	symbolExternal
	// symbolSlack columns turn an inequality into an equality row; their
	// value is constrained nonnegative.
	symbolSlack
	// symbolError columns measure how far a non-required constraint is
	// violated; they are nonnegative and enter the objective at the
	// constraint's strength.
	symbolError
	// symbolDummy columns mark required equalities with no pivotable
	// variable; they never enter the basis and never appear in the
	// objective.
	symbolDummy
)

func (k symbolKind) String() string {
	switch k {
	case symbolExternal:
		return "external"
	case symbolSlack:
		return "slack"
	case symbolError:
		return "error"
	case symbolDummy:
		return "dummy"
	}
	return "invalid"
}

// symbol identifies one tableau column. Ids come from the owning solver's
// tick and are never reused, so the lowest id is always the oldest column;
// pivot tie-breaks rely on that for determinism.
type symbol struct {
	id   uint64
	kind symbolKind
}

var invalidSymbol = symbol{}

func (s symbol) valid() bool { return s.kind != symbolInvalid }

// restricted reports whether the column is bound to nonnegative values.
func (s symbol) restricted() bool {
	return s.kind == symbolSlack || s.kind == symbolError
}

func (s symbol) String() string {
	return s.kind.String() + ":" + strconv.FormatUint(s.id, 10)
}
