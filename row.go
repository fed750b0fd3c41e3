// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cassowary

// epsilon is the tolerance below which a coefficient or a value delta is
// treated as zero throughout the tableau and the change tracker.
const epsilon = 1e-8

func nearZero(v float64) bool {
	if v < 0 {
		return -v < epsilon
	}
	return v < epsilon
}

// row is one tableau row: a constant plus a linear form over nonbasic
// columns. The basic symbol a row defines is not stored here; it is the key
// under which the solver holds the row, keeping the basic and nonbasic index
// sets disjoint by construction.
type row struct {
	cells    map[symbol]float64
	constant float64
}

func newRow(constant float64) *row {
	return &row{cells: make(map[symbol]float64), constant: constant}
}

func (r *row) copy() *row {
	cells := make(map[symbol]float64, len(r.cells))
	for s, c := range r.cells {
		cells[s] = c
	}
	return &row{cells: cells, constant: r.constant}
}

// add shifts the row constant by delta and returns the new constant.
func (r *row) add(delta float64) float64 {
	r.constant += delta
	return r.constant
}

// insertSymbol folds coefficient into the cell for s, dropping the cell when
// the folded coefficient vanishes.
func (r *row) insertSymbol(s symbol, coefficient float64) {
	c := r.cells[s] + coefficient
	if nearZero(c) {
		delete(r.cells, s)
	} else {
		r.cells[s] = c
	}
}

// insertRow folds coefficient*other into the row.
func (r *row) insertRow(other *row, coefficient float64) {
	r.constant += other.constant * coefficient
	for s, c := range other.cells {
		r.insertSymbol(s, c*coefficient)
	}
}

func (r *row) removeSymbol(s symbol) {
	delete(r.cells, s)
}

// reverseSign negates the constant and every cell.
func (r *row) reverseSign() {
	r.constant = -r.constant
	for s, c := range r.cells {
		r.cells[s] = -c
	}
}

// solveFor rewrites the row, currently reading basic = constant + cells, into
// the form s = -constant/a - sum(cells/a) where a is the coefficient of s.
// The cell for s is removed; the caller is expected to re-key the row under s.
// The coefficient of s must not be (near) zero.
func (r *row) solveFor(s symbol) {
	coefficient := -1.0 / r.cells[s]
	delete(r.cells, s)
	r.constant *= coefficient
	for sym, c := range r.cells {
		r.cells[sym] = c * coefficient
	}
}

// solveForPair makes rhs the subject of a row currently keyed under lhs:
// lhs is folded back in with coefficient -1, then the row is solved for rhs.
func (r *row) solveForPair(lhs, rhs symbol) {
	r.insertSymbol(lhs, -1)
	r.solveFor(rhs)
}

// coefficientFor returns the cell for s, zero when absent.
func (r *row) coefficientFor(s symbol) float64 {
	return r.cells[s]
}

// substitute replaces every occurrence of s with the given row, which must
// have s as its subject (s does not appear in it). Reports whether the row
// contained s at all.
func (r *row) substitute(s symbol, other *row) bool {
	coefficient, ok := r.cells[s]
	if !ok {
		return false
	}
	delete(r.cells, s)
	r.insertRow(other, coefficient)
	return true
}

// allDummies reports whether every cell is a dummy column. Such a row pins
// nothing: it is satisfiable exactly when its constant is (near) zero.
func (r *row) allDummies() bool {
	for s := range r.cells {
		if s.kind != symbolDummy {
			return false
		}
	}
	return true
}
