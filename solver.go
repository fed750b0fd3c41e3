// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cassowary

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/tangramlabs/cassowary/internal/debug"
	"github.com/tangramlabs/cassowary/logger"
	"github.com/tangramlabs/cassowary/profile"
)

// tag records the auxiliary columns created for one constraint: the marker
// identifies the constraint in the tableau for removal, the other column (if
// any) carries the opposite sign of its violation.
type tag struct {
	marker symbol
	other  symbol
}

// varData is the solver-side bookkeeping for one external variable: its
// tableau column, the value handed out at the last fetch, and how many live
// constraints reference it.
type varData struct {
	symbol   symbol
	value    float64
	refcount int
}

type editInfo struct {
	tag        tag
	constraint *Constraint
	suggested  float64
}

// Change is one entry of a fetch: a variable together with its new resolved
// value.
type Change struct {
	Variable Variable
	Value    float64
}

// Solver maintains a feasible, locally optimal assignment of real values to
// the variables of its live constraint set, re-optimizing incrementally as
// constraints are added and removed and as edit variables receive suggested
// values.
//
// A Solver is a single unit of mutable state with no internal locking: it is
// not safe for concurrent use, and callers must serialize access to one
// instance. Independent instances share nothing and may be driven from
// independent goroutines. A failed mutation leaves the solver exactly as it
// was before the call; see the package errors for the recoverable failures.
type Solver struct {
	cns       map[*Constraint]tag
	rows      map[symbol]*row
	vars      map[Variable]*varData
	varForSym map[symbol]Variable
	edits     map[Variable]*editInfo

	objective  *row
	artificial *row

	// basic rows that went negative during a substitution and await the
	// next dual-simplex pass.
	infeasible []symbol

	// dirty holds the ids of external variables whose resolved value may
	// have moved since the last fetch.
	dirty *bitset.BitSet

	tick uint64
}

// NewSolver returns an empty solver. Variables need not be declared up
// front; they enter the tableau with the first constraint referencing them.
func NewSolver() *Solver {
	return &Solver{
		cns:       make(map[*Constraint]tag),
		rows:      make(map[symbol]*row),
		vars:      make(map[Variable]*varData),
		varForSym: make(map[symbol]Variable),
		edits:     make(map[Variable]*editInfo),
		objective: newRow(0),
		dirty:     bitset.New(64),
	}
}

// AddConstraint inserts c into the solver and re-optimizes.
//
// Returns ErrDuplicateConstraint if c (the same instance) is already
// present, and ErrUnsatisfiableConstraint if c is required and cannot hold
// together with the required constraints already present; in both cases the
// solver is left unchanged.
func (s *Solver) AddConstraint(c *Constraint) error {
	if _, ok := s.cns[c]; ok {
		return ErrDuplicateConstraint
	}

	r, tg := s.createRow(c)

	// A constraint folding down to dummies only pins nothing; it is
	// trivially satisfied or trivially unsatisfiable by its constant.
	subject := chooseSubject(r, tg)
	if !subject.valid() && r.allDummies() {
		if !nearZero(r.constant) {
			s.rollbackRow(c, tg)
			return ErrUnsatisfiableConstraint
		}
		subject = tg.marker
	}

	if !subject.valid() {
		ok, err := s.addWithArtificialVariable(r)
		if err != nil {
			return err
		}
		if !ok {
			// the failed row may have been pivoted into the tableau
			// while minimizing the artificial objective
			if err := s.removeFailedRow(tg); err != nil {
				return err
			}
			s.rollbackRow(c, tg)
			return ErrUnsatisfiableConstraint
		}
	} else {
		r.solveFor(subject)
		s.substituteOut(subject, r)
		s.rows[subject] = r
		s.markDirty(subject)
	}

	s.cns[c] = tg

	if err := s.optimize(s.objective); err != nil {
		return err
	}

	profile.RecordConstraint()
	return nil
}

// AddConstraints inserts every constraint of the batch, failing atomically:
// on error the constraints added so far are removed again and the solver is
// left unchanged.
func (s *Solver) AddConstraints(batch ...*Constraint) error {
	for i, c := range batch {
		if err := s.AddConstraint(c); err != nil {
			for j := i - 1; j >= 0; j-- {
				// added moments ago, removal cannot fail
				_ = s.RemoveConstraint(batch[j])
			}
			return fmt.Errorf("constraint %d of %d: %w", i, len(batch), err)
		}
	}
	log := logger.Logger()
	log.Debug().Int("nbConstraints", len(batch)).Msg("batch added")
	return nil
}

// RemoveConstraint removes a previously added constraint and re-optimizes.
// Returns ErrUnknownConstraint if c is not currently tracked.
func (s *Solver) RemoveConstraint(c *Constraint) error {
	tg, ok := s.cns[c]
	if !ok {
		return ErrUnknownConstraint
	}

	// Error columns leave the objective before the marker leaves the
	// basis, so the objective never references a dropped column.
	s.removeConstraintEffects(c, tg)

	if _, basic := s.rows[tg.marker]; basic {
		delete(s.rows, tg.marker)
	} else {
		leaving, lrow := s.markerLeavingRow(tg.marker)
		if lrow == nil {
			return s.internal("marker symbol of a tracked constraint is in no row")
		}
		delete(s.rows, leaving)
		lrow.solveForPair(leaving, tg.marker)
		s.substituteOut(tg.marker, lrow)
		s.markDirty(leaving)
	}

	delete(s.cns, c)

	if err := s.optimize(s.objective); err != nil {
		return err
	}

	for _, t := range c.Expression().Terms {
		if !nearZero(t.Coefficient) {
			s.releaseVariable(t.Variable)
		}
	}
	return nil
}

// HasConstraint reports whether c is currently tracked by the solver.
func (s *Solver) HasConstraint(c *Constraint) bool {
	_, ok := s.cns[c]
	return ok
}

// AddEditVariable opens v for external suggestions at the given strength by
// installing an internal stay constraint pinning v to its current resolved
// value.
//
// The strength must be strictly below Required (ErrBadRequiredStrength); at
// most one edit entry may exist per variable (ErrDuplicateEditVariable).
func (s *Solver) AddEditVariable(v Variable, strength Strength) error {
	if _, ok := s.edits[v]; ok {
		return ErrDuplicateEditVariable
	}
	strength = clip(strength)
	if strength == Required {
		return ErrBadRequiredStrength
	}

	current := s.liveValue(v)
	cn := NewConstraint(NewExpression(-current, v.Times(1)), EQ, strength)
	if err := s.AddConstraint(cn); err != nil {
		// a fresh non-required constraint always has a subject
		return err
	}
	s.edits[v] = &editInfo{
		tag:        s.cns[cn],
		constraint: cn,
		suggested:  current,
	}
	return nil
}

// RemoveEditVariable closes v for suggestions and removes its stay
// constraint. Returns ErrUnknownEditVariable if v has no edit entry.
func (s *Solver) RemoveEditVariable(v Variable) error {
	info, ok := s.edits[v]
	if !ok {
		return ErrUnknownEditVariable
	}
	if err := s.RemoveConstraint(info.constraint); err != nil {
		return err
	}
	delete(s.edits, v)
	return nil
}

// HasEditVariable reports whether v currently has an edit entry.
func (s *Solver) HasEditVariable(v Variable) bool {
	_, ok := s.edits[v]
	return ok
}

// SuggestValue moves the target of v's stay constraint to value and restores
// feasibility with a dual-simplex pass restricted to the rows the change
// actually perturbed, so the cost is proportional to the disturbed part of
// the tableau rather than its total size.
//
// Returns ErrUnknownEditVariable if v has no edit entry.
func (s *Solver) SuggestValue(v Variable, value float64) error {
	info, ok := s.edits[v]
	if !ok {
		return ErrUnknownEditVariable
	}
	delta := value - info.suggested
	info.suggested = value

	// When one of the constraint's own columns is basic the delta lands on
	// that single row; external values only move if dual pivots follow.
	if r, basic := s.rows[info.tag.marker]; basic {
		if r.add(-delta) < 0 {
			s.infeasible = append(s.infeasible, info.tag.marker)
		}
		return s.dualOptimize()
	}
	if r, basic := s.rows[info.tag.other]; basic {
		if r.add(delta) < 0 {
			s.infeasible = append(s.infeasible, info.tag.other)
		}
		return s.dualOptimize()
	}

	// Otherwise the marker is nonbasic: sweep the rows it appears in.
	for basic, r := range s.rows {
		coeff := r.coefficientFor(info.tag.marker)
		if coeff == 0 {
			continue
		}
		if r.add(delta*coeff) < 0 && basic.kind != symbolExternal {
			s.infeasible = append(s.infeasible, basic)
		}
		s.markDirty(basic)
	}
	return s.dualOptimize()
}

// FetchChanges returns the variables whose resolved value moved by more than
// the solver tolerance since the last fetch, in ascending allocation order,
// and updates the snapshot those values are read from. A second fetch with
// no intervening mutation returns an empty set.
//
// This is the only way solved values become observable; Value reads the same
// snapshot and never re-optimizes.
func (s *Solver) FetchChanges() []Change {
	changes := make([]Change, 0, s.dirty.Count())
	for id, ok := s.dirty.NextSet(0); ok; id, ok = s.dirty.NextSet(id + 1) {
		v := Variable{id: uint64(id)}
		d, tracked := s.vars[v]
		if !tracked {
			continue // released since it was marked
		}
		value := 0.0
		if r, basic := s.rows[d.symbol]; basic {
			value = r.constant
		}
		if !nearZero(value - d.value) {
			d.value = value
			changes = append(changes, Change{Variable: v, Value: value})
		}
	}
	s.dirty.ClearAll()
	log := logger.Logger()
	log.Debug().Int("nbChanges", len(changes)).Msg("changes fetched")
	return changes
}

// Value returns the snapshot value of v as of the last FetchChanges, zero
// for variables the solver has never resolved.
func (s *Solver) Value(v Variable) float64 {
	if d, ok := s.vars[v]; ok {
		return d.value
	}
	return 0
}

// --- tableau internals -----------------------------------------------------

func (s *Solver) nextSymbol(kind symbolKind) symbol {
	s.tick++
	return symbol{id: s.tick, kind: kind}
}

// symbolFor returns the column for v, allocating one on first reference, and
// takes a reference for the constraint being built.
func (s *Solver) symbolFor(v Variable) symbol {
	d, ok := s.vars[v]
	if !ok {
		d = &varData{symbol: s.nextSymbol(symbolExternal)}
		s.vars[v] = d
		s.varForSym[d.symbol] = v
	}
	d.refcount++
	return d.symbol
}

func (s *Solver) releaseVariable(v Variable) {
	d, ok := s.vars[v]
	if !ok {
		return
	}
	d.refcount--
	if d.refcount <= 0 {
		delete(s.varForSym, d.symbol)
		delete(s.vars, v)
	}
}

// markDirty notes that the external column sym may have a new value.
func (s *Solver) markDirty(sym symbol) {
	if sym.kind != symbolExternal {
		return
	}
	if v, ok := s.varForSym[sym]; ok {
		s.dirty.Set(uint(v.id))
	}
}

// liveValue reads v straight from the tableau, bypassing the snapshot. Used
// to seed an edit entry with the value the caller currently observes.
func (s *Solver) liveValue(v Variable) float64 {
	d, ok := s.vars[v]
	if !ok {
		return 0
	}
	if r, basic := s.rows[d.symbol]; basic {
		return r.constant
	}
	return 0
}

// createRow normalizes c into an equality row over nonbasic columns:
// referenced basic variables are substituted by their rows, inequalities get
// a slack column and non-required constraints an error column per violation
// sign, weighted into the objective at the constraint's strength.
func (s *Solver) createRow(c *Constraint) (*row, tag) {
	expr := c.Expression()
	r := newRow(expr.Constant)
	for _, t := range expr.Terms {
		if nearZero(t.Coefficient) {
			continue
		}
		sym := s.symbolFor(t.Variable)
		if basic, ok := s.rows[sym]; ok {
			r.insertRow(basic, t.Coefficient)
		} else {
			r.insertSymbol(sym, t.Coefficient)
		}
	}

	var tg tag
	strength := float64(c.Strength())
	switch c.Op() {
	case LE, GE:
		coeff := 1.0
		if c.Op() == GE {
			coeff = -1
		}
		tg.marker = s.nextSymbol(symbolSlack)
		r.insertSymbol(tg.marker, coeff)
		if c.Strength() < Required {
			tg.other = s.nextSymbol(symbolError)
			r.insertSymbol(tg.other, -coeff)
			s.objective.insertSymbol(tg.other, strength)
		}
	case EQ:
		if c.Strength() < Required {
			// one error column per violation sign
			tg.marker = s.nextSymbol(symbolError)
			tg.other = s.nextSymbol(symbolError)
			r.insertSymbol(tg.marker, -1)
			r.insertSymbol(tg.other, 1)
			s.objective.insertSymbol(tg.marker, strength)
			s.objective.insertSymbol(tg.other, strength)
		} else {
			tg.marker = s.nextSymbol(symbolDummy)
			r.insertSymbol(tg.marker, 1)
		}
	}

	if r.constant < 0 {
		r.reverseSign()
	}
	return r, tg
}

// rollbackRow undoes the side effects of createRow for a constraint that was
// not inserted: variable references and any objective error terms.
func (s *Solver) rollbackRow(c *Constraint, tg tag) {
	for _, t := range c.Expression().Terms {
		if !nearZero(t.Coefficient) {
			s.releaseVariable(t.Variable)
		}
	}
	strength := float64(c.Strength())
	if tg.marker.kind == symbolError {
		s.objective.insertSymbol(tg.marker, -strength)
	}
	if tg.other.kind == symbolError {
		s.objective.insertSymbol(tg.other, -strength)
	}
}

// chooseSubject picks the column the new row will define: the lowest-id
// external column if any, else the constraint's own marker or other column
// when restricted with a negative coefficient (so solving keeps the constant
// nonnegative). An invalid result means an artificial variable is needed.
func chooseSubject(r *row, tg tag) symbol {
	subject := invalidSymbol
	for sym := range r.cells {
		if sym.kind == symbolExternal && (!subject.valid() || sym.id < subject.id) {
			subject = sym
		}
	}
	if subject.valid() {
		return subject
	}
	if tg.marker.restricted() && r.coefficientFor(tg.marker) < 0 {
		return tg.marker
	}
	if tg.other.restricted() && r.coefficientFor(tg.other) < 0 {
		return tg.other
	}
	return invalidSymbol
}

// addWithArtificialVariable runs the artificial-variable technique for a
// required row with no directly usable subject: minimize an artificial
// objective equal to the row; feasible iff the minimum is zero. The
// artificial column is scrubbed from the tableau either way.
func (s *Solver) addWithArtificialVariable(r *row) (bool, error) {
	art := s.nextSymbol(symbolSlack)
	s.rows[art] = r.copy()
	s.artificial = r.copy()

	err := s.optimize(s.artificial)
	success := nearZero(s.artificial.constant)
	s.artificial = nil
	if err != nil {
		return false, err
	}

	if basic, ok := s.rows[art]; ok {
		delete(s.rows, art)
		if len(basic.cells) != 0 {
			entering := anyPivotableSymbol(basic)
			if !entering.valid() {
				success = false
			} else {
				basic.solveForPair(art, entering)
				s.substituteOut(entering, basic)
				s.rows[entering] = basic
				s.markDirty(entering)
			}
		}
	}

	for _, other := range s.rows {
		other.removeSymbol(art)
	}
	s.objective.removeSymbol(art)
	return success, nil
}

// substituteOut replaces every occurrence of sym across the tableau with the
// given row. Restricted basic rows driven negative are queued for the next
// dual pass.
func (s *Solver) substituteOut(sym symbol, r *row) {
	for basic, other := range s.rows {
		if !other.substitute(sym, r) {
			continue
		}
		s.markDirty(basic)
		if basic.restricted() && other.constant < 0 {
			s.infeasible = append(s.infeasible, basic)
		}
	}
	s.objective.substitute(sym, r)
	if s.artificial != nil {
		s.artificial.substitute(sym, r)
	}
}

// optimize runs primal simplex on the given objective until no improving
// pivot remains. Strength dominance needs no per-level passes: the decimal
// banding of Strength makes one weighted objective order all levels at once.
func (s *Solver) optimize(objective *row) error {
	for {
		entering := enteringSymbol(objective)
		if !entering.valid() {
			return nil
		}
		leaving, lrow := s.leavingRow(entering)
		if lrow == nil {
			return s.internal("objective is unbounded")
		}
		debug.Assert(!nearZero(lrow.coefficientFor(entering)), "pivot on a near-zero coefficient")
		delete(s.rows, leaving)
		lrow.solveForPair(leaving, entering)
		s.substituteOut(entering, lrow)
		s.rows[entering] = lrow
		s.markDirty(entering)
		s.markDirty(leaving)
	}
}

// dualOptimize restores primal feasibility by pivoting only among the rows
// queued as infeasible, keeping the objective optimal throughout.
func (s *Solver) dualOptimize() error {
	for len(s.infeasible) > 0 {
		leaving := s.infeasible[len(s.infeasible)-1]
		s.infeasible = s.infeasible[:len(s.infeasible)-1]
		lrow, ok := s.rows[leaving]
		if !ok || lrow.constant >= 0 {
			continue
		}
		entering := dualEnteringSymbol(s.objective, lrow)
		if !entering.valid() {
			return s.internal("dual optimize found no entering symbol")
		}
		delete(s.rows, leaving)
		lrow.solveForPair(leaving, entering)
		s.substituteOut(entering, lrow)
		s.rows[entering] = lrow
		s.markDirty(entering)
		s.markDirty(leaving)
	}
	return nil
}

// enteringSymbol picks the nonbasic column whose increase improves the
// objective: a non-dummy cell with a negative coefficient, lowest id on
// ties for determinism.
func enteringSymbol(objective *row) symbol {
	entering := invalidSymbol
	for sym, c := range objective.cells {
		if sym.kind == symbolDummy || c >= 0 {
			continue
		}
		if !entering.valid() || sym.id < entering.id {
			entering = sym
		}
	}
	return entering
}

// leavingRow picks the basic row bounding the entering column's increase:
// among non-external rows with a negative coefficient on entering, the one
// with the minimum ratio -constant/coefficient, lowest basic id on ties.
func (s *Solver) leavingRow(entering symbol) (symbol, *row) {
	leaving := invalidSymbol
	var (
		lrow  *row
		ratio float64
	)
	for basic, r := range s.rows {
		if basic.kind == symbolExternal {
			continue
		}
		c := r.coefficientFor(entering)
		if c >= 0 {
			continue
		}
		candidate := -r.constant / c
		if lrow == nil || candidate < ratio || (candidate == ratio && basic.id < leaving.id) {
			ratio = candidate
			leaving = basic
			lrow = r
		}
	}
	return leaving, lrow
}

// dualEnteringSymbol picks the nonbasic column entering the basis during a
// dual pivot: among non-dummy cells with a positive coefficient, the one
// minimizing objectiveCoefficient/coefficient, lowest id on ties.
func dualEnteringSymbol(objective, r *row) symbol {
	entering := invalidSymbol
	var ratio float64
	for sym, c := range r.cells {
		if sym.kind == symbolDummy || c <= 0 {
			continue
		}
		candidate := objective.coefficientFor(sym) / c
		if !entering.valid() || candidate < ratio || (candidate == ratio && sym.id < entering.id) {
			ratio = candidate
			entering = sym
		}
	}
	return entering
}

// anyPivotableSymbol returns the lowest-id slack or error cell of r.
func anyPivotableSymbol(r *row) symbol {
	best := invalidSymbol
	for sym := range r.cells {
		if sym.restricted() && (!best.valid() || sym.id < best.id) {
			best = sym
		}
	}
	return best
}

// removeFailedRow excises the row of a constraint that turned out to be
// unsatisfiable. A marker found in no row means the failed row never reached
// the tableau and there is nothing to undo.
func (s *Solver) removeFailedRow(tg tag) error {
	if _, basic := s.rows[tg.marker]; basic {
		delete(s.rows, tg.marker)
	} else if leaving, lrow := s.markerLeavingRow(tg.marker); lrow != nil {
		delete(s.rows, leaving)
		lrow.solveForPair(leaving, tg.marker)
		s.substituteOut(tg.marker, lrow)
		s.markDirty(leaving)
	}
	return s.optimize(s.objective)
}

// removeConstraintEffects takes the constraint's error columns back out of
// the objective. A basic error column contributes through its row; a
// nonbasic one contributes directly.
func (s *Solver) removeConstraintEffects(c *Constraint, tg tag) {
	strength := float64(c.Strength())
	for _, sym := range [2]symbol{tg.marker, tg.other} {
		if sym.kind != symbolError {
			continue
		}
		if r, basic := s.rows[sym]; basic {
			s.objective.insertRow(r, -strength)
		} else {
			s.objective.insertSymbol(sym, -strength)
		}
	}
}

// markerLeavingRow picks the row to pivot a nonbasic marker into before its
// constraint is dropped: restricted rows with a negative coefficient first
// (minimum -constant/coefficient), then restricted rows with a positive one
// (minimum constant/coefficient), then any row holding the marker. Lowest
// basic id breaks ties in every tier.
func (s *Solver) markerLeavingRow(marker symbol) (symbol, *row) {
	var (
		first, second, third          symbol
		firstRow, secondRow, thirdRow *row
		firstRatio, secondRatio       float64
	)
	for basic, r := range s.rows {
		c := r.coefficientFor(marker)
		if c == 0 {
			continue
		}
		switch {
		case basic.kind == symbolExternal:
			if thirdRow == nil || basic.id < third.id {
				third, thirdRow = basic, r
			}
		case c < 0:
			ratio := -r.constant / c
			if firstRow == nil || ratio < firstRatio || (ratio == firstRatio && basic.id < first.id) {
				firstRatio, first, firstRow = ratio, basic, r
			}
		default:
			ratio := r.constant / c
			if secondRow == nil || ratio < secondRatio || (ratio == secondRatio && basic.id < second.id) {
				secondRatio, second, secondRow = ratio, basic, r
			}
		}
	}
	switch {
	case firstRow != nil:
		return first, firstRow
	case secondRow != nil:
		return second, secondRow
	default:
		return third, thirdRow
	}
}

// internal logs and wraps a broken-invariant report. These signal a bug in
// the solver itself, never a recoverable caller error.
func (s *Solver) internal(msg string) error {
	err := internalError(msg)
	log := logger.Logger()
	log.Error().Err(err).Msg("solver invariant violated")
	return err
}
