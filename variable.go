// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cassowary

import (
	"strconv"
	"sync"
)

// Variable is an opaque handle for one real-valued unknown. Variables are
// allocated by a [Vars] arena and compare (and hash, as map keys) by identity
// only; the zero value is the invalid sentinel no arena ever returns.
//
// A Variable carries no pointer back to its arena or to any solver; it is a
// plain value that may be freely copied and shared.
type Variable struct {
	id uint64
}

// Valid reports whether v was allocated by an arena.
func (v Variable) Valid() bool { return v.id != 0 }

func (v Variable) String() string {
	return "v" + strconv.FormatUint(v.id, 10)
}

// Times returns the term coefficient*v.
func (v Variable) Times(coefficient float64) Term {
	return Term{Variable: v, Coefficient: coefficient}
}

// Expr returns the expression 1*v.
func (v Variable) Expr() Expression {
	return Expression{Terms: []Term{{Variable: v, Coefficient: 1}}}
}

// Vars is an arena of variable identities. Handles are issued from a
// monotonically increasing counter and never reused, so a solver fed from one
// arena sees each identity at most once for the life of the process.
//
// Vars is safe for concurrent allocation; the solvers consuming its handles
// are not safe for concurrent use (see [Solver]).
type Vars struct {
	mu    sync.Mutex
	next  uint64
	names map[uint64]string
}

// NewVars returns an empty arena.
func NewVars() *Vars {
	return &Vars{names: make(map[uint64]string)}
}

// New allocates a fresh variable. An optional debug name may be given; it is
// kept by the arena and returned by [Vars.Name], never by the handle itself.
func (a *Vars) New(name ...string) Variable {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.next++
	v := Variable{id: a.next}
	if len(name) > 0 && name[0] != "" {
		a.names[v.id] = name[0]
	}
	return v
}

// Name returns the debug name given to v at allocation, falling back to the
// v<id> form for unnamed or foreign handles.
func (a *Vars) Name(v Variable) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := a.names[v.id]; ok {
		return s
	}
	return v.String()
}

// Len returns the number of variables allocated so far.
func (a *Vars) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return int(a.next)
}
