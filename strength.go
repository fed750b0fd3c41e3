// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cassowary

import "math"

// Strength is the priority attached to a constraint. It combines three graded
// weights into one comparable magnitude; each weight occupies its own decimal
// band so a higher band always dominates, whatever the magnitudes in the
// bands below. Required is the top of the scale and is treated as a hard
// constraint: the solver never trades it off against weaker ones.
//
// Strength is an ordinary float64, so arithmetic such as Required-1 yields
// the strongest non-required priority.
type Strength float64

// Predefined strengths, from absolute to barely-there.
const (
	Required Strength = 1_001_001_000
	Strong   Strength = 1_000_000
	Medium   Strength = 1_000
	Weak     Strength = 1
)

// MakeStrength combines three graded weights into a single Strength. Each
// weight is clamped to [0, 1000] before entering its band, so
// MakeStrength(1000, 1000, 1000) == Required and any weaker combination
// stays strictly below it.
func MakeStrength(strong, medium, weak float64) Strength {
	return WeightedStrength(strong, medium, weak, 1)
}

// WeightedStrength is MakeStrength with every graded weight scaled by weight
// before clamping.
func WeightedStrength(strong, medium, weak, weight float64) Strength {
	s := clampWeight(strong*weight)*1_000_000 +
		clampWeight(medium*weight)*1_000 +
		clampWeight(weak*weight)
	return Strength(s)
}

func clampWeight(w float64) float64 {
	return math.Max(0, math.Min(1000, w))
}

// clip bounds a strength into the representable range [0, Required].
func clip(s Strength) Strength {
	return Strength(math.Max(0, math.Min(float64(Required), float64(s))))
}

func (s Strength) String() string {
	switch s {
	case Required:
		return "required"
	case Strong:
		return "strong"
	case Medium:
		return "medium"
	case Weak:
		return "weak"
	}
	return "strength(" + formatFloat(float64(s)) + ")"
}
