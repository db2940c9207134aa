// Package entity defines the core business entities for the domain layer.
package entity

import (
	"math"
)

// CategoryKey identifies one of the fixed budget categories.
type CategoryKey string

const (
	CategoryVenue       CategoryKey = "venue"
	CategoryCatering    CategoryKey = "catering"
	CategoryDecor       CategoryKey = "decor"
	CategoryPhotography CategoryKey = "photography"
	CategoryMisc        CategoryKey = "misc"
)

const (
	// PercentageTotal is the value every breakdown must sum to.
	PercentageTotal = 100.0

	// PercentageTolerance is the drift allowed before a correction pass runs.
	PercentageTolerance = 0.1
)

// CategoryKeys lists the fixed categories in their canonical order.
var CategoryKeys = []CategoryKey{
	CategoryVenue,
	CategoryCatering,
	CategoryDecor,
	CategoryPhotography,
	CategoryMisc,
}

// IsValid reports whether the key is one of the fixed categories.
func (k CategoryKey) IsValid() bool {
	for _, key := range CategoryKeys {
		if key == k {
			return true
		}
	}
	return false
}

// Breakdown maps each category to its share of the total budget, in percent.
type Breakdown map[CategoryKey]float64

// DefaultBreakdown returns the breakdown every new budget starts with.
func DefaultBreakdown() Breakdown {
	return Breakdown{
		CategoryVenue:       40,
		CategoryCatering:    30,
		CategoryDecor:       15,
		CategoryPhotography: 10,
		CategoryMisc:        5,
	}
}

// Clone returns an independent copy of the breakdown.
func (b Breakdown) Clone() Breakdown {
	clone := make(Breakdown, len(b))
	for key, value := range b {
		clone[key] = value
	}
	return clone
}

// Total returns the sum of all category percentages.
func (b Breakdown) Total() float64 {
	total := 0.0
	for _, key := range CategoryKeys {
		total += b[key]
	}
	return total
}

// RedistributeBreakdown sets category to newValue and spreads the inverse of
// the change equally across every other category. Other categories are
// clamped at zero; if clamping pushes the total more than PercentageTolerance
// away from 100, the remaining drift is spread equally over the other
// categories without clamping again, so a category already at zero can end up
// slightly negative.
//
// The input breakdown is never modified. Unknown categories and non-finite
// values return an unchanged copy.
func RedistributeBreakdown(current Breakdown, category CategoryKey, newValue float64) Breakdown {
	next := current.Clone()

	oldValue, ok := current[category]
	if !ok || math.IsNaN(newValue) || math.IsInf(newValue, 0) {
		return next
	}

	delta := newValue - oldValue
	if delta == 0 {
		return next
	}

	others := otherCategories(current, category)
	next[category] = newValue
	if len(others) == 0 {
		return next
	}

	spreadDelta(next, current, others, delta)
	correctDrift(next, others)

	return next
}

// spreadDelta applies -delta/len(others) to every other category, clamped at zero.
func spreadDelta(next, current Breakdown, others []CategoryKey, delta float64) {
	perOther := -delta / float64(len(others))
	for _, key := range others {
		next[key] = math.Max(0, current[key]+perOther)
	}
}

// correctDrift pulls the total back to 100 when clamping moved it out of tolerance.
func correctDrift(next Breakdown, others []CategoryKey) {
	total := 0.0
	for _, value := range next {
		total += value
	}

	if math.Abs(total-PercentageTotal) <= PercentageTolerance {
		return
	}

	correction := (PercentageTotal - total) / float64(len(others))
	for _, key := range others {
		next[key] += correction
	}
}

func otherCategories(b Breakdown, category CategoryKey) []CategoryKey {
	others := make([]CategoryKey, 0, len(b))
	for _, key := range CategoryKeys {
		if key == category {
			continue
		}
		if _, ok := b[key]; ok {
			others = append(others, key)
		}
	}
	return others
}
