package entity

import (
	"math"
	"math/rand"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func assertBreakdown(t *testing.T, got Breakdown, want Breakdown) {
	t.Helper()
	for key, expected := range want {
		if !almostEqual(got[key], expected) {
			t.Errorf("expected %s=%v, got %v", key, expected, got[key])
		}
	}
}

func TestRedistributeBreakdown(t *testing.T) {
	t.Run("raising venue takes the difference equally from the others", func(t *testing.T) {
		got := RedistributeBreakdown(DefaultBreakdown(), CategoryVenue, 60)

		assertBreakdown(t, got, Breakdown{
			CategoryVenue:       60,
			CategoryCatering:    25,
			CategoryDecor:       10,
			CategoryPhotography: 5,
			CategoryMisc:        0,
		})
		if !almostEqual(got.Total(), 100) {
			t.Errorf("expected total 100, got %v", got.Total())
		}
	})

	t.Run("lowering a category gives the difference to the others", func(t *testing.T) {
		got := RedistributeBreakdown(DefaultBreakdown(), CategoryCatering, 10)

		assertBreakdown(t, got, Breakdown{
			CategoryVenue:       45,
			CategoryCatering:    10,
			CategoryDecor:       20,
			CategoryPhotography: 15,
			CategoryMisc:        10,
		})
	})

	t.Run("setting the current value changes nothing", func(t *testing.T) {
		start := DefaultBreakdown()
		for _, key := range CategoryKeys {
			got := RedistributeBreakdown(start, key, start[key])
			assertBreakdown(t, got, start)
		}
	})

	t.Run("input breakdown is not modified", func(t *testing.T) {
		start := DefaultBreakdown()
		_ = RedistributeBreakdown(start, CategoryVenue, 70)
		assertBreakdown(t, start, DefaultBreakdown())
	})

	t.Run("unknown category returns an unchanged copy", func(t *testing.T) {
		got := RedistributeBreakdown(DefaultBreakdown(), CategoryKey("flowers"), 50)
		assertBreakdown(t, got, DefaultBreakdown())
		if _, ok := got[CategoryKey("flowers")]; ok {
			t.Error("expected unknown category not to be added")
		}
	})

	t.Run("non-finite values are ignored", func(t *testing.T) {
		for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			got := RedistributeBreakdown(DefaultBreakdown(), CategoryDecor, value)
			assertBreakdown(t, got, DefaultBreakdown())
		}
	})

	t.Run("values outside the slider range are still redistributed", func(t *testing.T) {
		got := RedistributeBreakdown(DefaultBreakdown(), CategoryVenue, 250)
		if !almostEqual(got[CategoryVenue], 250) {
			t.Errorf("expected venue 250, got %v", got[CategoryVenue])
		}
		if math.Abs(got.Total()-PercentageTotal) > PercentageTolerance {
			t.Errorf("expected total within tolerance, got %v", got.Total())
		}
	})
}

func TestRedistributeBreakdown_ClampedCategoriesCanGoNegativeAfterCorrection(t *testing.T) {
	first := RedistributeBreakdown(DefaultBreakdown(), CategoryVenue, 60)
	if !almostEqual(first[CategoryMisc], 0) {
		t.Fatalf("expected misc to reach 0, got %v", first[CategoryMisc])
	}

	t.Run("clamp step keeps every category non-negative", func(t *testing.T) {
		next := first.Clone()
		next[CategoryVenue] = 80
		others := otherCategories(first, CategoryVenue)
		spreadDelta(next, first, others, 20)

		for _, key := range others {
			if next[key] < 0 {
				t.Errorf("expected %s >= 0 after clamp, got %v", key, next[key])
			}
		}
		if !almostEqual(next[CategoryMisc], 0) {
			t.Errorf("expected misc to stay at 0 after clamp, got %v", next[CategoryMisc])
		}
		if !almostEqual(next.Total(), 105) {
			t.Errorf("expected clamped total 105, got %v", next.Total())
		}
	})

	t.Run("correction spreads the drift without clamping again", func(t *testing.T) {
		got := RedistributeBreakdown(first, CategoryVenue, 80)

		assertBreakdown(t, got, Breakdown{
			CategoryVenue:       80,
			CategoryCatering:    18.75,
			CategoryDecor:       3.75,
			CategoryPhotography: -1.25,
			CategoryMisc:        -1.25,
		})
		if math.Abs(got.Total()-PercentageTotal) > PercentageTolerance {
			t.Errorf("expected total within %v of 100, got %v", PercentageTolerance, got.Total())
		}
	})
}

func TestRedistributeBreakdown_SumStaysWithinTolerance(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	breakdown := DefaultBreakdown()

	for i := 0; i < 5000; i++ {
		key := CategoryKeys[rng.Intn(len(CategoryKeys))]
		value := rng.Float64() * 80

		breakdown = RedistributeBreakdown(breakdown, key, value)

		if diff := math.Abs(breakdown.Total() - PercentageTotal); diff > PercentageTolerance+epsilon {
			t.Fatalf("step %d: set %s=%v, total drifted to %v", i, key, value, breakdown.Total())
		}
		if !almostEqual(breakdown[key], value) {
			t.Fatalf("step %d: expected %s=%v, got %v", i, key, value, breakdown[key])
		}
	}
}

func TestCategoryKey_IsValid(t *testing.T) {
	for _, key := range CategoryKeys {
		if !key.IsValid() {
			t.Errorf("expected %s to be valid", key)
		}
	}
	for _, key := range []CategoryKey{"", "flowers", "VENUE"} {
		if key.IsValid() {
			t.Errorf("expected %q to be invalid", key)
		}
	}
}

func TestDefaultBreakdown_SumsToHundred(t *testing.T) {
	if !almostEqual(DefaultBreakdown().Total(), PercentageTotal) {
		t.Errorf("expected default breakdown to total 100, got %v", DefaultBreakdown().Total())
	}
}
