// Package entity defines the core business entities for the domain layer.
package entity

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultLineItemName is used when a line item is added without a name.
	DefaultLineItemName = "New item"

	// DefaultLineItemCategory is used when a line item is added without a valid category.
	DefaultLineItemCategory = CategoryMisc
)

// LineItem is a concrete, named expense with an absolute amount. Its category
// is a display tag only and has no link to the percentage breakdown.
type LineItem struct {
	ID       uuid.UUID
	Name     string
	Amount   float64
	Category CategoryKey
}

// LineItemPatch carries the fields to change on a line item. Nil fields are left as they are.
type LineItemPatch struct {
	Name     *string
	Amount   *float64
	Category *CategoryKey
}

// Totals are the figures derived from the total budget and the line items.
type Totals struct {
	TotalAllocated  float64
	RemainingBudget float64
	IsOverBudget    bool
}

// Summary is the snapshot handed to observers after every change.
type Summary struct {
	BudgetID      uuid.UUID
	TotalBudget   float64
	Breakdown     Breakdown
	ActualAmounts map[CategoryKey]float64
	LineItems     []LineItem
	Totals
}

// Observer receives a summary after every successful mutation of a budget.
type Observer func(Summary)

// Budget is a wedding budget: a percentage breakdown over the fixed categories
// plus an ordered list of line items.
//
// A Budget is not safe for concurrent use. Observers run synchronously and
// must not mutate the budget they observe.
type Budget struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	TotalBudget float64
	Categories  Breakdown
	LineItems   []*LineItem
	AlertEmail  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time // Soft-delete support

	// Version is the stored revision this budget was loaded at. Saves are
	// rejected when the stored revision has moved on.
	Version int64

	observer  Observer
	notifying bool
}

// NewBudget creates a new Budget with the default breakdown and no line items.
func NewBudget(ownerID uuid.UUID, name string, totalBudget float64) *Budget {
	now := time.Now().UTC()

	return &Budget{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		TotalBudget: NormalizeAmount(totalBudget),
		Categories:  DefaultBreakdown(),
		LineItems:   make([]*LineItem, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Observe registers fn as the budget's observer and immediately sends it the
// current summary. A nil fn removes the observer.
func (b *Budget) Observe(fn Observer) {
	b.observer = fn
	b.notify()
}

// SetCategoryPercentage changes one category's share and redistributes the
// difference over the others. It returns false, without notifying, when the
// category is not part of the breakdown.
func (b *Budget) SetCategoryPercentage(category CategoryKey, value float64) bool {
	b.guardMutation()

	if _, ok := b.Categories[category]; !ok || !category.IsValid() {
		return false
	}

	b.Categories = RedistributeBreakdown(b.Categories, category, value)
	b.commit()
	return true
}

// ResetBreakdown restores the default percentages.
func (b *Budget) ResetBreakdown() {
	b.guardMutation()

	b.Categories = DefaultBreakdown()
	b.commit()
}

// SetTotalBudget replaces the total budget. Negative and non-finite values become zero.
func (b *Budget) SetTotalBudget(total float64) {
	b.guardMutation()

	b.TotalBudget = NormalizeAmount(total)
	b.commit()
}

// AddLineItem appends a line item, filling in defaults for an empty name or
// an invalid category, and returns it.
func (b *Budget) AddLineItem(name string, amount float64, category CategoryKey) *LineItem {
	b.guardMutation()

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultLineItemName
	}
	if !category.IsValid() {
		category = DefaultLineItemCategory
	}

	item := &LineItem{
		ID:       uuid.New(),
		Name:     name,
		Amount:   NormalizeAmount(amount),
		Category: category,
	}
	b.LineItems = append(b.LineItems, item)
	b.commit()

	return item
}

// UpdateLineItem applies patch to the line item with the given ID in place.
// It returns false when no such item exists.
func (b *Budget) UpdateLineItem(id uuid.UUID, patch LineItemPatch) bool {
	b.guardMutation()

	item := b.FindLineItem(id)
	if item == nil {
		return false
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Amount != nil {
		item.Amount = NormalizeAmount(*patch.Amount)
	}
	if patch.Category != nil && patch.Category.IsValid() {
		item.Category = *patch.Category
	}

	b.commit()
	return true
}

// RemoveLineItem deletes the line item with the given ID, keeping the order
// of the rest. It returns false when no such item exists.
func (b *Budget) RemoveLineItem(id uuid.UUID) bool {
	b.guardMutation()

	for i, item := range b.LineItems {
		if item.ID == id {
			b.LineItems = append(b.LineItems[:i], b.LineItems[i+1:]...)
			b.commit()
			return true
		}
	}
	return false
}

// FindLineItem returns the line item with the given ID, or nil.
func (b *Budget) FindLineItem(id uuid.UUID) *LineItem {
	for _, item := range b.LineItems {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Totals returns the derived totals for the current state.
func (b *Budget) Totals() Totals {
	return ComputeTotals(b.TotalBudget, b.LineItems)
}

// ActualAmounts converts each category percentage into an amount of the total budget.
func (b *Budget) ActualAmounts() map[CategoryKey]float64 {
	amounts := make(map[CategoryKey]float64, len(b.Categories))
	for key, pct := range b.Categories {
		amounts[key] = b.TotalBudget * pct / PercentageTotal
	}
	return amounts
}

// Summary returns a snapshot of the budget that shares no memory with it.
func (b *Budget) Summary() Summary {
	items := make([]LineItem, len(b.LineItems))
	for i, item := range b.LineItems {
		items[i] = *item
	}

	return Summary{
		BudgetID:      b.ID,
		TotalBudget:   b.TotalBudget,
		Breakdown:     b.Categories.Clone(),
		ActualAmounts: b.ActualAmounts(),
		LineItems:     items,
		Totals:        b.Totals(),
	}
}

// ComputeTotals sums the line item amounts and compares them to the total budget.
func ComputeTotals(totalBudget float64, items []*LineItem) Totals {
	allocated := 0.0
	for _, item := range items {
		allocated += item.Amount
	}

	return Totals{
		TotalAllocated:  allocated,
		RemainingBudget: totalBudget - allocated,
		IsOverBudget:    allocated > totalBudget,
	}
}

// MaxAmount is the largest amount a decimal(15,2) column can hold.
const MaxAmount = 9999999999999.99

// NormalizeAmount maps negative and non-finite amounts to zero and caps the
// rest at MaxAmount.
func NormalizeAmount(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0
	}
	return math.Min(amount, MaxAmount)
}

// CoerceAmount parses a user-entered amount. Anything that does not parse as
// a non-negative number becomes zero; larger values are capped at MaxAmount.
func CoerceAmount(raw string) float64 {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || value.IsNegative() {
		return 0
	}
	if value.GreaterThan(decimal.NewFromFloat(MaxAmount)) {
		return MaxAmount
	}
	return NormalizeAmount(value.InexactFloat64())
}

func (b *Budget) guardMutation() {
	if b.notifying {
		panic("entity: budget mutated from inside its own observer")
	}
}

func (b *Budget) commit() {
	b.UpdatedAt = time.Now().UTC()
	b.notify()
}

func (b *Budget) notify() {
	if b.observer == nil {
		return
	}

	b.notifying = true
	defer func() { b.notifying = false }()

	b.observer(b.Summary())
}
