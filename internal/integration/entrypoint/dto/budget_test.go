package dto

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/domain/entity"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		body string
		want float64
	}{
		{body: `{"amount": 1500}`, want: 1500},
		{body: `{"amount": 42.5}`, want: 42.5},
		{body: `{"amount": "2500.75"}`, want: 2500.75},
		{body: `{"amount": " 300 "}`, want: 300},
		{body: `{"amount": "abc"}`, want: 0},
		{body: `{"amount": ""}`, want: 0},
		{body: `{"amount": -20}`, want: 0},
		{body: `{"amount": true}`, want: 0},
		{body: `{"amount": 1e308}`, want: entity.MaxAmount},
		{body: `{"amount": "1e400"}`, want: entity.MaxAmount},
		{body: `{}`, want: 0},
	}

	for _, tc := range cases {
		var req AddLineItemRequest
		if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.body, err)
		}
		if float64(req.Amount) != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.body, tc.want, req.Amount)
		}
	}
}

func TestUpdateLineItemRequest_AbsentAmountStaysNil(t *testing.T) {
	var req UpdateLineItemRequest
	if err := json.Unmarshal([]byte(`{"name": "Cake"}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Amount != nil {
		t.Errorf("expected nil amount, got %v", *req.Amount)
	}
	if req.Name == nil || *req.Name != "Cake" {
		t.Errorf("expected name Cake, got %v", req.Name)
	}
}

func TestToBudgetSummaryResponse(t *testing.T) {
	budget := entity.NewBudget(uuid.New(), "Our wedding", 20000)
	budget.AddLineItem("Flowers", 1200, entity.CategoryDecor)

	resp := ToBudgetSummaryResponse(budget.Summary())

	if len(resp.Categories) != len(entity.CategoryKeys) {
		t.Fatalf("expected %d categories, got %d", len(entity.CategoryKeys), len(resp.Categories))
	}
	if resp.Categories[0].Key != "venue" || resp.Categories[0].Amount != 8000 {
		t.Errorf("expected venue first with amount 8000, got %+v", resp.Categories[0])
	}
	if resp.Breakdown["misc"] != 5 {
		t.Errorf("expected misc 5, got %v", resp.Breakdown["misc"])
	}
	if resp.RemainingBudget != 18800 || resp.IsOverBudget {
		t.Errorf("unexpected totals: remaining=%v over=%v", resp.RemainingBudget, resp.IsOverBudget)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	var decoded map[string]interface{}
	_ = json.Unmarshal(data, &decoded)
	for _, key := range []string{"total_budget", "breakdown", "line_items", "total_allocated", "remaining_budget", "is_over_budget"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected key %q in JSON", key)
		}
	}
}
