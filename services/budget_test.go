package services

import (
	"testing"

	"github.com/obradata/obras_backend/models"
	"github.com/shopspring/decimal"
)

func TestSumPlannedCost(t *testing.T) {
	rows := []plannedCostRow{
		{StageId: 1, PlannedQuantity: decimal.NewFromInt(100), PlannedUnitCost: decimal.NewFromInt(50)},
		{StageId: 1, PlannedQuantity: decimal.NewFromInt(10), PlannedUnitCost: decimal.NewFromFloat(2.5)},
		{StageId: 2, PlannedQuantity: decimal.NewFromInt(3), PlannedUnitCost: decimal.NewFromInt(1000)},
	}

	got := sumPlannedCost(rows)
	want := decimal.NewFromInt(8025) // 5000 + 25 + 3000
	if !got.Equal(want) {
		t.Fatalf("sumPlannedCost = %s, want %s", got, want)
	}
}

func TestSumPlannedCostEmpty(t *testing.T) {
	if got := sumPlannedCost(nil); !got.IsZero() {
		t.Fatalf("sumPlannedCost(nil) = %s, want 0", got)
	}
}

// Per-stage totals must add up to the project total, and stages without
// activities must still show up with a zero total.
func TestGroupCostByStage(t *testing.T) {
	stages := []*models.Stage{
		{ID: 1, Name: "Fundação"},
		{ID: 2, Name: "Estrutura"},
		{ID: 3, Name: "Acabamento"}, // no activities yet
	}
	rows := []plannedCostRow{
		{StageId: 1, PlannedQuantity: decimal.NewFromInt(85), PlannedUnitCost: decimal.NewFromInt(95)},
		{StageId: 1, PlannedQuantity: decimal.NewFromInt(42), PlannedUnitCost: decimal.NewFromInt(780)},
		{StageId: 2, PlannedQuantity: decimal.NewFromInt(38), PlannedUnitCost: decimal.NewFromInt(1850)},
	}

	got := groupCostByStage(stages, rows)
	if len(got) != 3 {
		t.Fatalf("expected 3 stage rows, got %d", len(got))
	}

	if !got[0].TotalCost.Equal(decimal.NewFromInt(40835)) { // 8075 + 32760
		t.Errorf("stage 1 total = %s, want 40835", got[0].TotalCost)
	}
	if !got[1].TotalCost.Equal(decimal.NewFromInt(70300)) {
		t.Errorf("stage 2 total = %s, want 70300", got[1].TotalCost)
	}
	if !got[2].TotalCost.IsZero() {
		t.Errorf("empty stage total = %s, want 0", got[2].TotalCost)
	}

	sum := decimal.Zero
	for _, sc := range got {
		sum = sum.Add(sc.TotalCost)
	}
	if total := sumPlannedCost(rows); !sum.Equal(total) {
		t.Errorf("stage totals sum to %s, project total is %s", sum, total)
	}
}

func TestGroupCostByStagePreservesOrder(t *testing.T) {
	stages := []*models.Stage{
		{ID: 7, Name: "B"},
		{ID: 3, Name: "A"},
	}
	got := groupCostByStage(stages, nil)
	if got[0].StageId != 7 || got[1].StageId != 3 {
		t.Fatalf("stage order not preserved: %+v", got)
	}
}
