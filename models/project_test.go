package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2026-03-15 ")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2026 || int(d.Month()) != 3 || d.Day() != 15 {
		t.Fatalf("unexpected date: %v", d)
	}

	for _, bad := range []string{"", "15/03/2026", "2026-3-15", "not a date"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestProjectPatchColumns(t *testing.T) {
	name := "Obra Nova"
	start := "2026-05-01"
	status := ProjectStatusOnHold

	patch := ProjectPatch{Name: &name, StartDate: &start, Status: &status}
	cols, err := patch.Columns()
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %d: %v", len(cols), cols)
	}
	if cols["name"] != "Obra Nova" {
		t.Errorf("name column = %v", cols["name"])
	}
	if _, ok := cols["start_date"]; !ok {
		t.Error("start_date column missing")
	}
}

func TestProjectPatchColumnsEmpty(t *testing.T) {
	cols, err := (&ProjectPatch{}).Columns()
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if len(cols) != 0 {
		t.Fatalf("empty patch produced columns: %v", cols)
	}
}

func TestProjectPatchColumnsRejectsBadValues(t *testing.T) {
	neg := decimal.NewFromInt(-1)
	if _, err := (&ProjectPatch{ContractValue: &neg}).Columns(); err == nil {
		t.Error("negative contract_value accepted")
	}

	bad := "soon"
	if _, err := (&ProjectPatch{EndDate: &bad}).Columns(); err == nil {
		t.Error("unparseable end_date accepted")
	}

	status := ProjectStatus("demolished")
	if _, err := (&ProjectPatch{Status: &status}).Columns(); err == nil {
		t.Error("invalid status accepted")
	}
}

func TestNewProjectValidateDefaultsStatus(t *testing.T) {
	input := NewProject{
		Name:      "Obra",
		Client:    "Cliente",
		Type:      "residencial",
		StartDate: "2026-01-01",
		EndDate:   "2026-12-31",
	}
	if err := input.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if input.Status != ProjectStatusPlanning {
		t.Fatalf("status = %q, want planning default", input.Status)
	}
}
