package services

import (
	"testing"

	"github.com/obradata/obras_backend/models"
	"github.com/shopspring/decimal"
)

func demoReportInput() (*models.Project, *models.ProgressResult, []*models.ActivityRow) {
	project := &models.Project{
		Name:   "Residencial Villa Verde",
		Client: "Construtora Horizonte Ltda",
		Status: models.ProjectStatusInProgress,
	}
	stats := &models.ProgressResult{
		Bac:             decimal.NewFromInt(5000),
		Ac:              decimal.NewFromInt(2000),
		Ev:              decimal.NewFromInt(2500),
		Cpi:             decimal.NewFromFloat(1.25),
		Spi:             decimal.NewFromInt(1),
		PercentComplete: decimal.NewFromInt(50),
		SpiApproximate:  true,
	}
	activities := []*models.ActivityRow{
		{
			Activity: models.Activity{
				Description:     "Escavação de valas",
				Unit:            "m³",
				PlannedQuantity: decimal.NewFromInt(85),
				PlannedUnitCost: decimal.NewFromInt(95),
				PlannedDuration: 8,
			},
			StageName: "Fundação",
		},
		{
			Activity: models.Activity{
				Description:     "Pilares em concreto armado",
				Unit:            "m³",
				PlannedQuantity: decimal.NewFromInt(38),
				PlannedUnitCost: decimal.NewFromInt(1850),
				PlannedDuration: 20,
			},
			StageName: "Estrutura",
		},
	}
	return project, stats, activities
}

func TestBuildSummaryRows(t *testing.T) {
	project, stats, _ := demoReportInput()
	rows := buildSummaryRows(project, stats)

	if len(rows) != 9 {
		t.Fatalf("expected 9 summary rows, got %d", len(rows))
	}
	if rows[0].Item != "Projeto" || rows[0].Value != "Residencial Villa Verde" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[3].Value != "50.00%" {
		t.Errorf("progress row = %v, want 50.00%%", rows[3].Value)
	}
	if rows[4].Value != float64(5000) {
		t.Errorf("BAC row = %v, want 5000", rows[4].Value)
	}
	if rows[8].Value != float64(1.25) {
		t.Errorf("CPI row = %v, want 1.25", rows[8].Value)
	}
}

func TestBuildDetailRows(t *testing.T) {
	_, _, activities := demoReportInput()
	rows := buildDetailRows(activities)

	if len(rows) != 2 {
		t.Fatalf("expected 2 detail rows, got %d", len(rows))
	}
	if rows[0].Stage != "Fundação" || rows[0].Activity != "Escavação de valas" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if !rows[0].Total.Equal(decimal.NewFromInt(8075)) {
		t.Errorf("row 0 total = %s, want 8075", rows[0].Total)
	}
	if !rows[1].Total.Equal(decimal.NewFromInt(70300)) {
		t.Errorf("row 1 total = %s, want 70300", rows[1].Total)
	}
}

func TestRenderWorkbook(t *testing.T) {
	project, stats, activities := demoReportInput()
	report := &models.ProjectReport{
		Summary: buildSummaryRows(project, stats),
		Details: buildDetailRows(activities),
	}

	f, err := RenderWorkbook(report)
	if err != nil {
		t.Fatalf("RenderWorkbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Resumo" || sheets[1] != "Detalhes" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	v, err := f.GetCellValue("Resumo", "A2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if v != "Projeto" {
		t.Errorf("Resumo!A2 = %q, want Projeto", v)
	}

	v, err = f.GetCellValue("Detalhes", "A1")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if v != "Etapa" {
		t.Errorf("Detalhes!A1 = %q, want Etapa", v)
	}

	v, err = f.GetCellValue("Detalhes", "F2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if v != "8075" {
		t.Errorf("Detalhes!F2 = %q, want 8075", v)
	}
}
