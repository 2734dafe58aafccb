package services

import (
	"context"
	"fmt"

	"github.com/obradata/obras_backend/models"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportService projects a project's plan and progress into the two-sheet
// export: a summary of the earned-value metrics and one detail row per
// activity. Cell formatting beyond plain values is out of scope.
type ReportService struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	Projects *ProjectService
	Tracking *TrackingService
}

func NewReportService(db *gorm.DB, logger *logrus.Logger, projects *ProjectService, tracking *TrackingService) *ReportService {
	return &ReportService{DB: db, Logger: logger, Projects: projects, Tracking: tracking}
}

// BuildProjectReport assembles the summary and detail rows.
func (s *ReportService) BuildProjectReport(ctx context.Context, projectID int) (*models.ProjectReport, error) {
	project, err := s.Projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	activities, err := s.Projects.ProjectActivities(ctx, projectID)
	if err != nil {
		return nil, err
	}
	stats, err := s.Tracking.ProjectProgress(ctx, projectID)
	if err != nil {
		return nil, err
	}

	report := &models.ProjectReport{
		Summary: buildSummaryRows(project, stats),
		Details: buildDetailRows(activities),
	}
	return report, nil
}

func buildSummaryRows(project *models.Project, stats *models.ProgressResult) []models.ReportSummaryRow {
	return []models.ReportSummaryRow{
		{Item: "Projeto", Value: project.Name},
		{Item: "Cliente", Value: project.Client},
		{Item: "Status", Value: string(project.Status)},
		{Item: "Progresso Físico", Value: fmt.Sprintf("%s%%", stats.PercentComplete.StringFixed(2))},
		{Item: "Custo Planejado (BAC)", Value: stats.Bac.InexactFloat64()},
		{Item: "Custo Real (AC)", Value: stats.Ac.InexactFloat64()},
		{Item: "Valor Agregado (EV)", Value: stats.Ev.InexactFloat64()},
		{Item: "SPI", Value: stats.Spi.InexactFloat64()},
		{Item: "CPI", Value: stats.Cpi.InexactFloat64()},
	}
}

func buildDetailRows(activities []*models.ActivityRow) []models.ReportDetailRow {
	rows := make([]models.ReportDetailRow, 0, len(activities))
	for _, act := range activities {
		rows = append(rows, models.ReportDetailRow{
			Stage:    act.StageName,
			Activity: act.Description,
			Unit:     act.Unit,
			Quantity: act.PlannedQuantity,
			UnitCost: act.PlannedUnitCost,
			Total:    act.PlannedQuantity.Mul(act.PlannedUnitCost),
			Duration: act.PlannedDuration,
		})
	}
	return rows
}

// RenderWorkbook turns the report rows into an xlsx workbook with a
// "Resumo" and a "Detalhes" sheet.
func RenderWorkbook(report *models.ProjectReport) (*excelize.File, error) {
	f := excelize.NewFile()

	const summarySheet = "Resumo"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	f.SetCellValue(summarySheet, "A1", "Item")
	f.SetCellValue(summarySheet, "B1", "Valor")
	for i, row := range report.Summary {
		f.SetCellValue(summarySheet, "A"+fmt.Sprint(i+2), row.Item)
		f.SetCellValue(summarySheet, "B"+fmt.Sprint(i+2), row.Value)
	}

	const detailSheet = "Detalhes"
	if _, err := f.NewSheet(detailSheet); err != nil {
		return nil, err
	}
	headings := []string{"Etapa", "Atividade", "Unid.", "Qtd.", "Custo Unit.", "Total Planejado", "Duração"}
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(detailSheet, string(col)+"1", h)
		col++
	}
	for i, row := range report.Details {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(detailSheet, "A"+rowNo, row.Stage)
		f.SetCellValue(detailSheet, "B"+rowNo, row.Activity)
		f.SetCellValue(detailSheet, "C"+rowNo, row.Unit)
		f.SetCellValue(detailSheet, "D"+rowNo, row.Quantity.InexactFloat64())
		f.SetCellValue(detailSheet, "E"+rowNo, row.UnitCost.InexactFloat64())
		f.SetCellValue(detailSheet, "F"+rowNo, row.Total.InexactFloat64())
		f.SetCellValue(detailSheet, "G"+rowNo, row.Duration)
	}

	return f, nil
}
