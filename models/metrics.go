package models

import "github.com/shopspring/decimal"

// ProgressResult is the earned-value snapshot for one project.
//
// Defaults for degenerate inputs: cpi = 1 when ac = 0, spi = 1 when bac = 0,
// percent_complete = 0 when bac = 0. SPI is an approximation (ev against a
// flat 50% planned-value curve), flagged via SpiApproximate.
type ProgressResult struct {
	Bac             decimal.Decimal `json:"bac"`
	Ac              decimal.Decimal `json:"ac"`
	Ev              decimal.Decimal `json:"ev"`
	Cpi             decimal.Decimal `json:"cpi"`
	Spi             decimal.Decimal `json:"spi"`
	PercentComplete decimal.Decimal `json:"percent_complete"`
	SpiApproximate  bool            `json:"spi_approximate"`
}

// StageCost is one dashboard bar: a stage and its summed planned cost.
// Stages without activities appear with a zero total.
type StageCost struct {
	StageId   int             `json:"stage_id"`
	Name      string          `json:"name"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// ReportSummaryRow is a labeled metric cell pair on the report's first sheet.
type ReportSummaryRow struct {
	Item  string
	Value interface{}
}

// ReportDetailRow is one activity line on the report's second sheet.
type ReportDetailRow struct {
	Stage    string
	Activity string
	Unit     string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
	Total    decimal.Decimal
	Duration int
}

// ProjectReport is the data behind the two-sheet export; the spreadsheet
// rendering consumes it as-is.
type ProjectReport struct {
	Summary []ReportSummaryRow
	Details []ReportDetailRow
}
