package services

import (
	"context"

	"github.com/obradata/obras_backend/config"
	"github.com/obradata/obras_backend/models"
	"github.com/obradata/obras_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BudgetService sums planned cost (quantity x unit cost) per project and per
// stage. Pure reads; the arithmetic runs in Go over fetched rows so the
// grouping semantics are explicit (empty stages are kept, see CostByStage).
type BudgetService struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewBudgetService(db *gorm.DB, logger *logrus.Logger) *BudgetService {
	return &BudgetService{DB: db, Logger: logger}
}

// plannedCostRow is the minimal activity projection the aggregations need.
type plannedCostRow struct {
	StageId         int
	PlannedQuantity decimal.Decimal
	PlannedUnitCost decimal.Decimal
}

func (s *BudgetService) TotalPlannedCost(ctx context.Context, projectID int) (decimal.Decimal, error) {
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", projectID); err != nil {
		return decimal.Zero, err
	}
	rows, err := s.activityRows(ctx, projectID)
	if err != nil {
		return decimal.Zero, err
	}
	return sumPlannedCost(rows), nil
}

// CostByStage returns one row per stage in display order. Stages with no
// activities are included with a zero total; a grouped inner join would
// silently drop them and the dashboard wants every bar present.
func (s *BudgetService) CostByStage(ctx context.Context, projectID int) ([]models.StageCost, error) {
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", projectID); err != nil {
		return nil, err
	}

	var stages []*models.Stage
	if err := s.DB.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("display_order").
		Find(&stages).Error; err != nil {
		return nil, err
	}

	rows, err := s.activityRows(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return groupCostByStage(stages, rows), nil
}

func (s *BudgetService) activityRows(ctx context.Context, projectID int) ([]plannedCostRow, error) {
	sql := `
SELECT a.stage_id, a.planned_quantity, a.planned_unit_cost
FROM activities a
JOIN stages s ON a.stage_id = s.id
WHERE s.project_id = ?
`
	var rows []plannedCostRow
	if err := s.DB.WithContext(ctx).Raw(sql, projectID).Scan(&rows).Error; err != nil {
		config.LogError(s.Logger, "budget", "activityRows", "planned cost query", projectID, err)
		return nil, err
	}
	return rows, nil
}

func sumPlannedCost(rows []plannedCostRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.PlannedQuantity.Mul(r.PlannedUnitCost))
	}
	return total
}

func groupCostByStage(stages []*models.Stage, rows []plannedCostRow) []models.StageCost {
	totals := make(map[int]decimal.Decimal, len(stages))
	for _, r := range rows {
		totals[r.StageId] = totals[r.StageId].Add(r.PlannedQuantity.Mul(r.PlannedUnitCost))
	}

	out := make([]models.StageCost, 0, len(stages))
	for _, st := range stages {
		total, ok := totals[st.ID]
		if !ok {
			total = decimal.Zero
		}
		out = append(out, models.StageCost{
			StageId:   st.ID,
			Name:      st.Name,
			TotalCost: total,
		})
	}
	return out
}
