package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/obradata/obras_backend/config"
	"github.com/obradata/obras_backend/models"
	"github.com/obradata/obras_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackingService derives the earned-value snapshot and owns the daily-log
// write path.
type TrackingService struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	Budget *BudgetService
}

func NewTrackingService(db *gorm.DB, logger *logrus.Logger, budget *BudgetService) *TrackingService {
	return &TrackingService{DB: db, Logger: logger, Budget: budget}
}

// activityExecution is one activity with at least one daily log: its plan
// plus the summed executed quantity.
type activityExecution struct {
	ActivityId       int
	PlannedQuantity  decimal.Decimal
	PlannedUnitCost  decimal.Decimal
	ExecutedQuantity decimal.Decimal
}

// ProjectProgress computes BAC, AC, EV, CPI, SPI and percent-complete for a
// project. Degenerate inputs (no activities, no logs, zero budget) resolve to
// the documented defaults and never fail.
func (s *TrackingService) ProjectProgress(ctx context.Context, projectID int) (*models.ProgressResult, error) {
	bac, err := s.Budget.TotalPlannedCost(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var acRow struct{ TotalRealCost decimal.Decimal }
	acSQL := `
SELECT COALESCE(SUM(dl.real_cost), 0) AS total_real_cost
FROM daily_logs dl
JOIN activities a ON dl.activity_id = a.id
JOIN stages s ON a.stage_id = s.id
WHERE s.project_id = ?
`
	if err := s.DB.WithContext(ctx).Raw(acSQL, projectID).Scan(&acRow).Error; err != nil {
		config.LogError(s.Logger, "tracking", "ProjectProgress", "sum real cost", projectID, err)
		return nil, err
	}

	execSQL := `
SELECT
    a.id AS activity_id,
    a.planned_quantity,
    a.planned_unit_cost,
    SUM(dl.executed_quantity) AS executed_quantity
FROM daily_logs dl
JOIN activities a ON dl.activity_id = a.id
JOIN stages s ON a.stage_id = s.id
WHERE s.project_id = ?
GROUP BY a.id, a.planned_quantity, a.planned_unit_cost
`
	var execs []activityExecution
	if err := s.DB.WithContext(ctx).Raw(execSQL, projectID).Scan(&execs).Error; err != nil {
		config.LogError(s.Logger, "tracking", "ProjectProgress", "sum executed per activity", projectID, err)
		return nil, err
	}

	result := computeProgress(bac, acRow.TotalRealCost, execs)
	return &result, nil
}

// computeProgress is the pure earned-value formula set.
//
// EV = sum over logged activities of (executed/planned) x (planned x unit
// cost); activities with a zero planned quantity are skipped to avoid the
// division. CPI = ev/ac (1 when ac = 0: no cost incurred yet is not a
// problem). SPI = ev/(bac x 0.5), a placeholder for a time-phased planned
// value curve (1 when bac = 0).
func computeProgress(bac, ac decimal.Decimal, execs []activityExecution) models.ProgressResult {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)

	ev := decimal.Zero
	for _, e := range execs {
		if !e.PlannedQuantity.IsPositive() {
			continue
		}
		plannedValue := e.PlannedQuantity.Mul(e.PlannedUnitCost)
		physicalComplete := e.ExecutedQuantity.Div(e.PlannedQuantity)
		ev = ev.Add(physicalComplete.Mul(plannedValue))
	}

	cpi := one
	if ac.IsPositive() {
		cpi = ev.Div(ac)
	}

	spi := one
	percentComplete := decimal.Zero
	if bac.IsPositive() {
		spi = ev.Div(bac.Mul(decimal.NewFromFloat(0.5)))
		percentComplete = ev.Div(bac).Mul(hundred)
	}

	return models.ProgressResult{
		Bac:             bac,
		Ac:              ac,
		Ev:              ev,
		Cpi:             cpi,
		Spi:             spi,
		PercentComplete: percentComplete,
		SpiApproximate:  true,
	}
}

// CreateDailyLog persists a log after enforcing the executed-quantity cap
// against the activity's planned quantity.
//
// The cap check and the insert run inside one transaction holding a FOR
// UPDATE lock on the activity row, so two concurrent submissions against the
// same activity serialize and cannot jointly exceed the plan.
func (s *TrackingService) CreateDailyLog(ctx context.Context, input *models.NewDailyLog) (*models.DailyLog, error) {
	if err := input.Validate(); err != nil {
		return nil, &utils.ValidationError{Message: err.Error()}
	}
	date, _ := models.ParseDate(input.Date)

	var logRow models.DailyLog
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity models.Activity
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&activity, input.ActivityId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &utils.NotFoundError{Entity: "activity", ID: input.ActivityId}
			}
			return err
		}

		// live sum under the lock; no cached counters
		var executed struct{ Total decimal.Decimal }
		if err := tx.Raw(
			"SELECT COALESCE(SUM(executed_quantity), 0) AS total FROM daily_logs WHERE activity_id = ?",
			input.ActivityId,
		).Scan(&executed).Error; err != nil {
			return err
		}

		total := executed.Total.Add(input.ExecutedQuantity)
		if total.GreaterThan(activity.PlannedQuantity) {
			return &utils.ValidationError{
				Message: fmt.Sprintf(
					"total executed quantity (%s) for %q would exceed the planned quantity (%s)",
					total, activity.Description, activity.PlannedQuantity,
				),
				Description: activity.Description,
				Attempted:   total,
				Limit:       activity.PlannedQuantity,
			}
		}

		logRow = models.DailyLog{
			ActivityId:       input.ActivityId,
			Date:             date,
			ExecutedQuantity: input.ExecutedQuantity,
			RealCost:         input.RealCost,
			Notes:            input.Notes,
		}
		return tx.Create(&logRow).Error
	})
	if err != nil {
		return nil, err
	}
	return &logRow, nil
}

// ProjectDailyLogs lists a project's logs newest first, joined with activity
// and stage names.
func (s *TrackingService) ProjectDailyLogs(ctx context.Context, projectID int) ([]*models.DailyLogRow, error) {
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", projectID); err != nil {
		return nil, err
	}

	sql := `
SELECT dl.*, a.description AS activity_name, s.name AS stage_name
FROM daily_logs dl
JOIN activities a ON dl.activity_id = a.id
JOIN stages s ON a.stage_id = s.id
WHERE s.project_id = ?
ORDER BY dl.date DESC, dl.id DESC
`
	var rows []*models.DailyLogRow
	if err := s.DB.WithContext(ctx).Raw(sql, projectID).Scan(&rows).Error; err != nil {
		config.LogError(s.Logger, "tracking", "ProjectDailyLogs", "list logs", projectID, err)
		return nil, err
	}
	return rows, nil
}

// DeleteDailyLog removes one ledger row; aggregates recompute on next read.
func (s *TrackingService) DeleteDailyLog(ctx context.Context, id int) error {
	logRow, err := utils.FetchModel[models.DailyLog](ctx, s.DB, "daily log", id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(logRow).Error
}
