package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Activity is a planned unit of work. DependencyId is informational only;
// the engines do not enforce it as a scheduling constraint.
type Activity struct {
	ID              int             `gorm:"primary_key" json:"id"`
	StageId         int             `gorm:"index;not null" json:"stage_id"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	Unit            string          `gorm:"size:20;not null" json:"unit"`
	PlannedQuantity decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"planned_quantity"`
	PlannedUnitCost decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"planned_unit_cost"`
	PlannedDuration int             `gorm:"not null" json:"planned_duration"`
	DependencyId    *int            `gorm:"index" json:"dependency_id"`
	StartDate       *time.Time      `gorm:"type:date" json:"start_date"`
	EndDate         *time.Time      `gorm:"type:date" json:"end_date"`
	DisplayOrder    int             `gorm:"not null;default:0" json:"display_order"`

	DailyLogs []DailyLog `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// PlannedCost is the activity's planned value: quantity x unit cost.
func (a *Activity) PlannedCost() decimal.Decimal {
	return a.PlannedQuantity.Mul(a.PlannedUnitCost)
}

type NewActivity struct {
	StageId         int             `json:"stage_id" binding:"required"`
	Description     string          `json:"description" binding:"required"`
	Unit            string          `json:"unit" binding:"required"`
	PlannedQuantity decimal.Decimal `json:"planned_quantity"`
	PlannedUnitCost decimal.Decimal `json:"planned_unit_cost"`
	PlannedDuration int             `json:"planned_duration"`
	DependencyId    *int            `json:"dependency_id"`
	StartDate       *string         `json:"start_date"`
	EndDate         *string         `json:"end_date"`
}

func (input *NewActivity) Validate() error {
	if input.PlannedQuantity.IsNegative() || input.PlannedUnitCost.IsNegative() {
		return errors.New("planned_quantity and planned_unit_cost must not be negative")
	}
	if input.PlannedDuration < 1 {
		return errors.New("planned_duration must be at least 1 day")
	}
	for _, s := range []*string{input.StartDate, input.EndDate} {
		if s == nil {
			continue
		}
		if _, err := ParseDate(*s); err != nil {
			return errors.New("invalid activity date")
		}
	}
	return nil
}

type ActivityPatch struct {
	Description     *string          `json:"description"`
	Unit            *string          `json:"unit"`
	PlannedQuantity *decimal.Decimal `json:"planned_quantity"`
	PlannedUnitCost *decimal.Decimal `json:"planned_unit_cost"`
	PlannedDuration *int             `json:"planned_duration"`
	DependencyId    *int             `json:"dependency_id"`
	StartDate       *string          `json:"start_date"`
	EndDate         *string          `json:"end_date"`
}

func (p *ActivityPatch) Columns() (map[string]interface{}, error) {
	cols := map[string]interface{}{}
	if p.Description != nil {
		if *p.Description == "" {
			return nil, errors.New("description must not be empty")
		}
		cols["description"] = *p.Description
	}
	if p.Unit != nil {
		cols["unit"] = *p.Unit
	}
	if p.PlannedQuantity != nil {
		if p.PlannedQuantity.IsNegative() {
			return nil, errors.New("planned_quantity must not be negative")
		}
		cols["planned_quantity"] = *p.PlannedQuantity
	}
	if p.PlannedUnitCost != nil {
		if p.PlannedUnitCost.IsNegative() {
			return nil, errors.New("planned_unit_cost must not be negative")
		}
		cols["planned_unit_cost"] = *p.PlannedUnitCost
	}
	if p.PlannedDuration != nil {
		if *p.PlannedDuration < 1 {
			return nil, errors.New("planned_duration must be at least 1 day")
		}
		cols["planned_duration"] = *p.PlannedDuration
	}
	if p.DependencyId != nil {
		cols["dependency_id"] = *p.DependencyId
	}
	if p.StartDate != nil {
		d, err := ParseDate(*p.StartDate)
		if err != nil {
			return nil, errors.New("invalid start_date")
		}
		cols["start_date"] = d
	}
	if p.EndDate != nil {
		d, err := ParseDate(*p.EndDate)
		if err != nil {
			return nil, errors.New("invalid end_date")
		}
		cols["end_date"] = d
	}
	return cols, nil
}

// ActivityRow is an activity joined with its stage name and the summed
// executed quantity, as returned by project-wide activity listings.
type ActivityRow struct {
	Activity
	StageName        string          `json:"stage_name"`
	ExecutedQuantity decimal.Decimal `json:"executed_quantity"`
}
