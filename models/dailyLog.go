package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DailyLog is an append-only ledger row; logs are created and deleted but
// never updated. The executed-quantity cap against the activity's plan is
// enforced at create time under a row lock.
type DailyLog struct {
	ID               int             `gorm:"primary_key" json:"id"`
	ActivityId       int             `gorm:"index;not null" json:"activity_id"`
	Date             time.Time       `gorm:"type:date;not null" json:"date"`
	ExecutedQuantity decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"executed_quantity"`
	RealCost         decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"real_cost"`
	Notes            string          `gorm:"type:text" json:"notes"`
}

type NewDailyLog struct {
	ActivityId       int             `json:"activity_id" binding:"required"`
	Date             string          `json:"date" binding:"required"`
	ExecutedQuantity decimal.Decimal `json:"executed_quantity"`
	RealCost         decimal.Decimal `json:"real_cost"`
	Notes            string          `json:"notes"`
}

func (input *NewDailyLog) Validate() error {
	if input.ExecutedQuantity.IsNegative() {
		return errors.New("executed_quantity must not be negative")
	}
	if input.RealCost.IsNegative() {
		return errors.New("real_cost must not be negative")
	}
	if _, err := ParseDate(input.Date); err != nil {
		return errors.New("invalid date")
	}
	return nil
}

// DailyLogRow is a log joined with its activity and stage names for project
// listings.
type DailyLogRow struct {
	DailyLog
	ActivityName string `json:"activity_name"`
	StageName    string `json:"stage_name"`
}
