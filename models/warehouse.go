package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseExit records material leaving the warehouse towards a stage or
// activity. Append-only ledger row.
type WarehouseExit struct {
	ID              int             `gorm:"primary_key" json:"id"`
	ProjectId       int             `gorm:"index;not null" json:"project_id"`
	MaterialId      int             `gorm:"index;not null" json:"material_id"`
	StageId         *int            `gorm:"index" json:"stage_id"`
	ActivityId      *int            `gorm:"index" json:"activity_id"`
	Date            time.Time       `gorm:"type:date;not null" json:"date"`
	Collaborator    string          `gorm:"size:200;not null" json:"collaborator"`
	StorageLocation string          `gorm:"size:100" json:"storage_location"`
	StorageSector   string          `gorm:"size:100" json:"storage_sector"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"quantity"`
}

type NewExit struct {
	ProjectId       int             `json:"project_id" binding:"required"`
	MaterialId      int             `json:"material_id" binding:"required"`
	StageId         *int            `json:"stage_id"`
	ActivityId      *int            `json:"activity_id"`
	Date            string          `json:"date" binding:"required"`
	Collaborator    string          `json:"collaborator" binding:"required"`
	StorageLocation string          `json:"storage_location"`
	StorageSector   string          `json:"storage_sector"`
	Quantity        decimal.Decimal `json:"quantity"`
}

func (input *NewExit) Validate() error {
	if !input.Quantity.IsPositive() {
		return errors.New("quantity must be positive")
	}
	if _, err := ParseDate(input.Date); err != nil {
		return errors.New("invalid date")
	}
	return nil
}

// WarehouseWaste records lost or damaged material. Append-only ledger row.
type WarehouseWaste struct {
	ID         int             `gorm:"primary_key" json:"id"`
	ProjectId  int             `gorm:"index;not null" json:"project_id"`
	MaterialId int             `gorm:"index;not null" json:"material_id"`
	Date       time.Time       `gorm:"type:date;not null" json:"date"`
	Quantity   decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"quantity"`
	Reason     string          `gorm:"type:text" json:"reason"`
}

type NewWaste struct {
	ProjectId  int             `json:"project_id" binding:"required"`
	MaterialId int             `json:"material_id" binding:"required"`
	Date       string          `json:"date" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason"`
}

func (input *NewWaste) Validate() error {
	if !input.Quantity.IsPositive() {
		return errors.New("quantity must be positive")
	}
	if _, err := ParseDate(input.Date); err != nil {
		return errors.New("invalid date")
	}
	return nil
}

// ExitRow / WasteRow join display names for listings.
type ExitRow struct {
	WarehouseExit
	MaterialName string `json:"material_name"`
	Unit         string `json:"unit"`
	StageName    string `json:"stage_name"`
	ActivityName string `json:"activity_name"`
}

type WasteRow struct {
	WarehouseWaste
	MaterialName string `json:"material_name"`
	Unit         string `json:"unit"`
}
