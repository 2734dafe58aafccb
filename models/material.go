package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Material is a project take-off line: the planned quantity and unit cost of
// a material, optionally tied to a stage and/or activity.
type Material struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ProjectId   int             `gorm:"index;not null" json:"project_id"`
	StageId     *int            `gorm:"index" json:"stage_id"`
	ActivityId  *int            `gorm:"index" json:"activity_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Unit        string          `gorm:"size:20;not null" json:"unit"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"quantity"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"unit_cost"`
	Category    string          `gorm:"size:100" json:"category"`

	Purchases []MaterialPurchase `gorm:"foreignKey:MaterialId;constraint:OnDelete:CASCADE" json:"-"`
	Exits     []WarehouseExit    `gorm:"foreignKey:MaterialId;constraint:OnDelete:CASCADE" json:"-"`
	Waste     []WarehouseWaste   `gorm:"foreignKey:MaterialId;constraint:OnDelete:CASCADE" json:"-"`
}

type NewMaterial struct {
	ProjectId   int             `json:"project_id" binding:"required"`
	StageId     *int            `json:"stage_id"`
	ActivityId  *int            `json:"activity_id"`
	Description string          `json:"description" binding:"required"`
	Unit        string          `json:"unit" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Category    string          `json:"category"`
}

func (input *NewMaterial) Validate() error {
	if input.Quantity.IsNegative() || input.UnitCost.IsNegative() {
		return errors.New("quantity and unit_cost must not be negative")
	}
	return nil
}

type MaterialPatch struct {
	StageId     *int             `json:"stage_id"`
	ActivityId  *int             `json:"activity_id"`
	Description *string          `json:"description"`
	Unit        *string          `json:"unit"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost"`
	Category    *string          `json:"category"`
}

func (p *MaterialPatch) Columns() (map[string]interface{}, error) {
	cols := map[string]interface{}{}
	if p.StageId != nil {
		cols["stage_id"] = *p.StageId
	}
	if p.ActivityId != nil {
		cols["activity_id"] = *p.ActivityId
	}
	if p.Description != nil {
		if *p.Description == "" {
			return nil, errors.New("description must not be empty")
		}
		cols["description"] = *p.Description
	}
	if p.Unit != nil {
		cols["unit"] = *p.Unit
	}
	if p.Quantity != nil {
		if p.Quantity.IsNegative() {
			return nil, errors.New("quantity must not be negative")
		}
		cols["quantity"] = *p.Quantity
	}
	if p.UnitCost != nil {
		if p.UnitCost.IsNegative() {
			return nil, errors.New("unit_cost must not be negative")
		}
		cols["unit_cost"] = *p.UnitCost
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	return cols, nil
}

// StockItem is a material plus its derived movement totals. CurrentStock is
// recomputed on every read, never stored.
type StockItem struct {
	Material
	StageName         string          `json:"stage_name"`
	ActivityName      string          `json:"activity_name"`
	PurchasedQuantity decimal.Decimal `json:"purchased_quantity"`
	ExitedQuantity    decimal.Decimal `json:"exited_quantity"`
	WasteQuantity     decimal.Decimal `json:"waste_quantity"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
}
