package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// MaterialPurchase is an append-only ledger row. UnitPrice is the price paid
// and may differ from the material's planned unit cost.
type MaterialPurchase struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ProjectId     int             `gorm:"index;not null" json:"project_id"`
	MaterialId    int             `gorm:"index;not null" json:"material_id"`
	Date          time.Time       `gorm:"type:date;not null" json:"date"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"unit_price"`
	Supplier      string          `gorm:"size:200;not null" json:"supplier"`
	InvoiceNumber string          `gorm:"size:100" json:"invoice_number"`
	Notes         string          `gorm:"type:text" json:"notes"`
}

type NewPurchase struct {
	ProjectId     int             `json:"project_id" binding:"required"`
	MaterialId    int             `json:"material_id" binding:"required"`
	Date          string          `json:"date" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Supplier      string          `json:"supplier" binding:"required"`
	InvoiceNumber string          `json:"invoice_number"`
	Notes         string          `json:"notes"`
}

func (input *NewPurchase) Validate() error {
	if input.Quantity.IsNegative() || input.UnitPrice.IsNegative() {
		return errors.New("quantity and unit_price must not be negative")
	}
	if _, err := ParseDate(input.Date); err != nil {
		return errors.New("invalid date")
	}
	return nil
}

// PurchaseRow joins the material and destination names for listings.
type PurchaseRow struct {
	MaterialPurchase
	MaterialName string `json:"material_name"`
	StageName    string `json:"stage_name"`
	ActivityName string `json:"activity_name"`
}
