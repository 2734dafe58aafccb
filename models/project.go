package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Project struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	Client        string          `gorm:"size:200;not null" json:"client"`
	Type          string          `gorm:"size:100;not null" json:"type"`
	Address       string          `gorm:"type:text" json:"address"`
	BuiltArea     decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"built_area"`
	StartDate     time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time       `gorm:"type:date;not null" json:"end_date"`
	ContractValue decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"contract_value"`
	Status        ProjectStatus   `gorm:"size:20;not null;default:'planning'" json:"status"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Stages    []Stage    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Materials []Material `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type NewProject struct {
	Name          string          `json:"name" binding:"required"`
	Client        string          `json:"client" binding:"required"`
	Type          string          `json:"type" binding:"required"`
	Address       string          `json:"address"`
	BuiltArea     decimal.Decimal `json:"built_area"`
	StartDate     string          `json:"start_date" binding:"required"`
	EndDate       string          `json:"end_date" binding:"required"`
	ContractValue decimal.Decimal `json:"contract_value"`
	Status        ProjectStatus   `json:"status"`
}

func (input *NewProject) Validate() error {
	if input.Status == "" {
		input.Status = ProjectStatusPlanning
	}
	if !input.Status.Valid() {
		return errors.New("invalid project status")
	}
	if input.BuiltArea.IsNegative() || input.ContractValue.IsNegative() {
		return errors.New("built_area and contract_value must not be negative")
	}
	if _, err := ParseDate(input.StartDate); err != nil {
		return errors.New("invalid start_date")
	}
	if _, err := ParseDate(input.EndDate); err != nil {
		return errors.New("invalid end_date")
	}
	return nil
}

// ProjectPatch enumerates the updatable project fields. Unknown JSON keys
// are rejected at the handler with a strict decoder; nil fields are left
// untouched.
type ProjectPatch struct {
	Name          *string          `json:"name"`
	Client        *string          `json:"client"`
	Type          *string          `json:"type"`
	Address       *string          `json:"address"`
	BuiltArea     *decimal.Decimal `json:"built_area"`
	StartDate     *string          `json:"start_date"`
	EndDate       *string          `json:"end_date"`
	ContractValue *decimal.Decimal `json:"contract_value"`
	Status        *ProjectStatus   `json:"status"`
}

func (p *ProjectPatch) Columns() (map[string]interface{}, error) {
	cols := map[string]interface{}{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Client != nil {
		cols["client"] = *p.Client
	}
	if p.Type != nil {
		cols["type"] = *p.Type
	}
	if p.Address != nil {
		cols["address"] = *p.Address
	}
	if p.BuiltArea != nil {
		if p.BuiltArea.IsNegative() {
			return nil, errors.New("built_area must not be negative")
		}
		cols["built_area"] = *p.BuiltArea
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
	if p.ContractValue != nil {
		if p.ContractValue.IsNegative() {
			return nil, errors.New("contract_value must not be negative")
		}
		cols["contract_value"] = *p.ContractValue
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, errors.New("invalid project status")
		}
		cols["status"] = *p.Status
	}
	return cols, nil
}

// ParseDate parses the yyyy-mm-dd wire format used by all date fields.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}
