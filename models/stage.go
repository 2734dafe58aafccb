package models

import "errors"

// Stage is a work-breakdown phase of a project. DisplayOrder drives listing
// order; values need not be contiguous.
type Stage struct {
	ID           int    `gorm:"primary_key" json:"id"`
	ProjectId    int    `gorm:"index;not null" json:"project_id"`
	Name         string `gorm:"size:200;not null" json:"name"`
	DisplayOrder int    `gorm:"not null" json:"display_order"`

	Activities []Activity `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type NewStage struct {
	ProjectId    int    `json:"project_id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	DisplayOrder int    `json:"display_order"`
}

type StagePatch struct {
	Name         *string `json:"name"`
	DisplayOrder *int    `json:"display_order"`
}

func (p *StagePatch) Columns() (map[string]interface{}, error) {
	cols := map[string]interface{}{}
	if p.Name != nil {
		if *p.Name == "" {
			return nil, errors.New("stage name must not be empty")
		}
		cols["name"] = *p.Name
	}
	if p.DisplayOrder != nil {
		cols["display_order"] = *p.DisplayOrder
	}
	return cols, nil
}

// ReorderItem is one entry of a batch display_order update.
type ReorderItem struct {
	ID    int `json:"id" binding:"required"`
	Order int `json:"order"`
}
