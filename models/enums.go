package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
)

// user-set, free-form lifecycle label; never derived by the engines
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}

func (s ProjectStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid project status %q", string(s))
	}
	return string(s), nil
}

func (s *ProjectStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*s = ProjectStatus(v)
	case string:
		*s = ProjectStatus(v)
	default:
		return errors.New("project status must be string")
	}
	return nil
}
