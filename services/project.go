package services

import (
	"context"
	"errors"

	"github.com/obradata/obras_backend/config"
	"github.com/obradata/obras_backend/models"
	"github.com/obradata/obras_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProjectService owns project/stage/activity CRUD. All reads and writes go
// through the injected DB handle.
type ProjectService struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewProjectService(db *gorm.DB, logger *logrus.Logger) *ProjectService {
	return &ProjectService{DB: db, Logger: logger}
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id int) (*models.Project, error) {
	return utils.FetchModel[models.Project](ctx, s.DB, "project", id)
}

func (s *ProjectService) CreateProject(ctx context.Context, input *models.NewProject) (*models.Project, error) {
	if err := input.Validate(); err != nil {
		return nil, &utils.ValidationError{Message: err.Error()}
	}

	startDate, _ := models.ParseDate(input.StartDate)
	endDate, _ := models.ParseDate(input.EndDate)

	project := models.Project{
		Name:          input.Name,
		Client:        input.Client,
		Type:          input.Type,
		Address:       input.Address,
		BuiltArea:     input.BuiltArea,
		StartDate:     startDate,
		EndDate:       endDate,
		ContractValue: input.ContractValue,
		Status:        input.Status,
	}
	if err := s.DB.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id int, patch *models.ProjectPatch) (*models.Project, error) {
	project, err := utils.FetchModel[models.Project](ctx, s.DB, "project", id)
	if err != nil {
		return nil, err
	}
	cols, err := patch.Columns()
	if err != nil {
		return nil, &utils.ValidationError{Message: err.Error()}
	}
	if len(cols) == 0 {
		return project, nil
	}
	if err := s.DB.WithContext(ctx).Model(project).Updates(cols).Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[models.Project](ctx, s.DB, "project", id)
}

func (s *ProjectService) DeleteProject(ctx context.Context, id int) error {
	project, err := utils.FetchModel[models.Project](ctx, s.DB, "project", id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(project).Error
}

func (s *ProjectService) ProjectStages(ctx context.Context, projectID int) ([]*models.Stage, error) {
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", projectID); err != nil {
		return nil, err
	}
	var stages []*models.Stage
	err := s.DB.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("display_order").
		Find(&stages).Error
	if err != nil {
		return nil, err
	}
	return stages, nil
}

// ProjectActivities lists every activity of the project with its stage name
// and cumulative executed quantity.
func (s *ProjectService) ProjectActivities(ctx context.Context, projectID int) ([]*models.ActivityRow, error) {
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", projectID); err != nil {
		return nil, err
	}

	sql := `
SELECT
    a.*,
    s.name AS stage_name,
    COALESCE((SELECT SUM(executed_quantity) FROM daily_logs WHERE activity_id = a.id), 0) AS executed_quantity
FROM activities a
JOIN stages s ON a.stage_id = s.id
WHERE s.project_id = ?
ORDER BY a.display_order ASC
`
	var rows []*models.ActivityRow
	if err := s.DB.WithContext(ctx).Raw(sql, projectID).Scan(&rows).Error; err != nil {
		config.LogError(s.Logger, "project", "ProjectActivities", "list activities", projectID, err)
		return nil, err
	}
	return rows, nil
}

func (s *ProjectService) CreateStage(ctx context.Context, input *models.NewStage) (*models.Stage, error) {
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", input.ProjectId); err != nil {
		return nil, err
	}
	stage := models.Stage{
		ProjectId:    input.ProjectId,
		Name:         input.Name,
		DisplayOrder: input.DisplayOrder,
	}
	if err := s.DB.WithContext(ctx).Create(&stage).Error; err != nil {
		return nil, err
	}
	return &stage, nil
}

func (s *ProjectService) UpdateStage(ctx context.Context, id int, patch *models.StagePatch) (*models.Stage, error) {
	stage, err := utils.FetchModel[models.Stage](ctx, s.DB, "stage", id)
	if err != nil {
		return nil, err
	}
	cols, err := patch.Columns()
	if err != nil {
		return nil, &utils.ValidationError{Message: err.Error()}
	}
	if len(cols) == 0 {
		return stage, nil
	}
	if err := s.DB.WithContext(ctx).Model(stage).Updates(cols).Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[models.Stage](ctx, s.DB, "stage", id)
}

// DeleteStage cascades to the stage's activities and their daily logs via FK.
func (s *ProjectService) DeleteStage(ctx context.Context, id int) error {
	stage, err := utils.FetchModel[models.Stage](ctx, s.DB, "stage", id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(stage).Error
}

// ReorderStages applies a batch of display_order updates in one transaction.
func (s *ProjectService) ReorderStages(ctx context.Context, items []models.ReorderItem) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			res := tx.Model(&models.Stage{}).Where("id = ?", item.ID).
				Update("display_order", item.Order)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &utils.NotFoundError{Entity: "stage", ID: item.ID}
			}
		}
		return nil
	})
}

func (s *ProjectService) CreateActivity(ctx context.Context, input *models.NewActivity) (*models.Activity, error) {
	if err := input.Validate(); err != nil {
		return nil, &utils.ValidationError{Message: err.Error()}
	}
	if err := utils.ValidateResourceId[models.Stage](ctx, s.DB, "stage", input.StageId); err != nil {
		return nil, err
	}
	if input.DependencyId != nil {
		if err := utils.ValidateResourceId[models.Activity](ctx, s.DB, "activity", *input.DependencyId); err != nil {
			return nil, err
		}
	}

	var activity models.Activity
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// next display_order within the stage
		var maxOrder struct{ MaxOrder int }
		if err := tx.Raw(
			"SELECT COALESCE(MAX(display_order), 0) AS max_order FROM activities WHERE stage_id = ?",
			input.StageId,
		).Scan(&maxOrder).Error; err != nil {
			return err
		}

		activity = models.Activity{
			StageId:         input.StageId,
			Description:     input.Description,
			Unit:            input.Unit,
			PlannedQuantity: input.PlannedQuantity,
			PlannedUnitCost: input.PlannedUnitCost,
			PlannedDuration: input.PlannedDuration,
			DependencyId:    input.DependencyId,
			DisplayOrder:    maxOrder.MaxOrder + 1,
		}
		if input.StartDate != nil {
			d, _ := models.ParseDate(*input.StartDate)
			activity.StartDate = &d
		}
		if input.EndDate != nil {
			d, _ := models.ParseDate(*input.EndDate)
			activity.EndDate = &d
		}
		return tx.Create(&activity).Error
	})
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (s *ProjectService) UpdateActivity(ctx context.Context, id int, patch *models.ActivityPatch) (*models.Activity, error) {
	activity, err := utils.FetchModel[models.Activity](ctx, s.DB, "activity", id)
	if err != nil {
		return nil, err
	}
	cols, err := patch.Columns()
	if err != nil {
		return nil, &utils.ValidationError{Message: err.Error()}
	}
	if patch.DependencyId != nil {
		if err := utils.ValidateResourceId[models.Activity](ctx, s.DB, "activity", *patch.DependencyId); err != nil {
			return nil, err
		}
	}
	if len(cols) == 0 {
		return activity, nil
	}
	if err := s.DB.WithContext(ctx).Model(activity).Updates(cols).Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[models.Activity](ctx, s.DB, "activity", id)
}

func (s *ProjectService) DeleteActivity(ctx context.Context, id int) error {
	activity, err := utils.FetchModel[models.Activity](ctx, s.DB, "activity", id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(activity).Error
}

func (s *ProjectService) ReorderActivities(ctx context.Context, items []models.ReorderItem) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			res := tx.Model(&models.Activity{}).Where("id = ?", item.ID).
				Update("display_order", item.Order)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &utils.NotFoundError{Entity: "activity", ID: item.ID}
			}
		}
		return nil
	})
}

// IsNotFound reports whether err is a missing-entity failure from any service.
func IsNotFound(err error) bool {
	var nf *utils.NotFoundError
	return errors.As(err, &nf) || errors.Is(err, utils.ErrorRecordNotFound)
}
