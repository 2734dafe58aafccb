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

// InventoryService owns the material take-off, the purchase/exit/waste
// ledgers and the stock reconciliation over them.
type InventoryService struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewInventoryService(db *gorm.DB, logger *logrus.Logger) *InventoryService {
	return &InventoryService{DB: db, Logger: logger}
}

// ProjectMaterials lists a project's take-off lines with the derived
// movement totals. Stock is recomputed from the ledgers on every call;
// materials with no movements appear with all totals at zero.
func (s *InventoryService) ProjectMaterials(ctx context.Context, projectID int) ([]*models.StockItem, error) {
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", projectID); err != nil {
		return nil, err
	}

	sql := `
SELECT
    m.*,
    COALESCE(s.name, '') AS stage_name,
    COALESCE(a.description, '') AS activity_name,
    COALESCE((SELECT SUM(quantity) FROM material_purchases WHERE material_id = m.id), 0) AS purchased_quantity,
    COALESCE((SELECT SUM(quantity) FROM warehouse_exits WHERE material_id = m.id), 0) AS exited_quantity,
    COALESCE((SELECT SUM(quantity) FROM warehouse_wastes WHERE material_id = m.id), 0) AS waste_quantity
FROM materials m
LEFT JOIN stages s ON m.stage_id = s.id
LEFT JOIN activities a ON m.activity_id = a.id
WHERE m.project_id = ?
`
	var items []*models.StockItem
	if err := s.DB.WithContext(ctx).Raw(sql, projectID).Scan(&items).Error; err != nil {
		config.LogError(s.Logger, "inventory", "ProjectMaterials", "stock reconciliation query", projectID, err)
		return nil, err
	}
	for _, item := range items {
		item.CurrentStock = reconcileStock(item.PurchasedQuantity, item.ExitedQuantity, item.WasteQuantity)
	}
	return items, nil
}

// reconcileStock derives on-hand stock: purchased minus exited minus wasted.
func reconcileStock(purchased, exited, waste decimal.Decimal) decimal.Decimal {
	return purchased.Sub(exited).Sub(waste)
}

func (s *InventoryService) CreateMaterial(ctx context.Context, input *models.NewMaterial) (*models.Material, error) {
	if err := input.Validate(); err != nil {
		return nil, &utils.ValidationError{Message: err.Error()}
	}
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", input.ProjectId); err != nil {
		return nil, err
	}
	if input.StageId != nil {
		if err := utils.ValidateResourceId[models.Stage](ctx, s.DB, "stage", *input.StageId); err != nil {
			return nil, err
		}
	}
	if input.ActivityId != nil {
		if err := utils.ValidateResourceId[models.Activity](ctx, s.DB, "activity", *input.ActivityId); err != nil {
			return nil, err
		}
	}

	material := models.Material{
		ProjectId:   input.ProjectId,
		StageId:     input.StageId,
		ActivityId:  input.ActivityId,
		Description: input.Description,
		Unit:        input.Unit,
		Quantity:    input.Quantity,
		UnitCost:    input.UnitCost,
		Category:    input.Category,
	}
	if err := s.DB.WithContext(ctx).Create(&material).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (s *InventoryService) UpdateMaterial(ctx context.Context, id int, patch *models.MaterialPatch) (*models.Material, error) {
	material, err := utils.FetchModel[models.Material](ctx, s.DB, "material", id)
	if err != nil {
		return nil, err
	}
	cols, err := patch.Columns()
	if err != nil {
		return nil, &utils.ValidationError{Message: err.Error()}
	}
	if len(cols) == 0 {
		return material, nil
	}
	if err := s.DB.WithContext(ctx).Model(material).Updates(cols).Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[models.Material](ctx, s.DB, "material", id)
}

// DeleteMaterial cascades to the material's purchases, exits and waste rows.
func (s *InventoryService) DeleteMaterial(ctx context.Context, id int) error {
	material, err := utils.FetchModel[models.Material](ctx, s.DB, "material", id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(material).Error
}

func (s *InventoryService) CreatePurchase(ctx context.Context, input *models.NewPurchase) (*models.MaterialPurchase, error) {
	if err := input.Validate(); err != nil {
		return nil, &utils.ValidationError{Message: err.Error()}
	}
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", input.ProjectId); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[models.Material](ctx, s.DB, "material", input.MaterialId); err != nil {
		return nil, err
	}
	date, _ := models.ParseDate(input.Date)

	purchase := models.MaterialPurchase{
		ProjectId:     input.ProjectId,
		MaterialId:    input.MaterialId,
		Date:          date,
		Quantity:      input.Quantity,
		UnitPrice:     input.UnitPrice,
		Supplier:      input.Supplier,
		InvoiceNumber: input.InvoiceNumber,
		Notes:         input.Notes,
	}
	if err := s.DB.WithContext(ctx).Create(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (s *InventoryService) DeletePurchase(ctx context.Context, id int) error {
	purchase, err := utils.FetchModel[models.MaterialPurchase](ctx, s.DB, "purchase", id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(purchase).Error
}

func (s *InventoryService) ProjectPurchases(ctx context.Context, projectID int) ([]*models.PurchaseRow, error) {
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", projectID); err != nil {
		return nil, err
	}

	sql := `
SELECT p.*, m.description AS material_name,
       COALESCE(s.name, '') AS stage_name,
       COALESCE(a.description, '') AS activity_name
FROM material_purchases p
JOIN materials m ON p.material_id = m.id
LEFT JOIN stages s ON m.stage_id = s.id
LEFT JOIN activities a ON m.activity_id = a.id
WHERE p.project_id = ?
ORDER BY p.date DESC, p.id DESC
`
	var rows []*models.PurchaseRow
	if err := s.DB.WithContext(ctx).Raw(sql, projectID).Scan(&rows).Error; err != nil {
		config.LogError(s.Logger, "inventory", "ProjectPurchases", "list purchases", projectID, err)
		return nil, err
	}
	return rows, nil
}

// CreateExit appends a warehouse exit. The movement is rejected when it
// would drive the material's stock negative; the check and the insert share
// a FOR UPDATE lock on the material row so concurrent movements serialize.
func (s *InventoryService) CreateExit(ctx context.Context, input *models.NewExit) (*models.WarehouseExit, error) {
	if err := input.Validate(); err != nil {
		return nil, &utils.ValidationError{Message: err.Error()}
	}
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", input.ProjectId); err != nil {
		return nil, err
	}
	if input.StageId != nil {
		if err := utils.ValidateResourceId[models.Stage](ctx, s.DB, "stage", *input.StageId); err != nil {
			return nil, err
		}
	}
	if input.ActivityId != nil {
		if err := utils.ValidateResourceId[models.Activity](ctx, s.DB, "activity", *input.ActivityId); err != nil {
			return nil, err
		}
	}
	date, _ := models.ParseDate(input.Date)

	var exit models.WarehouseExit
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		material, stock, err := lockMaterialStock(tx, input.MaterialId)
		if err != nil {
			return err
		}
		if input.Quantity.GreaterThan(stock) {
			return overdraftError(material, input.Quantity, stock)
		}

		exit = models.WarehouseExit{
			ProjectId:       input.ProjectId,
			MaterialId:      input.MaterialId,
			StageId:         input.StageId,
			ActivityId:      input.ActivityId,
			Date:            date,
			Collaborator:    input.Collaborator,
			StorageLocation: input.StorageLocation,
			StorageSector:   input.StorageSector,
			Quantity:        input.Quantity,
		}
		return tx.Create(&exit).Error
	})
	if err != nil {
		return nil, err
	}
	return &exit, nil
}

// CreateWaste appends a waste record under the same overdraft guard as exits.
func (s *InventoryService) CreateWaste(ctx context.Context, input *models.NewWaste) (*models.WarehouseWaste, error) {
	if err := input.Validate(); err != nil {
		return nil, &utils.ValidationError{Message: err.Error()}
	}
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", input.ProjectId); err != nil {
		return nil, err
	}
	date, _ := models.ParseDate(input.Date)

	var waste models.WarehouseWaste
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		material, stock, err := lockMaterialStock(tx, input.MaterialId)
		if err != nil {
			return err
		}
		if input.Quantity.GreaterThan(stock) {
			return overdraftError(material, input.Quantity, stock)
		}

		waste = models.WarehouseWaste{
			ProjectId:  input.ProjectId,
			MaterialId: input.MaterialId,
			Date:       date,
			Quantity:   input.Quantity,
			Reason:     input.Reason,
		}
		return tx.Create(&waste).Error
	})
	if err != nil {
		return nil, err
	}
	return &waste, nil
}

// lockMaterialStock locks the material row and computes its live stock
// inside the caller's transaction.
func lockMaterialStock(tx *gorm.DB, materialID int) (*models.Material, decimal.Decimal, error) {
	var material models.Material
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&material, materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, &utils.NotFoundError{Entity: "material", ID: materialID}
		}
		return nil, decimal.Zero, err
	}

	var sums struct {
		Purchased decimal.Decimal
		Exited    decimal.Decimal
		Waste     decimal.Decimal
	}
	sql := `
SELECT
    COALESCE((SELECT SUM(quantity) FROM material_purchases WHERE material_id = ?), 0) AS purchased,
    COALESCE((SELECT SUM(quantity) FROM warehouse_exits WHERE material_id = ?), 0) AS exited,
    COALESCE((SELECT SUM(quantity) FROM warehouse_wastes WHERE material_id = ?), 0) AS waste
`
	if err := tx.Raw(sql, materialID, materialID, materialID).Scan(&sums).Error; err != nil {
		return nil, decimal.Zero, err
	}
	return &material, reconcileStock(sums.Purchased, sums.Exited, sums.Waste), nil
}

func overdraftError(material *models.Material, requested, stock decimal.Decimal) error {
	return &utils.ValidationError{
		Message: fmt.Sprintf(
			"requested quantity (%s) of %q exceeds current stock (%s)",
			requested, material.Description, stock,
		),
		Description: material.Description,
		Attempted:   requested,
		Limit:       stock,
	}
}

func (s *InventoryService) ProjectExits(ctx context.Context, projectID int) ([]*models.ExitRow, error) {
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", projectID); err != nil {
		return nil, err
	}

	sql := `
SELECT e.*, m.description AS material_name, m.unit,
       COALESCE(s.name, '') AS stage_name,
       COALESCE(a.description, '') AS activity_name
FROM warehouse_exits e
JOIN materials m ON e.material_id = m.id
LEFT JOIN stages s ON e.stage_id = s.id
LEFT JOIN activities a ON e.activity_id = a.id
WHERE e.project_id = ?
ORDER BY e.date DESC, e.id DESC
`
	var rows []*models.ExitRow
	if err := s.DB.WithContext(ctx).Raw(sql, projectID).Scan(&rows).Error; err != nil {
		config.LogError(s.Logger, "inventory", "ProjectExits", "list exits", projectID, err)
		return nil, err
	}
	return rows, nil
}

func (s *InventoryService) ProjectWaste(ctx context.Context, projectID int) ([]*models.WasteRow, error) {
	if err := utils.ValidateResourceId[models.Project](ctx, s.DB, "project", projectID); err != nil {
		return nil, err
	}

	sql := `
SELECT w.*, m.description AS material_name, m.unit
FROM warehouse_wastes w
JOIN materials m ON w.material_id = m.id
WHERE w.project_id = ?
ORDER BY w.date DESC, w.id DESC
`
	var rows []*models.WasteRow
	if err := s.DB.WithContext(ctx).Raw(sql, projectID).Scan(&rows).Error; err != nil {
		config.LogError(s.Logger, "inventory", "ProjectWaste", "list waste", projectID, err)
		return nil, err
	}
	return rows, nil
}
