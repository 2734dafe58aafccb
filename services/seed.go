package services

import (
	"context"
	"time"

	"github.com/obradata/obras_backend/models"
	"github.com/obradata/obras_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedActivity struct {
	description string
	unit        string
	quantity    int64
	unitCost    float64
	duration    int
}

type seedStage struct {
	name       string
	activities []seedActivity
}

var demoStages = []seedStage{
	{"Serviços Preliminares", []seedActivity{
		{"Limpeza do terreno", "m²", 450, 8.50, 5},
		{"Instalação do canteiro", "vb", 1, 12000, 10},
		{"Ligações provisórias", "vb", 1, 3500, 3},
	}},
	{"Fundação", []seedActivity{
		{"Escavação de valas", "m³", 85, 95, 8},
		{"Concreto para sapatas", "m³", 42, 780, 12},
		{"Impermeabilização de baldrames", "m²", 120, 45, 4},
	}},
	{"Estrutura", []seedActivity{
		{"Pilares em concreto armado", "m³", 38, 1850, 20},
		{"Vigas em concreto armado", "m³", 45, 1750, 18},
		{"Laje maciça", "m²", 380, 210, 15},
	}},
	{"Alvenaria", []seedActivity{
		{"Alvenaria de vedação", "m²", 620, 95, 25},
		{"Vergas e contravergas", "m", 145, 38, 8},
		{"Encunhamento", "m", 210, 22, 5},
	}},
	{"Instalações", []seedActivity{
		{"Instalações elétricas", "pt", 96, 185, 22},
		{"Instalações hidráulicas", "pt", 48, 320, 18},
		{"Instalações sanitárias", "pt", 32, 290, 14},
	}},
	{"Acabamento", []seedActivity{
		{"Revestimento cerâmico", "m²", 340, 85, 20},
		{"Pintura interna e externa", "m²", 980, 28, 18},
		{"Instalação de esquadrias", "un", 28, 650, 10},
	}},
}

// SeedDemo provisions the demo login and a sample project with a full stage,
// activity and take-off breakdown. It is idempotent per run: nothing is
// inserted when the demo project already exists.
func SeedDemo(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userCount int64
		if err := tx.Model(&models.User{}).Where("username = ?", "admin").Count(&userCount).Error; err != nil {
			return err
		}
		if userCount == 0 {
			hashed, err := utils.HashPassword("admin123")
			if err != nil {
				return err
			}
			admin := models.User{
				Username: "admin",
				Password: hashed,
				Role:     "admin",
				Name:     "Administrador",
			}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
		}

		const projectName = "Residencial Villa Verde"
		var projectCount int64
		if err := tx.Model(&models.Project{}).Where("name = ?", projectName).Count(&projectCount).Error; err != nil {
			return err
		}
		if projectCount > 0 {
			return nil
		}

		start := time.Now().AddDate(0, -2, 0)
		project := models.Project{
			Name:          projectName,
			Client:        "Construtora Horizonte Ltda",
			Type:          "residencial",
			Address:       "Rua das Palmeiras, 120 - Jardim Europa",
			BuiltArea:     decimal.NewFromInt(380),
			StartDate:     start,
			EndDate:       start.AddDate(1, 0, 0),
			ContractValue: decimal.NewFromInt(1850000),
			Status:        models.ProjectStatusInProgress,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		for i, st := range demoStages {
			stage := models.Stage{
				ProjectId:    project.ID,
				Name:         st.name,
				DisplayOrder: i + 1,
			}
			if err := tx.Create(&stage).Error; err != nil {
				return err
			}
			for j, act := range st.activities {
				activity := models.Activity{
					StageId:         stage.ID,
					Description:     act.description,
					Unit:            act.unit,
					PlannedQuantity: decimal.NewFromInt(act.quantity),
					PlannedUnitCost: decimal.NewFromFloat(act.unitCost),
					PlannedDuration: act.duration,
					DisplayOrder:    j + 1,
				}
				if err := tx.Create(&activity).Error; err != nil {
					return err
				}
			}
		}

		materials := []models.Material{
			{ProjectId: project.ID, Description: "Cimento CP-II 50kg", Unit: "sc", Quantity: decimal.NewFromInt(850), UnitCost: decimal.NewFromFloat(34.90), Category: "estrutura"},
			{ProjectId: project.ID, Description: "Areia média lavada", Unit: "m³", Quantity: decimal.NewFromInt(120), UnitCost: decimal.NewFromFloat(145), Category: "estrutura"},
			{ProjectId: project.ID, Description: "Bloco cerâmico 9x19x39", Unit: "un", Quantity: decimal.NewFromInt(18500), UnitCost: decimal.NewFromFloat(2.85), Category: "alvenaria"},
			{ProjectId: project.ID, Description: "Vergalhão CA-50 10mm", Unit: "br", Quantity: decimal.NewFromInt(420), UnitCost: decimal.NewFromFloat(52.50), Category: "estrutura"},
			{ProjectId: project.ID, Description: "Tinta acrílica 18L", Unit: "lt", Quantity: decimal.NewFromInt(65), UnitCost: decimal.NewFromFloat(389), Category: "acabamento"},
		}
		for i := range materials {
			if err := tx.Create(&materials[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
