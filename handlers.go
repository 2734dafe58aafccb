package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/obradata/obras_backend/models"
	"github.com/obradata/obras_backend/services"
	"github.com/obradata/obras_backend/utils"
)

func registerRoutes(r *gin.Engine, a *app) {
	api := r.Group("/api")

	api.POST("/login", a.login)
	api.POST("/seed", a.seedDemo)

	api.GET("/projects", a.listProjects)
	api.POST("/projects", a.createProject)
	api.GET("/projects/:id", a.getProject)
	api.PUT("/projects/:id", a.updateProject)
	api.DELETE("/projects/:id", a.deleteProject)

	api.GET("/projects/:id/stages", a.projectStages)
	api.GET("/projects/:id/activities", a.projectActivities)
	api.GET("/projects/:id/logs", a.projectLogs)
	api.GET("/projects/:id/stats", a.projectStats)
	api.GET("/projects/:id/dashboard", a.projectDashboard)
	api.GET("/projects/:id/materials", a.projectMaterials)
	api.GET("/projects/:id/purchases", a.projectPurchases)
	api.GET("/projects/:id/warehouse/exits", a.projectExits)
	api.GET("/projects/:id/warehouse/waste", a.projectWaste)
	api.GET("/projects/:id/report/excel", a.projectReportExcel)

	api.POST("/stages", a.createStage)
	api.POST("/stages/reorder", a.reorderStages)
	api.PUT("/stages/:id", a.updateStage)
	api.DELETE("/stages/:id", a.deleteStage)

	api.POST("/activities", a.createActivity)
	api.POST("/activities/reorder", a.reorderActivities)
	api.PUT("/activities/:id", a.updateActivity)
	api.DELETE("/activities/:id", a.deleteActivity)

	api.POST("/logs", a.createLog)
	api.DELETE("/logs/:id", a.deleteLog)

	api.POST("/materials", a.createMaterial)
	api.PUT("/materials/:id", a.updateMaterial)
	api.DELETE("/materials/:id", a.deleteMaterial)

	api.POST("/purchases", a.createPurchase)
	api.DELETE("/purchases/:id", a.deletePurchase)

	api.POST("/warehouse/exits", a.createExit)
	api.POST("/warehouse/waste", a.createWaste)
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// bindStrict decodes a JSON body rejecting unknown fields. Patch payloads go
// through this so a typo'd field name fails loudly instead of silently doing
// nothing.
func bindStrict(c *gin.Context, dst interface{}) bool {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// respondError maps service failures onto HTTP statuses: missing entities to
// 404, domain-rule violations to 422, bad credentials to 401, anything else
// to a logged 500.
func (a *app) respondError(c *gin.Context, err error) {
	var validationErr *utils.ValidationError
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		body := gin.H{"error": validationErr.Message}
		if !validationErr.Limit.IsZero() || !validationErr.Attempted.IsZero() {
			body["attempted"] = validationErr.Attempted
			body["limit"] = validationErr.Limit
			body["overage"] = validationErr.Overage()
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *app) login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	token, user, err := a.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (a *app) seedDemo(c *gin.Context) {
	if err := services.SeedDemo(c.Request.Context(), a.db); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "demo data seeded"})
}

func (a *app) listProjects(c *gin.Context) {
	projects, err := a.projects.ListProjects(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (a *app) createProject(c *gin.Context) {
	var input models.NewProject
	if !bind(c, &input) {
		return
	}
	project, err := a.projects.CreateProject(c.Request.Context(), &input)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// getProject returns the project with its earned-value snapshot embedded, so
// the detail screen needs no second request.
func (a *app) getProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	project, err := a.projects.GetProject(ctx, id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	stats, err := a.tracking.ProjectProgress(ctx, id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		*models.Project
		Stats *models.ProgressResult `json:"stats"`
	}{project, stats})
}

func (a *app) updateProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var patch models.ProjectPatch
	if !bindStrict(c, &patch) {
		return
	}
	project, err := a.projects.UpdateProject(c.Request.Context(), id, &patch)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (a *app) deleteProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.projects.DeleteProject(c.Request.Context(), id); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *app) projectStages(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	stages, err := a.projects.ProjectStages(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stages)
}

func (a *app) projectActivities(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rows, err := a.projects.ProjectActivities(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (a *app) createStage(c *gin.Context) {
	var input models.NewStage
	if !bind(c, &input) {
		return
	}
	stage, err := a.projects.CreateStage(c.Request.Context(), &input)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stage)
}

func (a *app) updateStage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var patch models.StagePatch
	if !bindStrict(c, &patch) {
		return
	}
	stage, err := a.projects.UpdateStage(c.Request.Context(), id, &patch)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stage)
}

func (a *app) deleteStage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.projects.DeleteStage(c.Request.Context(), id); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reorderRequest struct {
	Items []models.ReorderItem `json:"items" binding:"required,min=1,dive"`
}

func (a *app) reorderStages(c *gin.Context) {
	var req reorderRequest
	if !bind(c, &req) {
		return
	}
	if err := a.projects.ReorderStages(c.Request.Context(), req.Items); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *app) createActivity(c *gin.Context) {
	var input models.NewActivity
	if !bind(c, &input) {
		return
	}
	activity, err := a.projects.CreateActivity(c.Request.Context(), &input)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, activity)
}

func (a *app) updateActivity(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var patch models.ActivityPatch
	if !bindStrict(c, &patch) {
		return
	}
	activity, err := a.projects.UpdateActivity(c.Request.Context(), id, &patch)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

func (a *app) deleteActivity(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.projects.DeleteActivity(c.Request.Context(), id); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *app) reorderActivities(c *gin.Context) {
	var req reorderRequest
	if !bind(c, &req) {
		return
	}
	if err := a.projects.ReorderActivities(c.Request.Context(), req.Items); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *app) projectLogs(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rows, err := a.tracking.ProjectDailyLogs(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (a *app) createLog(c *gin.Context) {
	var input models.NewDailyLog
	if !bind(c, &input) {
		return
	}
	logRow, err := a.tracking.CreateDailyLog(c.Request.Context(), &input)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, logRow)
}

func (a *app) deleteLog(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.tracking.DeleteDailyLog(c.Request.Context(), id); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *app) projectStats(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	stats, err := a.tracking.ProjectProgress(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// projectDashboard bundles the earned-value snapshot, the per-stage budget
// and the stock view in one response so the dashboard screen loads in a
// single round trip.
func (a *app) projectDashboard(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	stats, err := a.tracking.ProjectProgress(ctx, id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	costByStage, err := a.budget.CostByStage(ctx, id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	stock, err := a.inventory.ProjectMaterials(ctx, id)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":         stats,
		"cost_by_stage": costByStage,
		"stock":         stock,
	})
}

func (a *app) projectMaterials(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	items, err := a.inventory.ProjectMaterials(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *app) createMaterial(c *gin.Context) {
	var input models.NewMaterial
	if !bind(c, &input) {
		return
	}
	material, err := a.inventory.CreateMaterial(c.Request.Context(), &input)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, material)
}

func (a *app) updateMaterial(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var patch models.MaterialPatch
	if !bindStrict(c, &patch) {
		return
	}
	material, err := a.inventory.UpdateMaterial(c.Request.Context(), id, &patch)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, material)
}

func (a *app) deleteMaterial(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.inventory.DeleteMaterial(c.Request.Context(), id); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *app) projectPurchases(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rows, err := a.inventory.ProjectPurchases(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (a *app) createPurchase(c *gin.Context) {
	var input models.NewPurchase
	if !bind(c, &input) {
		return
	}
	purchase, err := a.inventory.CreatePurchase(c.Request.Context(), &input)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (a *app) deletePurchase(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := a.inventory.DeletePurchase(c.Request.Context(), id); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *app) projectExits(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rows, err := a.inventory.ProjectExits(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (a *app) createExit(c *gin.Context) {
	var input models.NewExit
	if !bind(c, &input) {
		return
	}
	exit, err := a.inventory.CreateExit(c.Request.Context(), &input)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exit)
}

func (a *app) projectWaste(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rows, err := a.inventory.ProjectWaste(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (a *app) createWaste(c *gin.Context) {
	var input models.NewWaste
	if !bind(c, &input) {
		return
	}
	waste, err := a.inventory.CreateWaste(c.Request.Context(), &input)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, waste)
}

func (a *app) projectReportExcel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	report, err := a.reports.BuildProjectReport(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	f, err := services.RenderWorkbook(report)
	if err != nil {
		a.respondError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("relatorio-projeto-%d-%s.xlsx", id, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
