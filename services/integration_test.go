package services_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/obradata/obras_backend/config"
	"github.com/obradata/obras_backend/models"
	"github.com/obradata/obras_backend/services"
	"github.com/obradata/obras_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "obras_test")

	db := config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}
	return db
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// seedProjectWithActivity creates a project with one stage and one activity
// planned at the given quantity and unit cost.
func seedProjectWithActivity(t *testing.T, db *gorm.DB, qty, unitCost int64) (*models.Project, *models.Stage, *models.Activity) {
	t.Helper()
	ctx := context.Background()
	projects := services.NewProjectService(db, quietLogger())

	project, err := projects.CreateProject(ctx, &models.NewProject{
		Name:      "Obra Teste",
		Client:    "Cliente Teste",
		Type:      "residencial",
		StartDate: "2026-01-01",
		EndDate:   "2026-12-31",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	stage, err := projects.CreateStage(ctx, &models.NewStage{
		ProjectId:    project.ID,
		Name:         "Fundação",
		DisplayOrder: 1,
	})
	if err != nil {
		t.Fatalf("CreateStage: %v", err)
	}
	activity, err := projects.CreateActivity(ctx, &models.NewActivity{
		StageId:         stage.ID,
		Description:     "Escavação",
		Unit:            "m³",
		PlannedQuantity: decimal.NewFromInt(qty),
		PlannedUnitCost: decimal.NewFromInt(unitCost),
		PlannedDuration: 10,
	})
	if err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}
	return project, stage, activity
}

func TestDailyLogCapEnforced(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	logger := quietLogger()
	tracking := services.NewTrackingService(db, logger, services.NewBudgetService(db, logger))

	_, _, activity := seedProjectWithActivity(t, db, 10, 50)

	if _, err := tracking.CreateDailyLog(ctx, &models.NewDailyLog{
		ActivityId:       activity.ID,
		Date:             "2026-02-01",
		ExecutedQuantity: decimal.NewFromInt(6),
		RealCost:         decimal.NewFromInt(300),
	}); err != nil {
		t.Fatalf("first log: %v", err)
	}

	_, err := tracking.CreateDailyLog(ctx, &models.NewDailyLog{
		ActivityId:       activity.ID,
		Date:             "2026-02-02",
		ExecutedQuantity: decimal.NewFromInt(5),
		RealCost:         decimal.NewFromInt(250),
	})
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !validationErr.Attempted.Equal(decimal.NewFromInt(11)) {
		t.Errorf("attempted = %s, want 11", validationErr.Attempted)
	}
	if !validationErr.Limit.Equal(decimal.NewFromInt(10)) {
		t.Errorf("limit = %s, want 10", validationErr.Limit)
	}
	if !validationErr.Overage().Equal(decimal.NewFromInt(1)) {
		t.Errorf("overage = %s, want 1", validationErr.Overage())
	}

	// The rejected log must not have been persisted.
	var count int64
	if err := db.Model(&models.DailyLog{}).Where("activity_id = ?", activity.ID).Count(&count).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 persisted log, got %d", count)
	}
}

// Two writers racing for the same remaining quantity: exactly one may win.
func TestConcurrentDailyLogsSerialize(t *testing.T) {
	db := newTestDB(t)
	logger := quietLogger()
	tracking := services.NewTrackingService(db, logger, services.NewBudgetService(db, logger))

	_, _, activity := seedProjectWithActivity(t, db, 10, 50)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = tracking.CreateDailyLog(context.Background(), &models.NewDailyLog{
				ActivityId:       activity.ID,
				Date:             "2026-02-01",
				ExecutedQuantity: decimal.NewFromInt(6),
				RealCost:         decimal.NewFromInt(300),
			})
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			var validationErr *utils.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("unexpected error type: %v", err)
			}
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("expected exactly one rejected writer, got %d rejections", failures)
	}

	var total struct{ Total decimal.Decimal }
	if err := db.Raw(
		"SELECT COALESCE(SUM(executed_quantity), 0) AS total FROM daily_logs WHERE activity_id = ?",
		activity.ID,
	).Scan(&total).Error; err != nil {
		t.Fatalf("sum logs: %v", err)
	}
	if total.Total.GreaterThan(decimal.NewFromInt(10)) {
		t.Fatalf("executed total %s exceeds planned 10", total.Total)
	}
}

func TestWarehouseOverdraftBlocked(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	inventory := services.NewInventoryService(db, quietLogger())

	project, _, _ := seedProjectWithActivity(t, db, 10, 50)

	material, err := inventory.CreateMaterial(ctx, &models.NewMaterial{
		ProjectId:   project.ID,
		Description: "Cimento CP-II 50kg",
		Unit:        "sc",
		Quantity:    decimal.NewFromInt(100),
		UnitCost:    decimal.NewFromFloat(34.90),
	})
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	if _, err := inventory.CreatePurchase(ctx, &models.NewPurchase{
		ProjectId:  project.ID,
		MaterialId: material.ID,
		Date:       "2026-02-01",
		Quantity:   decimal.NewFromInt(10),
		UnitPrice:  decimal.NewFromFloat(34.90),
		Supplier:   "Depósito Central",
	}); err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	if _, err := inventory.CreateExit(ctx, &models.NewExit{
		ProjectId:    project.ID,
		MaterialId:   material.ID,
		Date:         "2026-02-02",
		Collaborator: "João",
		Quantity:     decimal.NewFromInt(6),
	}); err != nil {
		t.Fatalf("CreateExit within stock: %v", err)
	}

	// Only 4 left; wasting 5 must be rejected.
	_, err = inventory.CreateWaste(ctx, &models.NewWaste{
		ProjectId:  project.ID,
		MaterialId: material.ID,
		Date:       "2026-02-03",
		Quantity:   decimal.NewFromInt(5),
		Reason:     "quebra",
	})
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !validationErr.Limit.Equal(decimal.NewFromInt(4)) {
		t.Errorf("limit = %s, want 4", validationErr.Limit)
	}

	items, err := inventory.ProjectMaterials(ctx, project.ID)
	if err != nil {
		t.Fatalf("ProjectMaterials: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 stock item, got %d", len(items))
	}
	if !items[0].CurrentStock.Equal(decimal.NewFromInt(4)) {
		t.Errorf("current stock = %s, want 4", items[0].CurrentStock)
	}
}

func TestProjectDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	logger := quietLogger()
	projects := services.NewProjectService(db, logger)
	tracking := services.NewTrackingService(db, logger, services.NewBudgetService(db, logger))
	inventory := services.NewInventoryService(db, logger)

	project, _, activity := seedProjectWithActivity(t, db, 10, 50)

	if _, err := tracking.CreateDailyLog(ctx, &models.NewDailyLog{
		ActivityId:       activity.ID,
		Date:             "2026-02-01",
		ExecutedQuantity: decimal.NewFromInt(2),
		RealCost:         decimal.NewFromInt(100),
	}); err != nil {
		t.Fatalf("CreateDailyLog: %v", err)
	}
	material, err := inventory.CreateMaterial(ctx, &models.NewMaterial{
		ProjectId:   project.ID,
		Description: "Areia média",
		Unit:        "m³",
	})
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	if _, err := inventory.CreatePurchase(ctx, &models.NewPurchase{
		ProjectId:  project.ID,
		MaterialId: material.ID,
		Date:       "2026-02-01",
		Quantity:   decimal.NewFromInt(5),
		UnitPrice:  decimal.NewFromInt(145),
		Supplier:   "Areial do Vale",
	}); err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	if err := projects.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	for table, model := range map[string]interface{}{
		"stages":             &models.Stage{},
		"activities":         &models.Activity{},
		"daily_logs":         &models.DailyLog{},
		"materials":          &models.Material{},
		"material_purchases": &models.MaterialPurchase{},
	} {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s not cascaded: %d rows left", table, count)
		}
	}
}

func TestProjectProgressEndToEnd(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	logger := quietLogger()
	tracking := services.NewTrackingService(db, logger, services.NewBudgetService(db, logger))

	project, _, activity := seedProjectWithActivity(t, db, 100, 50)

	stats, err := tracking.ProjectProgress(ctx, project.ID)
	if err != nil {
		t.Fatalf("ProjectProgress: %v", err)
	}
	if !stats.Bac.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("bac = %s, want 5000", stats.Bac)
	}
	if !stats.Ev.IsZero() {
		t.Errorf("ev = %s, want 0 before any log", stats.Ev)
	}

	if _, err := tracking.CreateDailyLog(ctx, &models.NewDailyLog{
		ActivityId:       activity.ID,
		Date:             "2026-02-01",
		ExecutedQuantity: decimal.NewFromInt(50),
		RealCost:         decimal.NewFromInt(2000),
	}); err != nil {
		t.Fatalf("CreateDailyLog: %v", err)
	}

	stats, err = tracking.ProjectProgress(ctx, project.ID)
	if err != nil {
		t.Fatalf("ProjectProgress: %v", err)
	}
	if !stats.Ev.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("ev = %s, want 2500", stats.Ev)
	}
	if !stats.Ac.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("ac = %s, want 2000", stats.Ac)
	}
	if !stats.Cpi.Equal(decimal.NewFromFloat(1.25)) {
		t.Errorf("cpi = %s, want 1.25", stats.Cpi)
	}
	if !stats.PercentComplete.Equal(decimal.NewFromInt(50)) {
		t.Errorf("percent = %s, want 50", stats.PercentComplete)
	}
}

func TestNotFoundIsDistinct(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	projects := services.NewProjectService(db, quietLogger())

	_, err := projects.GetProject(ctx, 999999)
	if !services.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
	var validationErr *utils.ValidationError
	if errors.As(err, &validationErr) {
		t.Fatalf("not-found must not be a validation error: %v", err)
	}
}

func TestSeedDemoIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := services.SeedDemo(ctx, db); err != nil {
		t.Fatalf("first SeedDemo: %v", err)
	}
	if err := services.SeedDemo(ctx, db); err != nil {
		t.Fatalf("second SeedDemo: %v", err)
	}

	var projectCount, stageCount int64
	if err := db.Model(&models.Project{}).Count(&projectCount).Error; err != nil {
		t.Fatalf("count projects: %v", err)
	}
	if err := db.Model(&models.Stage{}).Count(&stageCount).Error; err != nil {
		t.Fatalf("count stages: %v", err)
	}
	if projectCount != 1 {
		t.Errorf("expected 1 demo project, got %d", projectCount)
	}
	if stageCount != 6 {
		t.Errorf("expected 6 demo stages, got %d", stageCount)
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("obras-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=obras_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
