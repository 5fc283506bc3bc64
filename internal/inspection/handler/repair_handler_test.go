package handler

import (
	"net/http"
	"testing"

	"github.com/inspeksi/apar-backend/internal/config"
	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/inspeksi/apar-backend/internal/inspection/testutil"
	"github.com/inspeksi/apar-backend/internal/shared/sse"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupRepairTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, service.Deps{DB: db, Hub: sse.NewHub()}, cfg)

	h := NewRepairHandler(services.Repair)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/repairs", h.List)
	api.POST("/repairs", h.Create)
	api.GET("/repairs/:id", h.Get)
	api.PUT("/repairs/:id/approve", h.Approve)
	api.PUT("/repairs/:id/reject", h.Reject)
	api.PUT("/repairs/:id/complete", h.Complete)

	return router, db
}

func createRepair(t *testing.T, router *gin.Engine, token, aparID string) string {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/repairs", map[string]interface{}{
		"apar_id":     aparID,
		"description": "hose cracked at nozzle",
		"severity":    entity.SeverityMajor,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	repair := data["repair"].(map[string]interface{})
	return repair["id"].(string)
}

func TestRepairApproveCompleteFlow(t *testing.T) {
	router, db := setupRepairTest(t)

	tech := testutil.SeedTestUser(t, db, "tek-001", "Tech One", entity.RoleTeknisi)
	sup := testutil.SeedTestUser(t, db, "sup-001", "Supervisor", entity.RoleSupervisor)
	apar := testutil.SeedTestApar(t, db, "apar-001", "APAR-0001", "QR-0001")

	techToken := testutil.GenerateTestToken(tech.ID, tech.Name, tech.Role)
	supToken := testutil.GenerateTestToken(sup.ID, sup.Name, sup.Role)

	repairID := createRepair(t, router, techToken, apar.ID)

	w := testutil.DoRequest(router, "PUT", "/api/v1/repairs/"+repairID+"/approve", map[string]string{
		"notes": "go ahead",
	}, supToken)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on approve, got %d: %s", w.Code, w.Body.String())
	}

	// Approval pulls the unit out of service.
	var a entity.Apar
	db.First(&a, "id = ?", apar.ID)
	if a.Status != entity.AparStatusInRepair {
		t.Errorf("Expected apar in_repair after approval, got %s", a.Status)
	}

	w = testutil.DoRequest(router, "PUT", "/api/v1/repairs/"+repairID+"/complete", nil, supToken)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on complete, got %d: %s", w.Code, w.Body.String())
	}

	db.First(&a, "id = ?", apar.ID)
	if a.Status != entity.AparStatusActive {
		t.Errorf("Expected apar active after completion, got %s", a.Status)
	}

	var repair entity.RepairRequest
	db.First(&repair, "id = ?", repairID)
	if repair.Status != entity.RepairStatusCompleted {
		t.Errorf("Expected repair completed, got %s", repair.Status)
	}
	if repair.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}
	if repair.ReviewedBy == nil || *repair.ReviewedBy != sup.ID {
		t.Errorf("Expected reviewed_by %s, got %v", sup.ID, repair.ReviewedBy)
	}
}

func TestRepairReject(t *testing.T) {
	router, db := setupRepairTest(t)

	tech := testutil.SeedTestUser(t, db, "tek-001", "Tech One", entity.RoleTeknisi)
	sup := testutil.SeedTestUser(t, db, "sup-001", "Supervisor", entity.RoleSupervisor)
	apar := testutil.SeedTestApar(t, db, "apar-001", "APAR-0001", "QR-0001")

	techToken := testutil.GenerateTestToken(tech.ID, tech.Name, tech.Role)
	supToken := testutil.GenerateTestToken(sup.ID, sup.Name, sup.Role)

	repairID := createRepair(t, router, techToken, apar.ID)

	w := testutil.DoRequest(router, "PUT", "/api/v1/repairs/"+repairID+"/reject", map[string]string{
		"notes": "duplicate request",
	}, supToken)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on reject, got %d: %s", w.Code, w.Body.String())
	}

	// The unit stays in service.
	var a entity.Apar
	db.First(&a, "id = ?", apar.ID)
	if a.Status != entity.AparStatusActive {
		t.Errorf("Expected apar still active, got %s", a.Status)
	}

	// Rejected requests are terminal.
	w = testutil.DoRequest(router, "PUT", "/api/v1/repairs/"+repairID+"/approve", nil, supToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 approving rejected repair, got %d", w.Code)
	}
}

func TestRepairCompleteBeforeApprove(t *testing.T) {
	router, db := setupRepairTest(t)

	tech := testutil.SeedTestUser(t, db, "tek-001", "Tech One", entity.RoleTeknisi)
	sup := testutil.SeedTestUser(t, db, "sup-001", "Supervisor", entity.RoleSupervisor)
	apar := testutil.SeedTestApar(t, db, "apar-001", "APAR-0001", "QR-0001")

	techToken := testutil.GenerateTestToken(tech.ID, tech.Name, tech.Role)
	supToken := testutil.GenerateTestToken(sup.ID, sup.Name, sup.Role)

	repairID := createRepair(t, router, techToken, apar.ID)

	w := testutil.DoRequest(router, "PUT", "/api/v1/repairs/"+repairID+"/complete", nil, supToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 completing pending repair, got %d", w.Code)
	}
}

func TestRepairCreateValidation(t *testing.T) {
	router, db := setupRepairTest(t)

	tech := testutil.SeedTestUser(t, db, "tek-001", "Tech One", entity.RoleTeknisi)
	apar := testutil.SeedTestApar(t, db, "apar-001", "APAR-0001", "QR-0001")
	token := testutil.GenerateTestToken(tech.ID, tech.Name, tech.Role)

	w := testutil.DoRequest(router, "POST", "/api/v1/repairs", map[string]interface{}{
		"apar_id":     apar.ID,
		"description": "corroded",
		"severity":    "catastrophic",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown severity, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/repairs", map[string]interface{}{
		"apar_id":     "no-such-apar",
		"description": "corroded",
		"severity":    entity.SeverityMinor,
	}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown apar, got %d", w.Code)
	}
}
