package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/inspeksi/apar-backend/internal/config"
	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/inspeksi/apar-backend/internal/inspection/testutil"
	"github.com/inspeksi/apar-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupAparTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, service.Deps{DB: db}, cfg)

	h := NewAparHandler(services.Apar)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	apars := api.Group("/apars")
	{
		apars.GET("", h.List)
		apars.GET("/:id", h.Get)
		apars.GET("/qr/:code", h.GetByQRCode)

		write := apars.Group("")
		write.Use(middleware.RequireRole(entity.RoleSupervisor, entity.RoleAdmin))
		{
			write.POST("", h.Create)
			write.PUT("/:id", h.Update)
			write.DELETE("/:id", h.Delete)
			write.POST("/refresh-expiry", h.RefreshExpiry)
		}
	}

	return router, db
}

func TestAparCreateAndGetByQR(t *testing.T) {
	router, db := setupAparTest(t)
	sup := testutil.SeedTestUser(t, db, "sup-001", "Supervisor", entity.RoleSupervisor)
	token := testutil.GenerateTestToken(sup.ID, sup.Name, sup.Role)

	w := testutil.DoRequest(router, "POST", "/api/v1/apars", map[string]interface{}{
		"name":          "Gudang Barat Lantai 1",
		"qr_code":       "QR-NEW-001",
		"location":      "Warehouse West",
		"location_type": entity.AparLocationFixed,
		"type":          "powder",
		"capacity_kg":   6,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	created := resp["data"].(map[string]interface{})["apar"].(map[string]interface{})
	if created["status"] != entity.AparStatusActive {
		t.Errorf("Expected new apar active, got %v", created["status"])
	}
	code, _ := created["code"].(string)
	if code == "" {
		t.Error("Expected a generated unit code")
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/apars/qr/QR-NEW-001", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 by QR, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	found := resp["data"].(map[string]interface{})["apar"].(map[string]interface{})
	if found["id"] != created["id"] {
		t.Errorf("QR lookup returned %v, want %v", found["id"], created["id"])
	}
}

func TestAparCreateInvalidLocationType(t *testing.T) {
	router, db := setupAparTest(t)
	sup := testutil.SeedTestUser(t, db, "sup-001", "Supervisor", entity.RoleSupervisor)
	token := testutil.GenerateTestToken(sup.ID, sup.Name, sup.Role)

	w := testutil.DoRequest(router, "POST", "/api/v1/apars", map[string]interface{}{
		"name":          "Unit X",
		"qr_code":       "QR-X",
		"location_type": "floating",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for bad location_type, got %d", w.Code)
	}
}

func TestAparWriteRequiresRole(t *testing.T) {
	router, db := setupAparTest(t)
	tech := testutil.SeedTestUser(t, db, "tek-001", "Tech One", entity.RoleTeknisi)
	token := testutil.GenerateTestToken(tech.ID, tech.Name, tech.Role)

	w := testutil.DoRequest(router, "POST", "/api/v1/apars", map[string]interface{}{
		"name":          "Unit X",
		"qr_code":       "QR-X",
		"location_type": entity.AparLocationFixed,
	}, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for teknisi create, got %d", w.Code)
	}

	// Reads stay open to every authenticated role.
	w = testutil.DoRequest(router, "GET", "/api/v1/apars", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for teknisi list, got %d", w.Code)
	}
}

func TestAparListFilters(t *testing.T) {
	router, db := setupAparTest(t)
	sup := testutil.SeedTestUser(t, db, "sup-001", "Supervisor", entity.RoleSupervisor)
	token := testutil.GenerateTestToken(sup.ID, sup.Name, sup.Role)

	testutil.SeedTestApar(t, db, "apar-001", "APAR-0001", "QR-0001")
	inactive := testutil.SeedTestApar(t, db, "apar-002", "APAR-0002", "QR-0002")
	db.Model(&entity.Apar{}).Where("id = ?", inactive.ID).Update("status", entity.AparStatusInactive)

	w := testutil.DoRequest(router, "GET", "/api/v1/apars?status=active", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 active apar, got %d", len(items))
	}
}

func TestAparRefreshExpiry(t *testing.T) {
	router, db := setupAparTest(t)
	sup := testutil.SeedTestUser(t, db, "sup-001", "Supervisor", entity.RoleSupervisor)
	token := testutil.GenerateTestToken(sup.ID, sup.Name, sup.Role)

	expired := testutil.SeedTestApar(t, db, "apar-001", "APAR-0001", "QR-0001")
	past := time.Now().AddDate(0, -1, 0)
	db.Model(&entity.Apar{}).Where("id = ?", expired.ID).Update("expiry_date", past)
	testutil.SeedTestApar(t, db, "apar-002", "APAR-0002", "QR-0002")

	w := testutil.DoRequest(router, "POST", "/api/v1/apars/refresh-expiry", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if updated := resp["data"].(map[string]interface{})["updated"]; updated != float64(1) {
		t.Errorf("Expected 1 unit flipped to expired, got %v", updated)
	}

	var a entity.Apar
	db.First(&a, "id = ?", expired.ID)
	if a.Status != entity.AparStatusExpired {
		t.Errorf("Expected expired status, got %s", a.Status)
	}
}

func TestAparDelete(t *testing.T) {
	router, db := setupAparTest(t)
	sup := testutil.SeedTestUser(t, db, "sup-001", "Supervisor", entity.RoleSupervisor)
	apar := testutil.SeedTestApar(t, db, "apar-001", "APAR-0001", "QR-0001")
	token := testutil.GenerateTestToken(sup.ID, sup.Name, sup.Role)

	w := testutil.DoRequest(router, "DELETE", "/api/v1/apars/"+apar.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/apars/"+apar.ID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 after delete, got %d", w.Code)
	}
}
