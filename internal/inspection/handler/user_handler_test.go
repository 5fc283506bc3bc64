package handler

import (
	"net/http"
	"testing"

	"github.com/inspeksi/apar-backend/internal/config"
	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/inspeksi/apar-backend/internal/inspection/testutil"
	"github.com/inspeksi/apar-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, service.Deps{DB: db}, cfg)

	h := NewUserHandler(services.User)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	users := api.Group("/users")
	users.Use(middleware.RequireRole(entity.RoleAdmin))
	{
		users.GET("", h.List)
		users.POST("", h.Create)
		users.GET("/:id", h.Get)
		users.PUT("/:id", h.Update)
		users.PUT("/:id/password", h.ResetPassword)
		users.DELETE("/:id", h.Delete)
	}

	return router, db
}

func TestUserCreateAndList(t *testing.T) {
	router, db := setupUserTest(t)
	admin := testutil.SeedTestUser(t, db, "adm-001", "Admin", entity.RoleAdmin)
	token := testutil.GenerateTestToken(admin.ID, admin.Name, admin.Role)

	w := testutil.DoRequest(router, "POST", "/api/v1/users", map[string]string{
		"username": "budi",
		"name":     "Budi Santoso",
		"email":    "budi@example.com",
		"password": "rahasia-123",
		"role":     entity.RoleTeknisi,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	created := resp["data"].(map[string]interface{})["user"].(map[string]interface{})
	if created["username"] != "budi" {
		t.Errorf("Expected username budi, got %v", created["username"])
	}
	if created["role"] != entity.RoleTeknisi {
		t.Errorf("Expected teknisi role, got %v", created["role"])
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/users?role=teknisi", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 teknisi, got %d", len(items))
	}
}

func TestUserCreateInvalidRole(t *testing.T) {
	router, db := setupUserTest(t)
	admin := testutil.SeedTestUser(t, db, "adm-001", "Admin", entity.RoleAdmin)
	token := testutil.GenerateTestToken(admin.ID, admin.Name, admin.Role)

	w := testutil.DoRequest(router, "POST", "/api/v1/users", map[string]string{
		"username": "budi",
		"name":     "Budi Santoso",
		"password": "rahasia-123",
		"role":     "superuser",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown role, got %d", w.Code)
	}
}

func TestUserEndpointsRequireAdmin(t *testing.T) {
	router, db := setupUserTest(t)
	tech := testutil.SeedTestUser(t, db, "tek-001", "Tech One", entity.RoleTeknisi)
	token := testutil.GenerateTestToken(tech.ID, tech.Name, tech.Role)

	w := testutil.DoRequest(router, "GET", "/api/v1/users", nil, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for teknisi, got %d", w.Code)
	}
}

func TestUserUpdateAndResetPassword(t *testing.T) {
	router, db := setupUserTest(t)
	admin := testutil.SeedTestUser(t, db, "adm-001", "Admin", entity.RoleAdmin)
	target := testutil.SeedTestUser(t, db, "tek-001", "Tech One", entity.RoleTeknisi)
	token := testutil.GenerateTestToken(admin.ID, admin.Name, admin.Role)

	w := testutil.DoRequest(router, "PUT", "/api/v1/users/"+target.ID, map[string]string{
		"name": "Tech One Renamed",
		"role": entity.RoleSupervisor,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated entity.User
	db.First(&updated, "id = ?", target.ID)
	if updated.Name != "Tech One Renamed" || updated.Role != entity.RoleSupervisor {
		t.Errorf("Update not applied: name=%s role=%s", updated.Name, updated.Role)
	}

	w = testutil.DoRequest(router, "PUT", "/api/v1/users/"+target.ID+"/password", map[string]string{
		"password": "new-password-1",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Too short passwords are rejected at binding.
	w = testutil.DoRequest(router, "PUT", "/api/v1/users/"+target.ID+"/password", map[string]string{
		"password": "short",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for short password, got %d", w.Code)
	}
}

func TestUserDelete(t *testing.T) {
	router, db := setupUserTest(t)
	admin := testutil.SeedTestUser(t, db, "adm-001", "Admin", entity.RoleAdmin)
	target := testutil.SeedTestUser(t, db, "tek-001", "Tech One", entity.RoleTeknisi)
	token := testutil.GenerateTestToken(admin.ID, admin.Name, admin.Role)

	w := testutil.DoRequest(router, "DELETE", "/api/v1/users/"+target.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/users/"+target.ID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 after delete, got %d", w.Code)
	}
}
