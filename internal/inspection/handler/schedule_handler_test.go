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

func setupScheduleTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, service.Deps{DB: db}, cfg)

	h := NewScheduleHandler(services.Schedule)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	schedules := api.Group("/schedules")
	{
		schedules.GET("", h.List)
		schedules.GET("/my-today", h.MyToday)
		schedules.GET("/:id", h.Get)

		write := schedules.Group("")
		write.Use(middleware.RequireRole(entity.RoleSupervisor, entity.RoleAdmin))
		{
			write.POST("", h.Create)
			write.PUT("/:id", h.Update)
			write.DELETE("/:id", h.Delete)
			write.PUT("/:id/complete", h.Complete)
		}
	}

	return router, db
}

func TestScheduleCreate(t *testing.T) {
	router, db := setupScheduleTest(t)
	sup := testutil.SeedTestUser(t, db, "sup-001", "Supervisor", entity.RoleSupervisor)
	tech := testutil.SeedTestUser(t, db, "tek-001", "Tech One", entity.RoleTeknisi)
	apar := testutil.SeedTestApar(t, db, "apar-001", "APAR-0001", "QR-0001")
	token := testutil.GenerateTestToken(sup.ID, sup.Name, sup.Role)

	w := testutil.DoRequest(router, "POST", "/api/v1/schedules", map[string]interface{}{
		"apar_id":          apar.ID,
		"assigned_user_id": tech.ID,
		"scheduled_date":   time.Now().Format("2006-01-02"),
		"start_time":       "08:00",
		"end_time":         "17:00",
		"frequency":        entity.FrequencyDaily,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	created := resp["data"].(map[string]interface{})["schedule"].(map[string]interface{})
	if created["is_active"] != true {
		t.Errorf("Expected new schedule active, got %v", created["is_active"])
	}

	// Window must be ordered.
	w = testutil.DoRequest(router, "POST", "/api/v1/schedules", map[string]interface{}{
		"apar_id":        apar.ID,
		"scheduled_date": time.Now().Format("2006-01-02"),
		"start_time":     "17:00",
		"end_time":       "08:00",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for inverted window, got %d", w.Code)
	}

	// Unknown assignee is rejected.
	w = testutil.DoRequest(router, "POST", "/api/v1/schedules", map[string]interface{}{
		"apar_id":          apar.ID,
		"assigned_user_id": "no-such-user",
		"scheduled_date":   time.Now().Format("2006-01-02"),
		"start_time":       "08:00",
		"end_time":         "17:00",
	}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown assignee, got %d", w.Code)
	}
}

func TestScheduleListFilters(t *testing.T) {
	router, db := setupScheduleTest(t)
	sup := testutil.SeedTestUser(t, db, "sup-001", "Supervisor", entity.RoleSupervisor)
	tech := testutil.SeedTestUser(t, db, "tek-001", "Tech One", entity.RoleTeknisi)
	apar := testutil.SeedTestApar(t, db, "apar-001", "APAR-0001", "QR-0001")
	token := testutil.GenerateTestToken(sup.ID, sup.Name, sup.Role)

	daily := testutil.SeedTestSchedule(t, db, "sch-001", apar.ID, &tech.ID)
	weekly := testutil.SeedTestSchedule(t, db, "sch-002", apar.ID, nil)
	db.Model(&entity.InspectionSchedule{}).Where("id = ?", weekly.ID).
		Update("frequency", entity.FrequencyWeekly)

	w := testutil.DoRequest(router, "GET", "/api/v1/schedules?frequency=weekly", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 weekly schedule, got %d", len(items))
	}
	if items[0].(map[string]interface{})["id"] != weekly.ID {
		t.Errorf("Expected %s, got %v", weekly.ID, items[0].(map[string]interface{})["id"])
	}

	today := time.Now().Format("2006-01-02")
	w = testutil.DoRequest(router, "GET", "/api/v1/schedules?date="+today+"&assigned_user_id="+tech.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	items = resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 schedule for %s today, got %d", daily.ID, len(items))
	}
}

func TestScheduleMyToday(t *testing.T) {
	router, db := setupScheduleTest(t)
	tech := testutil.SeedTestUser(t, db, "tek-001", "Tech One", entity.RoleTeknisi)
	other := testutil.SeedTestUser(t, db, "tek-002", "Tech Two", entity.RoleTeknisi)
	apar := testutil.SeedTestApar(t, db, "apar-001", "APAR-0001", "QR-0001")

	testutil.SeedTestSchedule(t, db, "sch-001", apar.ID, &tech.ID)
	testutil.SeedTestSchedule(t, db, "sch-002", apar.ID, &other.ID)

	token := testutil.GenerateTestToken(tech.ID, tech.Name, tech.Role)
	w := testutil.DoRequest(router, "GET", "/api/v1/schedules/my-today", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected only own schedule, got %d", len(items))
	}
	if items[0].(map[string]interface{})["id"] != "sch-001" {
		t.Errorf("Expected sch-001, got %v", items[0].(map[string]interface{})["id"])
	}
}

func TestScheduleComplete(t *testing.T) {
	router, db := setupScheduleTest(t)
	sup := testutil.SeedTestUser(t, db, "sup-001", "Supervisor", entity.RoleSupervisor)
	apar := testutil.SeedTestApar(t, db, "apar-001", "APAR-0001", "QR-0001")
	schedule := testutil.SeedTestSchedule(t, db, "sch-001", apar.ID, nil)
	token := testutil.GenerateTestToken(sup.ID, sup.Name, sup.Role)

	w := testutil.DoRequest(router, "PUT", "/api/v1/schedules/"+schedule.ID+"/complete", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var s entity.InspectionSchedule
	db.First(&s, "id = ?", schedule.ID)
	if !s.IsCompleted || s.CompletedAt == nil {
		t.Errorf("Expected completed schedule, got is_completed=%v completed_at=%v", s.IsCompleted, s.CompletedAt)
	}
}
