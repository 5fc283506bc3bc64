package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	dashboardCacheKey = "report:dashboard"
	dashboardCacheTTL = 60 * time.Second
)

// ReportService aggregates statistics for the dashboard and exports
// inspection history to xlsx.
type ReportService struct {
	db             *gorm.DB
	rdb            *redis.Client
	inspectionRepo *repository.InspectionRepository
	aparRepo       *repository.AparRepository
	scheduleRepo   *repository.ScheduleRepository
	repairRepo     *repository.RepairRepository
}

func NewReportService(
	db *gorm.DB,
	rdb *redis.Client,
	inspectionRepo *repository.InspectionRepository,
	aparRepo *repository.AparRepository,
	scheduleRepo *repository.ScheduleRepository,
	repairRepo *repository.RepairRepository,
) *ReportService {
	return &ReportService{
		db:             db,
		rdb:            rdb,
		inspectionRepo: inspectionRepo,
		aparRepo:       aparRepo,
		scheduleRepo:   scheduleRepo,
		repairRepo:     repairRepo,
	}
}

// DashboardStats is the summary block shown on the landing page.
type DashboardStats struct {
	TotalApars           int64 `json:"total_apars"`
	ActiveApars          int64 `json:"active_apars"`
	ExpiredApars         int64 `json:"expired_apars"`
	InRepairApars        int64 `json:"in_repair_apars"`
	ExpiringSoon         int64 `json:"expiring_soon"`
	InspectionsThisMonth int64 `json:"inspections_this_month"`
	PendingRepairs       int64 `json:"pending_repairs"`
	OverdueSchedules     int64 `json:"overdue_schedules"`
}

// GetDashboardStats computes the dashboard counters. Results are cached
// briefly in Redis since the dashboard polls.
func (s *ReportService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, dashboardCacheKey).Result(); err == nil && cached != "" {
			var stats DashboardStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats := &DashboardStats{}
	now := time.Now()

	row := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN status = 'active' THEN 1 END) as active,
			COUNT(CASE WHEN status = 'expired' THEN 1 END) as expired,
			COUNT(CASE WHEN status = 'in_repair' THEN 1 END) as in_repair
		FROM apars
		WHERE deleted_at IS NULL
	`).Row()
	if err := row.Scan(&stats.TotalApars, &stats.ActiveApars, &stats.ExpiredApars, &stats.InRepairApars); err != nil {
		return nil, fmt.Errorf("apar counts: %w", err)
	}

	var err error
	if stats.ExpiringSoon, err = s.aparRepo.CountExpiringWithin(ctx, now, 30); err != nil {
		return nil, fmt.Errorf("expiring soon: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if stats.InspectionsThisMonth, err = s.inspectionRepo.CountSince(ctx, monthStart); err != nil {
		return nil, fmt.Errorf("inspections this month: %w", err)
	}

	if stats.PendingRepairs, err = s.repairRepo.CountByStatus(ctx, entity.RepairStatusPending); err != nil {
		return nil, fmt.Errorf("pending repairs: %w", err)
	}

	if stats.OverdueSchedules, err = s.scheduleRepo.CountOverdue(ctx, now); err != nil {
		return nil, fmt.Errorf("overdue schedules: %w", err)
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(stats); err == nil {
			s.rdb.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL)
		}
	}

	return stats, nil
}

var inspectionExportHeaders = []string{
	"Code", "Unit Code", "Unit Name", "Location", "Inspector", "Condition",
	"Pressure OK", "Hose OK", "Pin OK", "Seal OK", "Notes", "Inspected At",
}

// ExportInspections renders the filtered inspection history as an xlsx
// workbook.
func (s *ReportService) ExportInspections(ctx context.Context, filters map[string]string) (*excelize.File, string, error) {
	type exportRow struct {
		Code        string
		AparCode    string
		AparName    string
		Location    string
		Inspector   string
		Condition   string
		PressureOK  bool
		HoseOK      bool
		PinOK       bool
		SealOK      bool
		Notes       string
		InspectedAt time.Time
	}

	query := s.db.WithContext(ctx).Table("inspections i").
		Select(`i.code, a.code as apar_code, a.name as apar_name, a.location,
			u.name as inspector, i.condition, i.pressure_ok, i.hose_ok,
			i.pin_ok, i.seal_ok, i.notes, i.inspected_at`).
		Joins("JOIN apars a ON a.id = i.apar_id").
		Joins("JOIN users u ON u.id = i.user_id").
		Order("i.inspected_at DESC")

	if aparID := filters["apar_id"]; aparID != "" {
		query = query.Where("i.apar_id = ?", aparID)
	}
	if userID := filters["user_id"]; userID != "" {
		query = query.Where("i.user_id = ?", userID)
	}
	if condition := filters["condition"]; condition != "" {
		query = query.Where("i.condition = ?", condition)
	}
	if from := filters["from"]; from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("i.inspected_at >= ?", t)
		}
	}
	if to := filters["to"]; to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("i.inspected_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var rows []exportRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, "", fmt.Errorf("collect inspections: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Inspections"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range inspectionExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	yesNo := func(ok bool) string {
		if ok {
			return "Yes"
		}
		return "No"
	}

	for rowIdx, item := range rows {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.Code)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.AparCode)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.AparName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Location)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), item.Inspector)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), item.Condition)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), yesNo(item.PressureOK))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), yesNo(item.HoseOK))
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), yesNo(item.PinOK))
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), yesNo(item.SealOK))
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), item.Notes)
		f.SetCellValue(sheet, fmt.Sprintf("L%d", row), item.InspectedAt.Format("2006-01-02 15:04"))
	}

	colWidths := []float64{14, 12, 24, 24, 18, 12, 10, 10, 10, 10, 30, 18}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("inspections_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
