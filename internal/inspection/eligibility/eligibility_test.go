package eligibility

import (
	"testing"
	"time"

	"github.com/inspeksi/apar-backend/internal/inspection/entity"
)

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

func testApar(locationType string) *entity.Apar {
	a := &entity.Apar{
		ID:           "apar-001",
		Code:         "APAR-001",
		QRCode:       "QR-APAR-001",
		LocationType: locationType,
		Status:       entity.AparStatusActive,
		ValidRadius:  50,
	}
	if locationType == entity.AparLocationFixed {
		// Monas, Jakarta
		a.Latitude = f64Ptr(-6.175392)
		a.Longitude = f64Ptr(106.827153)
	}
	return a
}

func testUser(role string) *entity.User {
	return &entity.User{ID: "user-001", Username: "budi", Role: role, Status: entity.UserStatusActive}
}

// schedule with a window on the given date, assigned to userID (empty = open)
func testSchedule(id string, date time.Time, start, end, userID string) entity.InspectionSchedule {
	s := entity.InspectionSchedule{
		ID:            id,
		AparID:        "apar-001",
		ScheduledDate: date,
		StartTime:     start,
		EndTime:       end,
		Frequency:     entity.FrequencyOnce,
		IsActive:      true,
	}
	if userID != "" {
		s.AssignedUserID = strPtr(userID)
	}
	return s
}

var testDay = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestTeknisiWithinWindowAccepted(t *testing.T) {
	sched := testSchedule("sched-1", testDay, "08:00", "10:00", "user-001")

	dec, err := Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
		Apar:       testApar(entity.AparLocationMobile),
		Schedules:  []entity.InspectionSchedule{sched},
		User:       testUser(entity.RoleTeknisi),
		Now:        at(9, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Accepted {
		t.Fatalf("expected accept, got reject(%s)", dec.Reason)
	}
	if dec.ScheduleID == nil || *dec.ScheduleID != "sched-1" {
		t.Fatalf("expected schedule binding to sched-1, got %v", dec.ScheduleID)
	}
}

func TestTeknisiWindowBoundaries(t *testing.T) {
	sched := testSchedule("sched-1", testDay, "08:00", "10:00", "user-001")

	cases := []struct {
		name   string
		now    time.Time
		accept bool
	}{
		{"before window", at(7, 59), false},
		{"at start", at(8, 0), true},
		{"inside", at(9, 30), true},
		{"at end", at(10, 0), true},
		{"after window", at(10, 1), false},
		{"previous day", at(9, 0).AddDate(0, 0, -1), false},
		{"next day", at(9, 0).AddDate(0, 0, 1), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dec, err := Evaluate(Input{
				Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
				Apar:       testApar(entity.AparLocationMobile),
				Schedules:  []entity.InspectionSchedule{sched},
				User:       testUser(entity.RoleTeknisi),
				Now:        tc.now,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dec.Accepted != tc.accept {
				t.Fatalf("accept=%v, want %v (reason=%s)", dec.Accepted, tc.accept, dec.Reason)
			}
			if !tc.accept && dec.Reason != ReasonOutsideScheduleWindow {
				t.Fatalf("expected reason %s, got %s", ReasonOutsideScheduleWindow, dec.Reason)
			}
		})
	}
}

// Supervisors and admins never get rejected for being outside a window:
// schedule is for tomorrow, teknisi is rejected, override roles accept
// with no schedule binding.
func TestOverrideRolesSkipWindowCheck(t *testing.T) {
	tomorrow := testDay.AddDate(0, 0, 1)
	sched := testSchedule("sched-1", tomorrow, "08:00", "10:00", "user-001")

	base := Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
		Apar:       testApar(entity.AparLocationMobile),
		Schedules:  []entity.InspectionSchedule{sched},
		Now:        at(9, 0),
	}

	in := base
	in.User = testUser(entity.RoleTeknisi)
	dec, err := Evaluate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Accepted || dec.Reason != ReasonOutsideScheduleWindow {
		t.Fatalf("teknisi: expected outside_schedule_window, got %+v", dec)
	}

	for _, role := range []string{entity.RoleSupervisor, entity.RoleAdmin} {
		in := base
		in.User = testUser(role)
		dec, err := Evaluate(in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", role, err)
		}
		if !dec.Accepted {
			t.Fatalf("%s: expected accept, got reject(%s)", role, dec.Reason)
		}
		if dec.ScheduleID != nil {
			t.Fatalf("%s: expected no schedule binding, got %v", role, *dec.ScheduleID)
		}
	}
}

// An override submission made during a current window still binds to it.
func TestOverrideBindsCurrentWindow(t *testing.T) {
	sched := testSchedule("sched-1", testDay, "08:00", "10:00", "someone-else")

	dec, err := Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
		Apar:       testApar(entity.AparLocationMobile),
		Schedules:  []entity.InspectionSchedule{sched},
		User:       testUser(entity.RoleSupervisor),
		Now:        at(9, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Accepted || dec.ScheduleID == nil || *dec.ScheduleID != "sched-1" {
		t.Fatalf("expected accept bound to sched-1, got %+v", dec)
	}
}

func TestAssetMismatchRejectedForAllRoles(t *testing.T) {
	sched := testSchedule("sched-1", testDay, "08:00", "10:00", "user-001")

	for _, role := range []string{entity.RoleTeknisi, entity.RoleSupervisor, entity.RoleAdmin} {
		dec, err := Evaluate(Input{
			Submission: Submission{AparID: "apar-001", QRAparID: "apar-002"},
			Apar:       testApar(entity.AparLocationMobile),
			Schedules:  []entity.InspectionSchedule{sched},
			User:       testUser(role),
			Now:        at(9, 0),
		})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", role, err)
		}
		if dec.Accepted || dec.Reason != ReasonAssetMismatch {
			t.Fatalf("%s: expected asset_mismatch, got %+v", role, dec)
		}
	}
}

func TestInactiveAssetRejected(t *testing.T) {
	sched := testSchedule("sched-1", testDay, "08:00", "10:00", "user-001")

	for _, status := range []string{entity.AparStatusInactive, entity.AparStatusExpired, entity.AparStatusInRepair} {
		apar := testApar(entity.AparLocationMobile)
		apar.Status = status

		dec, err := Evaluate(Input{
			Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
			Apar:       apar,
			Schedules:  []entity.InspectionSchedule{sched},
			User:       testUser(entity.RoleTeknisi),
			Now:        at(9, 0),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dec.Accepted || dec.Reason != ReasonInactiveAsset {
			t.Fatalf("status %s: expected inactive_asset, got %+v", status, dec)
		}
	}
}

func TestGeofenceFixedAsset(t *testing.T) {
	sched := testSchedule("sched-1", testDay, "08:00", "10:00", "user-001")
	apar := testApar(entity.AparLocationFixed)

	// ~15m away from the unit: within the 50m radius.
	near := &Location{Latitude: -6.175392, Longitude: 106.827290}
	// ~2km away.
	far := &Location{Latitude: -6.1930, Longitude: 106.8270}

	dec, err := Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001", Location: near},
		Apar:       apar,
		Schedules:  []entity.InspectionSchedule{sched},
		User:       testUser(entity.RoleTeknisi),
		Now:        at(9, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Accepted {
		t.Fatalf("near location: expected accept, got reject(%s)", dec.Reason)
	}

	dec, err = Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001", Location: far},
		Apar:       apar,
		Schedules:  []entity.InspectionSchedule{sched},
		User:       testUser(entity.RoleTeknisi),
		Now:        at(9, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Accepted || dec.Reason != ReasonUnauthorizedLocation {
		t.Fatalf("far location: expected unauthorized_location, got %+v", dec)
	}
}

// A mobile asset is never geofenced, however far away the submission is.
func TestMobileAssetNeverGeofenced(t *testing.T) {
	sched := testSchedule("sched-1", testDay, "08:00", "10:00", "user-001")
	apar := testApar(entity.AparLocationMobile)
	// Mobile units may still carry stale coordinates; they must be ignored.
	apar.Latitude = f64Ptr(-6.175392)
	apar.Longitude = f64Ptr(106.827153)

	farAway := &Location{Latitude: 35.6762, Longitude: 139.6503} // Tokyo

	dec, err := Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001", Location: farAway},
		Apar:       apar,
		Schedules:  []entity.InspectionSchedule{sched},
		User:       testUser(entity.RoleTeknisi),
		Now:        at(9, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Accepted {
		t.Fatalf("expected accept, got reject(%s)", dec.Reason)
	}
}

// Override roles skip the geofence too.
func TestOverrideSkipsGeofence(t *testing.T) {
	sched := testSchedule("sched-1", testDay, "08:00", "10:00", "user-001")
	far := &Location{Latitude: -6.1930, Longitude: 106.8270}

	dec, err := Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001", Location: far},
		Apar:       testApar(entity.AparLocationFixed),
		Schedules:  []entity.InspectionSchedule{sched},
		User:       testUser(entity.RoleAdmin),
		Now:        at(9, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Accepted {
		t.Fatalf("expected accept, got reject(%s)", dec.Reason)
	}
}

func TestScheduleFiltering(t *testing.T) {
	inactive := testSchedule("sched-inactive", testDay, "08:00", "10:00", "user-001")
	inactive.IsActive = false

	completed := testSchedule("sched-completed", testDay, "08:00", "10:00", "user-001")
	completed.IsCompleted = true

	otherUser := testSchedule("sched-other", testDay, "08:00", "10:00", "someone-else")

	dec, err := Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
		Apar:       testApar(entity.AparLocationMobile),
		Schedules:  []entity.InspectionSchedule{inactive, completed, otherUser},
		User:       testUser(entity.RoleTeknisi),
		Now:        at(9, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Accepted || dec.Reason != ReasonOutsideScheduleWindow {
		t.Fatalf("expected outside_schedule_window, got %+v", dec)
	}
}

// An open (unassigned) schedule is usable by any teknisi under the
// default predicate.
func TestUnassignedScheduleOpenToAnyTeknisi(t *testing.T) {
	open := testSchedule("sched-open", testDay, "08:00", "10:00", "")

	dec, err := Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
		Apar:       testApar(entity.AparLocationMobile),
		Schedules:  []entity.InspectionSchedule{open},
		User:       testUser(entity.RoleTeknisi),
		Now:        at(9, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Accepted || dec.ScheduleID == nil || *dec.ScheduleID != "sched-open" {
		t.Fatalf("expected accept bound to sched-open, got %+v", dec)
	}
}

// A caller-supplied predicate replaces the default assignment policy.
func TestInjectedUsablePredicate(t *testing.T) {
	open := testSchedule("sched-open", testDay, "08:00", "10:00", "")

	strictlyAssigned := func(s *entity.InspectionSchedule, u *entity.User) bool {
		return s.AssignedUserID != nil && *s.AssignedUserID == u.ID
	}

	dec, err := Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
		Apar:       testApar(entity.AparLocationMobile),
		Schedules:  []entity.InspectionSchedule{open},
		User:       testUser(entity.RoleTeknisi),
		Now:        at(9, 0),
		Usable:     strictlyAssigned,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Accepted {
		t.Fatal("expected reject under strict assignment predicate")
	}
}

// Overlapping windows resolve deterministically: earliest start wins,
// lowest ID breaks a tie.
func TestOverlappingWindowsTieBreak(t *testing.T) {
	early := testSchedule("sched-b", testDay, "08:00", "12:00", "user-001")
	late := testSchedule("sched-a", testDay, "09:00", "12:00", "user-001")

	dec, err := Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
		Apar:       testApar(entity.AparLocationMobile),
		Schedules:  []entity.InspectionSchedule{late, early},
		User:       testUser(entity.RoleTeknisi),
		Now:        at(10, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Accepted || dec.ScheduleID == nil || *dec.ScheduleID != "sched-b" {
		t.Fatalf("expected earliest-start sched-b, got %+v", dec)
	}

	// Same start: lowest ID wins.
	sameStart1 := testSchedule("sched-z", testDay, "08:00", "12:00", "user-001")
	sameStart2 := testSchedule("sched-a", testDay, "08:00", "12:00", "user-001")

	dec, err = Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
		Apar:       testApar(entity.AparLocationMobile),
		Schedules:  []entity.InspectionSchedule{sameStart1, sameStart2},
		User:       testUser(entity.RoleTeknisi),
		Now:        at(10, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Accepted || dec.ScheduleID == nil || *dec.ScheduleID != "sched-a" {
		t.Fatalf("expected lowest-ID sched-a, got %+v", dec)
	}
}

// Identical inputs yield identical decisions.
func TestEvaluateIdempotent(t *testing.T) {
	sched := testSchedule("sched-1", testDay, "08:00", "10:00", "user-001")
	in := Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
		Apar:       testApar(entity.AparLocationFixed),
		Schedules:  []entity.InspectionSchedule{sched},
		User:       testUser(entity.RoleTeknisi),
		Now:        at(9, 0),
	}

	first, err := Evaluate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Evaluate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Accepted != second.Accepted || first.Reason != second.Reason {
		t.Fatalf("decisions differ: %+v vs %+v", first, second)
	}
	if (first.ScheduleID == nil) != (second.ScheduleID == nil) {
		t.Fatalf("schedule bindings differ: %+v vs %+v", first, second)
	}
	if first.ScheduleID != nil && *first.ScheduleID != *second.ScheduleID {
		t.Fatalf("schedule bindings differ: %s vs %s", *first.ScheduleID, *second.ScheduleID)
	}
}

func TestMalformedScheduleTimeIsDefect(t *testing.T) {
	broken := testSchedule("sched-1", testDay, "8 o'clock", "10:00", "user-001")

	_, err := Evaluate(Input{
		Submission: Submission{AparID: "apar-001", QRAparID: "apar-001"},
		Apar:       testApar(entity.AparLocationMobile),
		Schedules:  []entity.InspectionSchedule{broken},
		User:       testUser(entity.RoleTeknisi),
		Now:        at(9, 0),
	})
	if err == nil {
		t.Fatal("expected error for malformed start_time")
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Monas to Istiqlal Mosque, Jakarta: roughly 700m.
	d := HaversineMetres(-6.175392, 106.827153, -6.170166, 106.831375)
	if d < 600 || d > 850 {
		t.Fatalf("expected ~700m, got %.1fm", d)
	}

	// Zero distance.
	if d := HaversineMetres(-6.2, 106.8, -6.2, 106.8); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}
