// Package eligibility decides whether a user may record an inspection
// against an Apar at a given instant. It is a pure computation over
// caller-supplied snapshots: no clock, no store, no side effects, so it
// is safe to call from any number of request handlers concurrently.
package eligibility

import (
	"math"
	"sort"
	"time"

	"github.com/inspeksi/apar-backend/internal/inspection/entity"
)

// Reason codes for rejected submissions. Surfaced verbatim to clients.
const (
	ReasonAssetMismatch         = "asset_mismatch"
	ReasonOutsideScheduleWindow = "outside_schedule_window"
	ReasonUnauthorizedLocation  = "unauthorized_location"
	ReasonInactiveAsset         = "inactive_asset"
)

// Location is a client-reported submission position.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Submission carries the already-resolved identifiers of one inspection
// attempt. AparID and QRAparID are the asset IDs that the submitted id
// and QR code resolved to; the caller performs the lookups.
type Submission struct {
	AparID   string
	QRAparID string
	Location *Location
}

// UsablePredicate decides whether a schedule may be worked by a user.
// Assignment policy is a business rule owned by the caller, so it is
// injected rather than hardcoded here.
type UsablePredicate func(s *entity.InspectionSchedule, u *entity.User) bool

// DefaultUsable accepts unassigned schedules and schedules assigned to
// the submitting user.
func DefaultUsable(s *entity.InspectionSchedule, u *entity.User) bool {
	return s.AssignedUserID == nil || *s.AssignedUserID == u.ID
}

// Input is everything Evaluate needs, snapshotted by the caller at a
// consistent point before the call.
type Input struct {
	Submission Submission
	Apar       *entity.Apar
	Schedules  []entity.InspectionSchedule // all schedules of the Apar, active or not
	User       *entity.User
	Now        time.Time
	Usable     UsablePredicate // nil means DefaultUsable
}

// Decision is the outcome of one evaluation. Exactly one of Accepted or
// Reason is meaningful.
type Decision struct {
	Accepted   bool
	ScheduleID *string // matched current window, nil for ad-hoc override inspections
	Reason     string
}

func accept(scheduleID *string) Decision {
	return Decision{Accepted: true, ScheduleID: scheduleID}
}

func reject(reason string) Decision {
	return Decision{Reason: reason}
}

// Evaluate applies the eligibility rules. Every expected business
// outcome is a Decision value; the error return fires only for broken
// data (malformed schedule time strings), which is a defect, not a
// rejection.
func Evaluate(in Input) (Decision, error) {
	if in.Submission.AparID != "" && in.Submission.QRAparID != "" &&
		in.Submission.AparID != in.Submission.QRAparID {
		return reject(ReasonAssetMismatch), nil
	}

	if in.Apar.Status != entity.AparStatusActive {
		return reject(ReasonInactiveAsset), nil
	}

	// Supervisor and admin bypass window and geofence checks entirely,
	// but still get linked to a current window when one happens to exist.
	if entity.IsOverrideRole(in.User.Role) {
		matched, err := currentWindow(in.Schedules, in.Now, nil, nil)
		if err != nil {
			return Decision{}, err
		}
		if matched != nil {
			id := matched.ID
			return accept(&id), nil
		}
		return accept(nil), nil
	}

	usable := in.Usable
	if usable == nil {
		usable = DefaultUsable
	}

	matched, err := currentWindow(in.Schedules, in.Now, in.User, usable)
	if err != nil {
		return Decision{}, err
	}
	if matched == nil {
		return reject(ReasonOutsideScheduleWindow), nil
	}

	if in.Apar.HasGeofence() && in.Submission.Location != nil {
		dist := HaversineMetres(
			in.Submission.Location.Latitude, in.Submission.Location.Longitude,
			*in.Apar.Latitude, *in.Apar.Longitude,
		)
		if dist > in.Apar.ValidRadius {
			return reject(ReasonUnauthorizedLocation), nil
		}
	}

	id := matched.ID
	return accept(&id), nil
}

// currentWindow returns the active, uncompleted schedule whose window
// contains now, applying the usability predicate when one is given.
// Overlapping windows should not occur under normal data; when they do,
// earliest start wins, then lowest ID, so the result is deterministic.
func currentWindow(schedules []entity.InspectionSchedule, now time.Time, u *entity.User, usable UsablePredicate) (*entity.InspectionSchedule, error) {
	type candidate struct {
		schedule *entity.InspectionSchedule
		start    time.Time
	}
	var candidates []candidate

	for i := range schedules {
		s := &schedules[i]
		if !s.IsActive || s.IsCompleted {
			continue
		}
		if usable != nil && !usable(s, u) {
			continue
		}
		start, end, err := s.Window(now.Location())
		if err != nil {
			return nil, err
		}
		if now.Before(start) || now.After(end) {
			continue
		}
		candidates = append(candidates, candidate{schedule: s, start: start})
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].start.Equal(candidates[j].start) {
			return candidates[i].start.Before(candidates[j].start)
		}
		return candidates[i].schedule.ID < candidates[j].schedule.ID
	})

	return candidates[0].schedule, nil
}

const earthRadiusMetres = 6371000.0

// HaversineMetres is the great-circle distance between two coordinates.
func HaversineMetres(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMetres * c
}
