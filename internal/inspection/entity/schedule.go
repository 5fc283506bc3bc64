package entity

import (
	"fmt"
	"time"
)

// Schedule recurrence frequencies.
const (
	FrequencyOnce    = "once"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// InspectionSchedule is a time window during which a routine inspection
// of one Apar is expected. AssignedUserID nil means open to any teknisi.
type InspectionSchedule struct {
	ID             string  `json:"id" gorm:"primaryKey;size:32"`
	AparID         string  `json:"apar_id" gorm:"size:32;not null;index"`
	AssignedUserID *string `json:"assigned_user_id" gorm:"size:32;index"`

	ScheduledDate time.Time `json:"scheduled_date" gorm:"type:date;not null;index"`
	StartTime     string    `json:"start_time" gorm:"size:5;not null"` // HH:MM
	EndTime       string    `json:"end_time" gorm:"size:5;not null"`   // HH:MM
	Frequency     string    `json:"frequency" gorm:"size:16;not null;default:once"`

	IsActive    bool       `json:"is_active" gorm:"not null;default:true"`
	IsCompleted bool       `json:"is_completed" gorm:"not null;default:false"`
	CompletedAt *time.Time `json:"completed_at"`

	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Apar         *Apar `json:"apar,omitempty" gorm:"foreignKey:AparID"`
	AssignedUser *User `json:"assigned_user,omitempty" gorm:"foreignKey:AssignedUserID"`
}

func (InspectionSchedule) TableName() string {
	return "inspection_schedules"
}

// ValidFrequency reports whether f is a known recurrence frequency.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Window resolves the concrete [start, end] instants of the schedule by
// combining the scheduled date with the HH:MM bounds, in loc. Malformed
// time strings return an error rather than a zero window.
func (s *InspectionSchedule) Window(loc *time.Location) (start, end time.Time, err error) {
	start, err = combineDateTime(s.ScheduledDate, s.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("schedule %s start_time: %w", s.ID, err)
	}
	end, err = combineDateTime(s.ScheduledDate, s.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("schedule %s end_time: %w", s.ID, err)
	}
	return start, end, nil
}

func combineDateTime(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
