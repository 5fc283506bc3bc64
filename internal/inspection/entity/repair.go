package entity

import "time"

// Repair request statuses.
const (
	RepairStatusPending   = "pending"
	RepairStatusApproved  = "approved"
	RepairStatusRejected  = "rejected"
	RepairStatusCompleted = "completed"
)

// Repair severities.
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

// RepairRequest tracks a repair raised against an Apar, usually from a
// failed inspection. Approval is a supervisor/admin action.
type RepairRequest struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	Code         string  `json:"code" gorm:"size:32;uniqueIndex;not null"`
	AparID       string  `json:"apar_id" gorm:"size:32;not null;index"`
	InspectionID *string `json:"inspection_id" gorm:"size:32;index"`

	RequestedBy string `json:"requested_by" gorm:"size:32;not null"`
	Description string `json:"description" gorm:"type:text;not null"`
	Severity    string `json:"severity" gorm:"size:16;not null;default:minor"`

	Status      string     `json:"status" gorm:"size:16;not null;default:pending;index"`
	ReviewedBy  *string    `json:"reviewed_by" gorm:"size:32"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	ReviewNotes string     `json:"review_notes" gorm:"type:text"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Apar *Apar `json:"apar,omitempty" gorm:"foreignKey:AparID"`
}

func (RepairRequest) TableName() string {
	return "repair_requests"
}

// ValidRepairTransitions maps each repair status to its allowed
// successors.
var ValidRepairTransitions = map[string][]string{
	RepairStatusPending:  {RepairStatusApproved, RepairStatusRejected},
	RepairStatusApproved: {RepairStatusCompleted},
}

// CanTransitionRepair reports whether a repair may move from one status
// to another.
func CanTransitionRepair(from, to string) bool {
	for _, s := range ValidRepairTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
