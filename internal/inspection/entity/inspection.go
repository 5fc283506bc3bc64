package entity

import "time"

// Inspection conditions.
const (
	ConditionGood        = "good"
	ConditionDamaged     = "damaged"
	ConditionNeedsRefill = "needs_refill"
)

// Inspection is one recorded inspection of an Apar. Rows are immutable
// after creation except for administrative edit/delete.
type Inspection struct {
	ID         string  `json:"id" gorm:"primaryKey;size:32"`
	Code       string  `json:"code" gorm:"size:32;uniqueIndex;not null"`
	AparID     string  `json:"apar_id" gorm:"size:32;not null;index"`
	ScheduleID *string `json:"schedule_id" gorm:"size:32;index"` // nil for ad-hoc override inspections
	UserID     string  `json:"user_id" gorm:"size:32;not null;index"`

	Condition  string `json:"condition" gorm:"size:20;not null"`
	PressureOK bool   `json:"pressure_ok" gorm:"not null;default:true"`
	HoseOK     bool   `json:"hose_ok" gorm:"not null;default:true"`
	PinOK      bool   `json:"pin_ok" gorm:"not null;default:true"`
	SealOK     bool   `json:"seal_ok" gorm:"not null;default:true"`
	Notes      string `json:"notes" gorm:"type:text"`

	PhotoURL  string `json:"photo_url" gorm:"size:500;not null"`
	SelfieURL string `json:"selfie_url" gorm:"size:500;not null"`

	// Where the submission was made from, as reported by the client.
	Latitude  *float64 `json:"latitude" gorm:"type:decimal(10,7)"`
	Longitude *float64 `json:"longitude" gorm:"type:decimal(10,7)"`

	InspectedAt time.Time `json:"inspected_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	Apar *Apar `json:"apar,omitempty" gorm:"foreignKey:AparID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Inspection) TableName() string {
	return "inspections"
}

// ValidCondition reports whether c is a known inspection condition.
func ValidCondition(c string) bool {
	return c == ConditionGood || c == ConditionDamaged || c == ConditionNeedsRefill
}
