package entity

import "time"

// Notification categories.
const (
	NotifyCategoryInspection = "inspection"
	NotifyCategoryRepair     = "repair"
	NotifyCategorySchedule   = "schedule"
	NotifyCategoryApar       = "apar"
)

// Notification is an in-app message. Empty UserID means broadcast.
type Notification struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	UserID   string `json:"user_id" gorm:"size:32;index"`
	Title    string `json:"title" gorm:"size:200;not null"`
	Body     string `json:"body" gorm:"type:text"`
	Category string `json:"category" gorm:"size:32;not null"`

	EntityType string `json:"entity_type" gorm:"size:32"`
	EntityID   string `json:"entity_id" gorm:"size:32"`

	IsRead    bool       `json:"is_read" gorm:"not null;default:false;index"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
