package entity

import "time"

// User roles. Supervisor and admin may record inspections outside a
// schedule window; teknisi may not.
const (
	RoleTeknisi    = "teknisi"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User is an application account.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Username     string     `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:100;not null"`
	Email        string     `json:"email" gorm:"size:128;uniqueIndex"`
	Phone        string     `json:"phone" gorm:"size:20"`
	PasswordHash string     `json:"-" gorm:"size:100;not null"`
	Role         string     `json:"role" gorm:"size:16;not null;default:teknisi"`
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// IsOverrideRole reports whether the role is exempt from schedule-window
// and geofence checks.
func IsOverrideRole(role string) bool {
	return role == RoleSupervisor || role == RoleAdmin
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleTeknisi || role == RoleSupervisor || role == RoleAdmin
}
