package entity

import "time"

// Apar location types. Fixed units carry coordinates and a geofence
// radius; mobile units are never geofenced.
const (
	AparLocationFixed  = "fixed"
	AparLocationMobile = "mobile"
)

// Apar statuses.
const (
	AparStatusActive   = "active"
	AparStatusInactive = "inactive"
	AparStatusExpired  = "expired"
	AparStatusInRepair = "in_repair"
)

// Apar is a fire extinguisher unit under inspection management.
type Apar struct {
	ID           string `json:"id" gorm:"primaryKey;size:32"`
	Code         string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	QRCode       string `json:"qr_code" gorm:"size:64;uniqueIndex;not null"`
	Name         string `json:"name" gorm:"size:128;not null"`
	Location     string `json:"location" gorm:"size:200"`
	LocationType string `json:"location_type" gorm:"size:16;not null;default:fixed"`

	// Geofence. Only meaningful for fixed units with coordinates.
	Latitude    *float64 `json:"latitude" gorm:"type:decimal(10,7)"`
	Longitude   *float64 `json:"longitude" gorm:"type:decimal(10,7)"`
	ValidRadius float64  `json:"valid_radius" gorm:"not null;default:50"` // metres

	Type            string     `json:"type" gorm:"size:32"` // powder/co2/foam/water
	CapacityKg      float64    `json:"capacity_kg" gorm:"type:decimal(6,2)"`
	ManufactureDate *time.Time `json:"manufacture_date" gorm:"type:date"`
	ExpiryDate      *time.Time `json:"expiry_date" gorm:"type:date"`

	Status    string     `json:"status" gorm:"size:16;not null;default:active;index"`
	CreatedBy string     `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

func (Apar) TableName() string {
	return "apars"
}

// HasGeofence reports whether inspections of this unit are constrained
// to a radius around its coordinates.
func (a *Apar) HasGeofence() bool {
	return a.LocationType == AparLocationFixed && a.Latitude != nil && a.Longitude != nil
}
