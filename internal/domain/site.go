package domain

import (
	"time"
)

// SiteStatus is the lifecycle of a construction site
type SiteStatus string

const (
	SiteStatusPlanned   SiteStatus = "planned"
	SiteStatusActive    SiteStatus = "active"
	SiteStatusOnHold    SiteStatus = "on_hold"
	SiteStatusCompleted SiteStatus = "completed"
)

func (s SiteStatus) IsValid() bool {
	switch s {
	case SiteStatusPlanned, SiteStatusActive, SiteStatusOnHold, SiteStatusCompleted:
		return true
	}
	return false
}

// Site represents a construction project
type Site struct {
	BaseModel
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Address     string     `gorm:"type:text" json:"address"`
	ClientName  string     `gorm:"type:varchar(255)" json:"client_name"`
	ClientPhone string     `gorm:"type:varchar(50)" json:"client_phone"`
	ClientEmail string     `gorm:"type:varchar(255)" json:"client_email"`
	Budget      float64    `gorm:"default:0" json:"budget"`
	StartDate   *time.Time `gorm:"type:timestamp" json:"start_date,omitempty"`
	EndDate     *time.Time `gorm:"type:timestamp" json:"end_date,omitempty"`
	Status      SiteStatus `gorm:"type:varchar(20);not null;default:'planned';index:idx_sites_status" json:"status"`
	Phases      []Phase    `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE" json:"phases,omitempty"`
}

// TableName specifies the table name for Site
func (Site) TableName() string {
	return "sites"
}
