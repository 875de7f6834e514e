package domain

import (
	"time"

	"github.com/google/uuid"
)

// Phase is an ordered stage of a site's work
type Phase struct {
	BaseModel
	SiteID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_phases_site_id" json:"site_id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	OrderNumber int        `gorm:"not null;default:0" json:"order_number"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid;index:idx_phases_assigned_to" json:"assigned_to,omitempty"`
	Status      WorkStatus `gorm:"type:varchar(32);not null;default:'not_started'" json:"status"`
	Progress    int        `gorm:"not null;default:0" json:"progress"`
	StartDate   *time.Time `gorm:"type:timestamp" json:"start_date,omitempty"`
	DueDate     *time.Time `gorm:"type:timestamp" json:"due_date,omitempty"`
	ApprovedBy  *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `gorm:"type:timestamp" json:"approved_at,omitempty"`
	Budget      float64    `gorm:"default:0" json:"budget"`
	Tasks       []Task     `gorm:"foreignKey:PhaseID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// TableName specifies the table name for Phase
func (Phase) TableName() string {
	return "phases"
}

// PhaseTemplate is an entry in the master list used to seed new sites
type PhaseTemplate struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null;uniqueIndex:uq_phase_templates_name_order" json:"name"`
	OrderNumber int    `gorm:"not null;uniqueIndex:uq_phase_templates_name_order" json:"order_number"`
}

// TableName specifies the table name for PhaseTemplate
func (PhaseTemplate) TableName() string {
	return "phase_templates"
}

// DefaultPhaseTemplates is the construction sequence seeded at startup
var DefaultPhaseTemplates = []PhaseTemplate{
	{Name: "Site Preparation", OrderNumber: 1},
	{Name: "Foundation", OrderNumber: 2},
	{Name: "Structural Frame", OrderNumber: 3},
	{Name: "Roofing", OrderNumber: 4},
	{Name: "Plumbing & Electrical", OrderNumber: 5},
	{Name: "Plastering", OrderNumber: 6},
	{Name: "Flooring & Tiling", OrderNumber: 7},
	{Name: "Painting", OrderNumber: 8},
	{Name: "Finishing & Handover", OrderNumber: 9},
}
