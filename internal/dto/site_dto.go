package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateSiteRequest represents the request to create a new site
// startDate must be before or equal to endDate if both are provided.
// seedPhases copies the master phase templates into the new site.
type CreateSiteRequest struct {
	Name        string     `json:"name" binding:"required,min=2,max=255" example:"Riverside Duplex"`
	Address     string     `json:"address" binding:"max=1000" example:"12 Harbor Road"`
	ClientName  string     `json:"clientName" binding:"max=255" example:"A. Mensah"`
	ClientPhone string     `json:"clientPhone" binding:"max=50" example:"+233201234567"`
	ClientEmail string     `json:"clientEmail" binding:"omitempty,email" example:"client@example.com"`
	Budget      float64    `json:"budget" binding:"gte=0" example:"250000"`
	StartDate   *time.Time `json:"startDate,omitempty" example:"2024-01-01T00:00:00Z"`
	EndDate     *time.Time `json:"endDate,omitempty" example:"2024-12-31T00:00:00Z"`
	Status      string     `json:"status,omitempty" example:"planned"`
	SeedPhases  bool       `json:"seedPhases" example:"true"`
}

// UpdateSiteRequest represents the request to update a site. All fields are optional.
type UpdateSiteRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=2,max=255"`
	Address     *string    `json:"address" binding:"omitempty,max=1000"`
	ClientName  *string    `json:"clientName" binding:"omitempty,max=255"`
	ClientPhone *string    `json:"clientPhone" binding:"omitempty,max=50"`
	ClientEmail *string    `json:"clientEmail" binding:"omitempty,email"`
	Budget      *float64   `json:"budget" binding:"omitempty,gte=0"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Status      *string    `json:"status,omitempty"`
}

// SiteResponse represents a site
type SiteResponse struct {
	ID          uuid.UUID  `json:"id" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	ClientName  string     `json:"clientName"`
	ClientPhone string     `json:"clientPhone"`
	ClientEmail string     `json:"clientEmail"`
	Budget      float64    `json:"budget"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// SiteDetailResponse is a site with its ordered phases
type SiteDetailResponse struct {
	SiteResponse
	Phases []PhaseResponse `json:"phases"`
}

// PhaseTemplateResponse is one entry of the master phase list
type PhaseTemplateResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	OrderNumber int       `json:"orderNumber"`
}
