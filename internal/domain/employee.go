package domain

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"site-tracker-api/internal/util"
)

// Role is an employee's role, stored lowercase
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleWorker     Role = "worker"
	RoleEngineer   Role = "engineer"
	// RoleEmployee is kept for rows created before roles were split
	RoleEmployee Role = "employee"
)

// ParseRole lowercases and validates a role
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch r {
	case RoleAdmin, RoleSupervisor, RoleWorker, RoleEngineer, RoleEmployee:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// EmployeeStatus is Active or Inactive
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "Active"
	EmployeeInactive EmployeeStatus = "Inactive"
)

// ParseEmployeeStatus accepts any casing
func ParseEmployeeStatus(raw string) (EmployeeStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active", "":
		return EmployeeActive, nil
	case "inactive":
		return EmployeeInactive, nil
	}
	return "", fmt.Errorf("unknown employee status %q", raw)
}

// CredentialScheme tags how Credential.Secret must be checked
type CredentialScheme string

const (
	CredentialBcrypt    CredentialScheme = "bcrypt"
	CredentialPlaintext CredentialScheme = "plaintext"
)

// Credential is a login secret together with the scheme it was stored under.
// Plaintext rows only exist for accounts imported from the legacy schema and are
// rehashed on their first successful login.
type Credential struct {
	Scheme CredentialScheme `gorm:"column:credential_scheme;type:varchar(20);not null;default:'bcrypt'"`
	Secret string           `gorm:"column:credential_secret;type:text;not null"`
}

// NewBcryptCredential hashes plain with the default cost
func NewBcryptCredential(plain string) (Credential, error) {
	hash, err := util.HashPassword(plain, util.DefaultBcryptCost)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to hash password: %w", err)
	}
	return Credential{Scheme: CredentialBcrypt, Secret: hash}, nil
}

// Verify checks plain against the stored secret according to the scheme
func (c Credential) Verify(plain string) bool {
	switch c.Scheme {
	case CredentialBcrypt:
		return util.VerifyPassword(c.Secret, plain)
	case CredentialPlaintext:
		return subtle.ConstantTimeCompare([]byte(c.Secret), []byte(plain)) == 1
	}
	return false
}

// NeedsRehash is true for legacy schemes
func (c Credential) NeedsRehash() bool {
	return c.Scheme != CredentialBcrypt
}

// Employee is a person who can log in and be assigned work
type Employee struct {
	BaseModel
	Name            string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone           string         `gorm:"type:varchar(50);not null;uniqueIndex:uq_employees_phone" json:"phone"`
	Email           *string        `gorm:"type:varchar(255)" json:"email,omitempty"`
	Role            Role           `gorm:"type:varchar(20);not null;default:'worker';index:idx_employees_role" json:"role"`
	Status          EmployeeStatus `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	ProfileImageURL *string        `gorm:"type:text" json:"profile_image_url,omitempty"`
	Credential      Credential     `gorm:"embedded" json:"-"`
}

// TableName specifies the table name for Employee
func (Employee) TableName() string {
	return "employees"
}

// IsAdmin reports whether the employee holds the admin role
func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// IsActive reports whether the employee may act in the system
func (e *Employee) IsActive() bool {
	return e.Status == EmployeeActive
}
