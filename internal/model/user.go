package model

import (
	"time"

	"github.com/google/uuid"
)

// Account status constants
const (
	AccountStatusActive  = "ativo"
	AccountStatusBlocked = "bloqueado"
)

// License status constants
const (
	LicenseStatusActive  = "ativa"
	LicenseStatusBlocked = "bloqueada"
	LicenseStatusExpired = "expirada"
)

// Role constants
const (
	RoleRoot      = "root"
	RoleNurse     = "enfermeiro"
	RoleAssistant = "auxiliar"
	RoleManager   = "gestor"
)

// UserAccount is a licensed system user. Accounts are provisioned by root
// with a forced first password change, mutated on every login (session id)
// and on root license actions, and deactivated rather than deleted.
type UserAccount struct {
	UID      uuid.UUID `json:"uid" db:"uid"`
	Email    string    `json:"email" db:"email"`
	Name     string    `json:"name" db:"name"`
	Role     string    `json:"role" db:"role"`
	Registry string    `json:"registry" db:"registry"`
	TenantID string    `json:"tenant_id" db:"tenant_id"`

	Password     string `json:"password,omitempty" db:"-"`
	PasswordHash string `json:"-" db:"password_hash"`

	Status        string     `json:"status" db:"status"`
	LicenseStatus string     `json:"license_status" db:"license_status"`
	LicenseExpiry *time.Time `json:"license_expiry" db:"license_expiry"`

	CurrentSessionID     string     `json:"-" db:"current_session_id"`
	MustChangePassword   bool       `json:"must_change_password" db:"must_change_password"`
	LastPasswordChangeAt *time.Time `json:"last_password_change_at" db:"last_password_change_at"`
	LastLoginAt          *time.Time `json:"last_login_at" db:"last_login_at"`

	SidebarModules JSONMap `json:"sidebar_modules" db:"sidebar_modules"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the account carries the superuser role. Root is
// immune to license expiry, block flags, forced password change and
// single-session enforcement.
func (u *UserAccount) IsRoot() bool {
	return u != nil && u.Role == RoleRoot
}

// CreateAccountRequest provisions a user under a tenant unit. Only root
// may call it; the account starts with must_change_password set.
type CreateAccountRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Name        string  `json:"name" binding:"required"`
	Password    string  `json:"password" binding:"required,min=6"`
	Role        string  `json:"role" binding:"required,oneof=root enfermeiro auxiliar gestor"`
	Registry    string  `json:"registry"`
	TenantID    string  `json:"tenant_id" binding:"required"`
	LicenseDays int     `json:"license_days"`
	Sidebar     JSONMap `json:"sidebar_modules"`
}

// RenewLicenseRequest extends an account license by a number of days and
// reactivates it.
type RenewLicenseRequest struct {
	Days int `json:"days" binding:"required,min=1"`
}

// AccountFilters narrows account listings.
type AccountFilters struct {
	TenantID string `json:"tenant_id" form:"tenant_id"`
	Role     string `json:"role" form:"role"`
	Status   string `json:"status" form:"status"`
}
