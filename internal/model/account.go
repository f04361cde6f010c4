package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role constants for Account.Role. Dashboard routing and every policy check
// key off these exact strings.
const (
	RoleAdmin            = "Admin"
	RoleZoneManager      = "Zone Manager"
	RoleTechnicalManager = "Technical Manager"
	RoleAreaSalesManager = "Area Sales Manager"
	RoleCustomerSupport  = "Customer Support"
	RoleFieldSales       = "Field Sales"
	RolePartner          = "Partner"
)

// Roles lists every valid role value.
var Roles = []string{
	RoleAdmin,
	RoleZoneManager,
	RoleTechnicalManager,
	RoleAreaSalesManager,
	RoleCustomerSupport,
	RoleFieldSales,
	RolePartner,
}

// ValidRole reports whether role is one of the known role values.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Account represents a user of any role, with its many-to-many geographic
// assignments (states/districts/offices a field role is responsible for).
type Account struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username   string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	FullName   string    `gorm:"type:varchar(150)" json:"full_name"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone      string    `gorm:"type:varchar(15)" json:"phone"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"`
	Role       string    `gorm:"type:varchar(50);not null;index" json:"role"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	IsVerified bool      `gorm:"default:false" json:"is_verified"`

	States    []State    `gorm:"many2many:account_states;" json:"states,omitempty"`
	Districts []District `gorm:"many2many:account_districts;" json:"districts,omitempty"`
	Offices   []Office   `gorm:"many2many:account_offices;" json:"offices,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// DisplayName prefers the full name, falling back to the username.
func (a *Account) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Username
}

// DashboardPath maps the account's role to its dashboard route.
func (a *Account) DashboardPath() string {
	switch a.Role {
	case RoleAdmin:
		return "/admin-dashboard"
	case RoleZoneManager:
		return "/zone-manager-dashboard"
	case RoleTechnicalManager:
		return "/technical-manager-dashboard"
	case RoleAreaSalesManager:
		return "/area-sales-dashboard"
	case RoleCustomerSupport:
		return "/customer-support-dashboard"
	case RoleFieldSales:
		return "/field-sales-dashboard"
	case RolePartner:
		return "/partner-dashboard"
	default:
		return "/"
	}
}

// RefreshToken stores long-lived tokens allowing accounts to request new
// access tokens.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index" json:"account_id"`
	Account   Account   `gorm:"foreignKey:AccountID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
