package models

import (
	"time"
)

// Auth provider values for User.AuthProvider.
const (
	ProviderManual = "manual"
	ProviderGoogle = "google"
	ProviderBoth   = "both"
)

// Role values. Only "is the resource owner" matters to the current
// authorization rules; moderator/admin are reserved.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type SocialLinks struct {
	Twitter  string `json:"twitter"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:50;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"` // stored lowercased
	Password string `gorm:"" json:"-"`                         // bcrypt hash, empty for pure OAuth accounts

	GoogleID     string `gorm:"index" json:"google_id"` // provider subject id, unique when present
	AuthProvider string `gorm:"size:20;default:'manual';not null" json:"auth_provider"`

	Role       string `gorm:"size:20;default:'user';not null" json:"role"`
	IsVerified bool   `gorm:"default:false" json:"is_verified"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`

	// Profile
	Avatar      string      `json:"avatar"`
	Bio         string      `gorm:"size:500" json:"bio"`
	Website     string      `json:"website"`
	SocialLinks SocialLinks `gorm:"embedded;embeddedPrefix:social_" json:"social_links"`

	// One-time codes for email verification and password reset
	VerifyCode    string     `gorm:"size:20" json:"-"`
	VerifyExpires *time.Time `json:"-"`
	ResetCode     string     `gorm:"size:20" json:"-"`
	ResetExpires  *time.Time `json:"-"`

	// Login bookkeeping, updated on every successful authentication
	LastLogin  *time.Time `json:"last_login"`
	LoginCount int        `gorm:"default:0" json:"login_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// No DeletedAt, accounts are never hard-deleted here
}

// HasPassword reports whether the account supports password login at all.
func (u *User) HasPassword() bool {
	return u.Password != ""
}
