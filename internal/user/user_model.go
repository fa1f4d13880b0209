package user

import (
	"time"

	"gorm.io/gorm"
)

// User is the authenticated identity every domain operation acts on behalf of.
type User struct {
	gorm.Model
	Name            string     `json:"name" gorm:"not null"`
	Email           string     `json:"email" gorm:"uniqueIndex;not null"`
	Password        string     `json:"-" gorm:"not null"`
	Avatar          string     `json:"avatar,omitempty"`
	Position        string     `json:"position,omitempty"`
	IsAdmin         bool       `json:"is_admin" gorm:"default:false"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
}

// EmailVerified reports whether the user has confirmed their email address.
func (u *User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}
