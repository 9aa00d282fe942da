package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserTypeAdmin  = "admin"
	UserTypeClient = "client"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Username       string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"size:120;not null" json:"-"`
	UserType       string    `gorm:"size:20;not null;default:client" json:"user_type"`
	MessageBalance int       `gorm:"not null;default:0" json:"message_balance"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}
