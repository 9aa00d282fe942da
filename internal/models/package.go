package models

import (
	"time"

	"github.com/google/uuid"
)

// MessagePackage is a purchasable bundle of chat messages.
type MessagePackage struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	MessageCount int       `gorm:"not null" json:"message_count"`
	Price        float64   `gorm:"not null" json:"price"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
