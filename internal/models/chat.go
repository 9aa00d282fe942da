package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one billed chatbot exchange. Rows are written only as the
// side effect of a successful debit and are never mutated afterwards.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
