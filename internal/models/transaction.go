package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
)

// Transaction records one purchase attempt and its settlement outcome.
// Amount is a snapshot of the package price at creation time and never
// changes afterwards, so later catalog edits cannot rewrite settled history.
type Transaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	PackageID uuid.UUID       `gorm:"type:uuid;index;not null" json:"package_id"`
	Amount    float64         `gorm:"not null" json:"amount"`
	Status    string          `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	User      *User           `gorm:"foreignKey:UserID" json:"-"`
	Package   *MessagePackage `gorm:"foreignKey:PackageID" json:"-"`
}
