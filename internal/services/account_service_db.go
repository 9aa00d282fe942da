package services

import (
	"errors"

	"sensus_chatbot_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultUserStore implements UserStore on top of gorm.
type DefaultUserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &DefaultUserStore{db: db}
}

// CreateUser maps a unique-constraint violation back onto the duplicate
// sentinels, covering the window where a concurrent registration slips past
// the service-level existence checks.
func (s *DefaultUserStore) CreateUser(user *models.User) error {
	err := s.db.Create(user).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if _, lookupErr := s.GetUserByUsername(user.Username); lookupErr == nil {
			return ErrUsernameTaken
		}
		return ErrEmailTaken
	}
	return err
}

func (s *DefaultUserStore) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DefaultUserStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DefaultUserStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DefaultUserStore) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at desc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser persists profile fields only. The balance column is excluded
// from the write so a stale in-memory balance cannot overwrite a concurrent
// charge; balance changes go through AddBalance and SetBalance.
func (s *DefaultUserStore) UpdateUser(user *models.User) error {
	return s.db.Omit("message_balance").Save(user).Error
}

// DeleteUser removes the account only when no ledger or usage rows reference
// it; otherwise the delete would break referential integrity and the caller
// gets ErrUserHasRecords.
func (s *DefaultUserStore) DeleteUser(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Transaction{}).Where("user_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserHasRecords
		}
		if err := tx.Model(&models.ChatMessage{}).Where("user_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserHasRecords
		}
		result := tx.Delete(&models.User{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// SetBalance overwrites the balance under the same row lock AddBalance
// takes, so an absolute admin edit serializes with in-flight charges.
func (s *DefaultUserStore) SetBalance(id uuid.UUID, balance int) (int, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error; err != nil {
			return ErrUserNotFound
		}
		return tx.Model(&user).Update("message_balance", balance).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// AddBalance applies the delta under a row lock so concurrent debits cannot
// both observe the same starting balance.
func (s *DefaultUserStore) AddBalance(id uuid.UUID, delta int) (int, error) {
	var newBalance int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error; err != nil {
			return ErrUserNotFound
		}
		newBalance = user.MessageBalance + delta
		if newBalance < 0 {
			return ErrInsufficientBalance
		}
		return tx.Model(&user).Update("message_balance", newBalance).Error
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}
