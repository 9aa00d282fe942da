package services

import (
	"sensus_chatbot_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultUsageStore implements UsageStore on top of gorm.
type DefaultUsageStore struct {
	db *gorm.DB
}

func NewUsageStore(db *gorm.DB) UsageStore {
	return &DefaultUsageStore{db: db}
}

func (s *DefaultUsageStore) GetUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ChargeMessage writes the usage record and debits one message inside a
// single database transaction. The account row is locked and the balance
// re-checked there, so two concurrent charges against a balance of one
// cannot both go through.
func (s *DefaultUsageStore) ChargeMessage(userID uuid.UUID, question, answer string) (int, error) {
	var remaining int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
			return ErrUserNotFound
		}
		if user.MessageBalance <= 0 {
			return ErrInsufficientBalance
		}
		record := &models.ChatMessage{
			UserID:   userID,
			Question: question,
			Answer:   answer,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		remaining = user.MessageBalance - 1
		return tx.Model(&user).Update("message_balance", remaining).Error
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (s *DefaultUsageStore) ListMessagesByUser(userID uuid.UUID, page, perPage int) ([]models.ChatMessage, int64, error) {
	var total int64
	if err := s.db.Model(&models.ChatMessage{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var messages []models.ChatMessage
	err := s.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (s *DefaultUsageStore) ListAllMessages(page, perPage int) ([]models.ChatMessage, int64, error) {
	var total int64
	if err := s.db.Model(&models.ChatMessage{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var messages []models.ChatMessage
	err := s.db.Order("created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (s *DefaultUsageStore) CountMessagesByUser(userID uuid.UUID) (int64, error) {
	var total int64
	err := s.db.Model(&models.ChatMessage{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}
