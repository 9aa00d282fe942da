package services

import (
	"context"
	"errors"

	"sensus_chatbot_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultLedgerStore implements LedgerStore on top of gorm.
type DefaultLedgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) LedgerStore {
	return &DefaultLedgerStore{db: db}
}

// InTransaction hands fn a store view bound to one database transaction, so
// the row locks taken by the *ForUpdate reads hold until commit.
func (s *DefaultLedgerStore) InTransaction(ctx context.Context, fn func(LedgerStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DefaultLedgerStore{db: tx})
	})
}

func (s *DefaultLedgerStore) CreateTransaction(t *models.Transaction) error {
	return s.db.Create(t).Error
}

func (s *DefaultLedgerStore) GetTransaction(id uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.db.First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *DefaultLedgerStore) GetTransactionForUpdate(id uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *DefaultLedgerStore) GetActivePackage(id uuid.UUID) (*models.MessagePackage, error) {
	var pkg models.MessagePackage
	if err := s.db.First(&pkg, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (s *DefaultLedgerStore) GetPackage(id uuid.UUID) (*models.MessagePackage, error) {
	var pkg models.MessagePackage
	if err := s.db.First(&pkg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (s *DefaultLedgerStore) MarkTransaction(id uuid.UUID, status string) error {
	result := s.db.Model(&models.Transaction{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("transaction not found")
	}
	return nil
}

func (s *DefaultLedgerStore) AddBalanceForUpdate(userID uuid.UUID, delta int) (int, error) {
	var user models.User
	if err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
		return 0, ErrUserNotFound
	}
	newBalance := user.MessageBalance + delta
	if newBalance < 0 {
		return 0, ErrInsufficientBalance
	}
	if err := s.db.Model(&user).Update("message_balance", newBalance).Error; err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (s *DefaultLedgerStore) ListTransactionsByUser(userID uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.Preload("Package").Where("user_id = ?", userID).Order("created_at desc").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *DefaultLedgerStore) ListAllTransactions() ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.Preload("Package").Preload("User").Order("created_at desc").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}
