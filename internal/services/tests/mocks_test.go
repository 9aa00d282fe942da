package services_test

import (
	"context"
	"time"

	"sensus_chatbot_go_backend/internal/models"
	"sensus_chatbot_go_backend/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserStore) GetUserByID(id uuid.UUID) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) ListUsers() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserStore) UpdateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserStore) DeleteUser(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserStore) AddBalance(id uuid.UUID, delta int) (int, error) {
	args := m.Called(id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockUserStore) SetBalance(id uuid.UUID, balance int) (int, error) {
	args := m.Called(id, balance)
	return args.Int(0), args.Error(1)
}

// MockLedgerStore runs InTransaction callbacks against itself, so a test can
// script the locked reads and writes that happen inside the transaction.
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) InTransaction(ctx context.Context, fn func(services.LedgerStore) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

func (m *MockLedgerStore) CreateTransaction(t *models.Transaction) error {
	args := m.Called(t)
	return args.Error(0)
}

func (m *MockLedgerStore) GetTransaction(id uuid.UUID) (*models.Transaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerStore) GetTransactionForUpdate(id uuid.UUID) (*models.Transaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerStore) GetActivePackage(id uuid.UUID) (*models.MessagePackage, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessagePackage), args.Error(1)
}

func (m *MockLedgerStore) GetPackage(id uuid.UUID) (*models.MessagePackage, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessagePackage), args.Error(1)
}

func (m *MockLedgerStore) MarkTransaction(id uuid.UUID, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockLedgerStore) AddBalanceForUpdate(userID uuid.UUID, delta int) (int, error) {
	args := m.Called(userID, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerStore) ListTransactionsByUser(userID uuid.UUID) ([]models.Transaction, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockLedgerStore) ListAllTransactions() ([]models.Transaction, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

type MockUsageStore struct {
	mock.Mock
}

func (m *MockUsageStore) GetUser(id uuid.UUID) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsageStore) ChargeMessage(userID uuid.UUID, question, answer string) (int, error) {
	args := m.Called(userID, question, answer)
	return args.Int(0), args.Error(1)
}

func (m *MockUsageStore) ListMessagesByUser(userID uuid.UUID, page, perPage int) ([]models.ChatMessage, int64, error) {
	args := m.Called(userID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.ChatMessage), args.Get(1).(int64), args.Error(2)
}

func (m *MockUsageStore) ListAllMessages(page, perPage int) ([]models.ChatMessage, int64, error) {
	args := m.Called(page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.ChatMessage), args.Get(1).(int64), args.Error(2)
}

func (m *MockUsageStore) CountMessagesByUser(userID uuid.UUID) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAnswerProvider struct {
	mock.Mock
}

func (m *MockAnswerProvider) GenerateAnswer(ctx context.Context, question, domainContext string) (string, error) {
	args := m.Called(ctx, question, domainContext)
	return args.String(0), args.Error(1)
}

type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Set(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	args := m.Called(ctx, token, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenStore) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
