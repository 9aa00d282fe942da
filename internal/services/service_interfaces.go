package services

import (
	"context"
	"time"

	"sensus_chatbot_go_backend/internal/models"

	"github.com/google/uuid"
)

// AnswerProvider is the external answer-generation collaborator. The
// implementation wraps the Gemini client; tests use a mock.
type AnswerProvider interface {
	GenerateAnswer(ctx context.Context, question, domainContext string) (string, error)
}

// TokenStore is an opaque keyed store (token -> user id) with TTL eviction,
// used for login sessions and password-reset tokens.
type TokenStore interface {
	Set(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	Get(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}

// UserStore is the persistence interface for accounts.
type UserStore interface {
	CreateUser(user *models.User) error
	GetUserByID(id uuid.UUID) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers() ([]models.User, error)
	UpdateUser(user *models.User) error
	DeleteUser(id uuid.UUID) error
	// AddBalance atomically applies a signed delta to the account balance and
	// returns the new balance. A delta that would take the balance negative
	// fails with ErrInsufficientBalance and leaves the row untouched.
	AddBalance(id uuid.UUID, delta int) (int, error)
	// SetBalance atomically overwrites the balance. UpdateUser never writes
	// the balance column; absolute edits come through here.
	SetBalance(id uuid.UUID, balance int) (int, error)
}

// PackageStore is the persistence interface for the package catalog.
type PackageStore interface {
	CreatePackage(pkg *models.MessagePackage) error
	GetPackage(id uuid.UUID) (*models.MessagePackage, error)
	ListActivePackages() ([]models.MessagePackage, error)
	ListAllPackages() ([]models.MessagePackage, error)
	UpdatePackage(pkg *models.MessagePackage) error
	DeactivatePackage(id uuid.UUID) error
}

// LedgerStore is the persistence interface for the transaction ledger.
// InTransaction runs fn against a store view bound to one serializable
// database transaction; the *ForUpdate reads take row locks inside it.
type LedgerStore interface {
	InTransaction(ctx context.Context, fn func(LedgerStore) error) error
	CreateTransaction(t *models.Transaction) error
	GetTransaction(id uuid.UUID) (*models.Transaction, error)
	GetTransactionForUpdate(id uuid.UUID) (*models.Transaction, error)
	GetActivePackage(id uuid.UUID) (*models.MessagePackage, error)
	GetPackage(id uuid.UUID) (*models.MessagePackage, error)
	MarkTransaction(id uuid.UUID, status string) error
	AddBalanceForUpdate(userID uuid.UUID, delta int) (int, error)
	ListTransactionsByUser(userID uuid.UUID) ([]models.Transaction, error)
	ListAllTransactions() ([]models.Transaction, error)
}

// UsageStore is the persistence interface for billed chat exchanges.
type UsageStore interface {
	GetUser(id uuid.UUID) (*models.User, error)
	// ChargeMessage persists one usage record and debits exactly one message
	// from the balance as a single atomic unit, returning the new balance.
	ChargeMessage(userID uuid.UUID, question, answer string) (int, error)
	ListMessagesByUser(userID uuid.UUID, page, perPage int) ([]models.ChatMessage, int64, error)
	ListAllMessages(page, perPage int) ([]models.ChatMessage, int64, error)
	CountMessagesByUser(userID uuid.UUID) (int64, error)
}
