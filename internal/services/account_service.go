package services

import (
	"fmt"
	"strings"

	"sensus_chatbot_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles registration, authentication and balance changes.
type AccountService struct {
	store UserStore
}

func NewAccountService(store UserStore) *AccountService {
	return &AccountService{store: store}
}

// Register creates a new client account. Passwords are stored as bcrypt
// hashes only; the plaintext never reaches the store or the logs.
func (s *AccountService) Register(username, email, password string) (*models.User, error) {
	if _, err := s.store.GetUserByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}
	if _, err := s.store.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		UserType:     models.UserTypeClient,
		IsActive:     true,
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks the credentials against the stored hash. Inactive
// accounts fail the same way as bad credentials.
func (s *AccountService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Credit adds amount messages to the account balance.
func (s *AccountService) Credit(id uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	return s.store.AddBalance(id, amount)
}

// Debit removes amount messages, failing with ErrInsufficientBalance if the
// balance would go negative.
func (s *AccountService) Debit(id uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	return s.store.AddBalance(id, -amount)
}

func (s *AccountService) GetUser(id uuid.UUID) (*models.User, error) {
	return s.store.GetUserByID(id)
}

func (s *AccountService) ListUsers() ([]models.User, error) {
	return s.store.ListUsers()
}

// UpdateUser applies an admin edit. Empty fields are left unchanged; a
// non-empty password is re-hashed. A balance edit goes through the locked
// SetBalance path instead of the row write, so it cannot clobber an
// in-flight charge.
func (s *AccountService) UpdateUser(id uuid.UUID, username, email, userType, password string, messageBalance *int, isActive *bool) (*models.User, error) {
	if messageBalance != nil && *messageBalance < 0 {
		return nil, fmt.Errorf("message balance cannot be negative")
	}

	user, err := s.store.GetUserByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if userType != "" {
		user.UserType = userType
	}
	if isActive != nil {
		user.IsActive = *isActive
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if err := s.store.UpdateUser(user); err != nil {
		return nil, err
	}
	if messageBalance != nil {
		newBalance, err := s.store.SetBalance(id, *messageBalance)
		if err != nil {
			return nil, err
		}
		user.MessageBalance = newBalance
	}
	return user, nil
}

// DeleteUser hard-deletes an account. The store refuses when ledger or usage
// rows still reference it; the supported path for such accounts is
// deactivation via UpdateUser.
func (s *AccountService) DeleteUser(id uuid.UUID) error {
	return s.store.DeleteUser(id)
}

// RegisterOAuthUser finds or creates an account for a Google login. First
// logins get the free-tier grant and a unique username derived from the
// email local part.
func (s *AccountService) RegisterOAuthUser(email, name string, freeTierGrant int) (*models.User, bool, error) {
	if user, err := s.store.GetUserByEmail(email); err == nil {
		return user, false, nil
	}

	base := strings.SplitN(email, "@", 2)[0]
	username := base
	for i := 1; ; i++ {
		if _, err := s.store.GetUserByUsername(username); err != nil {
			break
		}
		username = fmt.Sprintf("%s%d", base, i)
	}

	// The account is OAuth-only; seed an unguessable password.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		PasswordHash:   string(hash),
		UserType:       models.UserTypeClient,
		MessageBalance: freeTierGrant,
		IsActive:       true,
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, false, err
	}
	log.Info().Str("username", username).Msg("Created account on first OAuth login")
	return user, true, nil
}

// ChangePassword verifies the current password before setting the new one.
func (s *AccountService) ChangePassword(id uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.store.GetUserByID(id)
	if err != nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}
	return s.SetPassword(id, newPassword)
}

// SetPassword re-hashes and stores a new password for the account.
func (s *AccountService) SetPassword(id uuid.UUID, password string) error {
	user, err := s.store.GetUserByID(id)
	if err != nil {
		return ErrUserNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.store.UpdateUser(user)
}

// EnsureAdmin seeds the bootstrap admin account if it does not exist yet.
func (s *AccountService) EnsureAdmin(username, email, password string, seedBalance int) error {
	if _, err := s.store.GetUserByUsername(username); err == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.User{
		Username:       username,
		Email:          email,
		PasswordHash:   string(hash),
		UserType:       models.UserTypeAdmin,
		MessageBalance: seedBalance,
		IsActive:       true,
	}
	if err := s.store.CreateUser(admin); err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("Seeded admin account")
	return nil
}
