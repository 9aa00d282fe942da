package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"sensus_chatbot_go_backend/internal/models"

	"github.com/rs/zerolog/log"
)

// ResetService manages password-reset tokens. Tokens live in the keyed
// token store with TTL eviction, so they survive process restarts and
// expire without any in-process bookkeeping.
type ResetService struct {
	users    UserStore
	accounts *AccountService
	tokens   TokenStore
	ttl      time.Duration
}

func NewResetService(users UserStore, accounts *AccountService, tokens TokenStore, ttl time.Duration) *ResetService {
	return &ResetService{users: users, accounts: accounts, tokens: tokens, ttl: ttl}
}

// RequestReset issues a reset token for the account behind email. Unknown
// emails produce no token and no error, so the endpoint cannot be used to
// probe which emails exist.
func (s *ResetService) RequestReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return "", nil
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.tokens.Set(ctx, token, user.ID, s.ttl); err != nil {
		return "", err
	}
	log.Info().Str("user_id", user.ID.String()).Msg("Issued password reset token")
	return token, nil
}

// ResetPassword consumes the token and sets the new password. Used tokens
// are deleted so they cannot be replayed.
func (s *ResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokens.Get(ctx, token)
	if err != nil {
		return ErrResetTokenInvalid
	}
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return ErrResetTokenInvalid
	}

	if err := s.accounts.SetPassword(user.ID, newPassword); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	return s.tokens.Delete(ctx, token)
}

// ValidateToken reports whether the token is usable and for which email.
func (s *ResetService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Get(ctx, token)
	if err != nil {
		return nil, ErrResetTokenInvalid
	}
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, ErrResetTokenInvalid
	}
	return user, nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
