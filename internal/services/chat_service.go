package services

import (
	"context"
	"time"

	"sensus_chatbot_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FallbackAnswer is returned when the answer provider fails. A failed
// generation is never charged.
const FallbackAnswer = "Desculpe, ocorreu um erro ao processar sua pergunta. " +
	"Tente novamente ou entre em contato com nosso suporte: (47) 3029-2866"

// ChatResult is the outcome of one chatbot exchange.
type ChatResult struct {
	Question         string
	Answer           string
	RemainingBalance int
	// Degraded marks a fallback answer produced after a provider failure;
	// no usage record was written and nothing was debited.
	Degraded bool
}

// ChatService is the consumption meter: each successful exchange records one
// usage row and debits exactly one message from the balance, as a single
// atomic unit.
type ChatService struct {
	store         UsageStore
	provider      AnswerProvider
	answerTimeout time.Duration
}

func NewChatService(store UsageStore, provider AnswerProvider, answerTimeout time.Duration) *ChatService {
	return &ChatService{
		store:         store,
		provider:      provider,
		answerTimeout: answerTimeout,
	}
}

// Consume answers one question for the account. The balance is checked
// before the provider call so requests that cannot be billed never spend
// provider capacity; the charge itself re-checks under a row lock.
func (s *ChatService) Consume(ctx context.Context, userID uuid.UUID, question string) (*ChatResult, error) {
	user, err := s.store.GetUser(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.MessageBalance <= 0 {
		return nil, ErrInsufficientBalance
	}

	genCtx, cancel := context.WithTimeout(ctx, s.answerTimeout)
	defer cancel()

	answer, err := s.provider.GenerateAnswer(genCtx, question, DomainKnowledge())
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Answer provider failed, returning fallback")
		return &ChatResult{
			Question:         question,
			Answer:           FallbackAnswer,
			RemainingBalance: user.MessageBalance,
			Degraded:         true,
		}, nil
	}

	remaining, err := s.store.ChargeMessage(userID, question, answer)
	if err != nil {
		return nil, err
	}

	return &ChatResult{
		Question:         question,
		Answer:           answer,
		RemainingBalance: remaining,
	}, nil
}

// History returns the caller's own exchanges, newest first.
func (s *ChatService) History(userID uuid.UUID, page, perPage int) ([]models.ChatMessage, int64, error) {
	return s.store.ListMessagesByUser(userID, page, perPage)
}

// AdminHistory returns all exchanges across accounts, newest first.
func (s *ChatService) AdminHistory(page, perPage int) ([]models.ChatMessage, int64, error) {
	return s.store.ListAllMessages(page, perPage)
}

// Stats reports total usage and the remaining balance for one account.
func (s *ChatService) Stats(userID uuid.UUID) (totalMessages int64, remainingBalance int, userSince time.Time, err error) {
	user, err := s.store.GetUser(userID)
	if err != nil {
		return 0, 0, time.Time{}, ErrUserNotFound
	}
	total, err := s.store.CountMessagesByUser(userID)
	if err != nil {
		return 0, 0, time.Time{}, err
	}
	return total, user.MessageBalance, user.CreatedAt, nil
}
