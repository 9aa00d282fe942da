package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sensus_chatbot_go_backend/internal/models"
	"sensus_chatbot_go_backend/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestConsume(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	question := "O que é o TOTVS Datasul?"

	userWithBalance := func(balance int) *models.User {
		return &models.User{
			ID:             userID,
			Username:       "cliente",
			MessageBalance: balance,
			IsActive:       true,
		}
	}

	t.Run("Successful exchange charges exactly one message", func(t *testing.T) {
		// Setup
		mockUsage := new(MockUsageStore)
		mockProvider := new(MockAnswerProvider)
		chatService := services.NewChatService(mockUsage, mockProvider, 30*time.Second)

		// Expectations
		mockUsage.On("GetUser", userID).Return(userWithBalance(5), nil).Once()
		mockProvider.On("GenerateAnswer", mock.Anything, question, mock.AnythingOfType("string")).
			Return("O Datasul é um ERP da TOTVS.", nil).Once()
		mockUsage.On("ChargeMessage", userID, question, "O Datasul é um ERP da TOTVS.").Return(4, nil).Once()

		// Execute
		result, err := chatService.Consume(ctx, userID, question)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, "O Datasul é um ERP da TOTVS.", result.Answer)
		assert.Equal(t, 4, result.RemainingBalance)
		assert.False(t, result.Degraded)
		mockUsage.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
	})

	t.Run("Zero balance never reaches the provider", func(t *testing.T) {
		// Setup
		mockUsage := new(MockUsageStore)
		mockProvider := new(MockAnswerProvider)
		chatService := services.NewChatService(mockUsage, mockProvider, 30*time.Second)

		// Expectations
		mockUsage.On("GetUser", userID).Return(userWithBalance(0), nil).Once()

		// Execute
		result, err := chatService.Consume(ctx, userID, question)

		// Assert
		assert.ErrorIs(t, err, services.ErrInsufficientBalance)
		assert.Nil(t, result)
		mockProvider.AssertNotCalled(t, "GenerateAnswer", mock.Anything, mock.Anything, mock.Anything)
		mockUsage.AssertNotCalled(t, "ChargeMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Provider failure returns the fallback without a charge", func(t *testing.T) {
		// Setup
		mockUsage := new(MockUsageStore)
		mockProvider := new(MockAnswerProvider)
		chatService := services.NewChatService(mockUsage, mockProvider, 30*time.Second)

		// Expectations
		mockUsage.On("GetUser", userID).Return(userWithBalance(3), nil).Once()
		mockProvider.On("GenerateAnswer", mock.Anything, question, mock.AnythingOfType("string")).
			Return("", fmt.Errorf("upstream timeout")).Once()

		// Execute
		result, err := chatService.Consume(ctx, userID, question)

		// Assert
		assert.NoError(t, err)
		assert.True(t, result.Degraded)
		assert.Equal(t, services.FallbackAnswer, result.Answer)
		assert.Equal(t, 3, result.RemainingBalance)
		mockUsage.AssertNotCalled(t, "ChargeMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Last message drains the balance to zero", func(t *testing.T) {
		// Setup
		mockUsage := new(MockUsageStore)
		mockProvider := new(MockAnswerProvider)
		chatService := services.NewChatService(mockUsage, mockProvider, 30*time.Second)

		// Expectations
		mockUsage.On("GetUser", userID).Return(userWithBalance(1), nil).Once()
		mockProvider.On("GenerateAnswer", mock.Anything, question, mock.AnythingOfType("string")).
			Return("Resposta.", nil).Once()
		mockUsage.On("ChargeMessage", userID, question, "Resposta.").Return(0, nil).Once()

		// Execute
		result, err := chatService.Consume(ctx, userID, question)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 0, result.RemainingBalance)

		// The next exchange is rejected before the provider is consulted.
		mockUsage.On("GetUser", userID).Return(userWithBalance(0), nil).Once()
		_, err = chatService.Consume(ctx, userID, question)
		assert.ErrorIs(t, err, services.ErrInsufficientBalance)
		mockProvider.AssertNumberOfCalls(t, "GenerateAnswer", 1)
	})

	t.Run("Unknown user", func(t *testing.T) {
		// Setup
		mockUsage := new(MockUsageStore)
		mockProvider := new(MockAnswerProvider)
		chatService := services.NewChatService(mockUsage, mockProvider, 30*time.Second)

		// Expectations
		mockUsage.On("GetUser", userID).Return(nil, gorm.ErrRecordNotFound).Once()

		// Execute
		result, err := chatService.Consume(ctx, userID, question)

		// Assert
		assert.ErrorIs(t, err, services.ErrUserNotFound)
		assert.Nil(t, result)
	})
}

func TestHistory(t *testing.T) {
	userID := uuid.New()

	t.Run("History is scoped to one account", func(t *testing.T) {
		// Setup
		mockUsage := new(MockUsageStore)
		mockProvider := new(MockAnswerProvider)
		chatService := services.NewChatService(mockUsage, mockProvider, 30*time.Second)

		own := []models.ChatMessage{{UserID: userID, Question: "q", Answer: "a"}}

		// Expectations
		mockUsage.On("ListMessagesByUser", userID, 2, 20).Return(own, int64(21), nil).Once()

		// Execute
		messages, total, err := chatService.History(userID, 2, 20)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, int64(21), total)
		assert.Len(t, messages, 1)
		mockUsage.AssertNotCalled(t, "ListAllMessages", mock.Anything, mock.Anything)
	})

	t.Run("AdminHistory spans all accounts", func(t *testing.T) {
		// Setup
		mockUsage := new(MockUsageStore)
		mockProvider := new(MockAnswerProvider)
		chatService := services.NewChatService(mockUsage, mockProvider, 30*time.Second)

		// Expectations
		mockUsage.On("ListAllMessages", 1, 50).Return([]models.ChatMessage{}, int64(0), nil).Once()

		// Execute
		_, _, err := chatService.AdminHistory(1, 50)

		// Assert
		assert.NoError(t, err)
		mockUsage.AssertExpectations(t)
	})
}

func TestChatStats(t *testing.T) {
	userID := uuid.New()

	t.Run("Reports usage total and remaining balance", func(t *testing.T) {
		// Setup
		mockUsage := new(MockUsageStore)
		mockProvider := new(MockAnswerProvider)
		chatService := services.NewChatService(mockUsage, mockProvider, 30*time.Second)

		created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		user := &models.User{
			ID:             userID,
			MessageBalance: 7,
			CreatedAt:      created,
		}

		// Expectations
		mockUsage.On("GetUser", userID).Return(user, nil).Once()
		mockUsage.On("CountMessagesByUser", userID).Return(int64(42), nil).Once()

		// Execute
		total, remaining, since, err := chatService.Stats(userID)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, int64(42), total)
		assert.Equal(t, 7, remaining)
		assert.Equal(t, created, since)
	})
}
