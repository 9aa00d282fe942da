package services_test

import (
	"testing"

	"sensus_chatbot_go_backend/internal/models"
	"sensus_chatbot_go_backend/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestRegister(t *testing.T) {
	t.Run("Stores a bcrypt hash, never the plaintext", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)

		// Expectations
		mockStore.On("GetUserByUsername", "maria").Return(nil, gorm.ErrRecordNotFound).Once()
		mockStore.On("GetUserByEmail", "maria@example.com").Return(nil, gorm.ErrRecordNotFound).Once()
		mockStore.On("CreateUser", mock.AnythingOfType("*models.User")).Return(nil).Once()

		// Execute
		user, err := accountService.Register("maria", "maria@example.com", "segredo123")

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, models.UserTypeClient, user.UserType)
		assert.True(t, user.IsActive)
		assert.Equal(t, 0, user.MessageBalance)
		assert.NotEqual(t, "segredo123", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("segredo123")))
		mockStore.AssertExpectations(t)
	})

	t.Run("Duplicate username", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)

		// Expectations
		mockStore.On("GetUserByUsername", "maria").Return(&models.User{Username: "maria"}, nil).Once()

		// Execute
		user, err := accountService.Register("maria", "maria@example.com", "segredo123")

		// Assert
		assert.ErrorIs(t, err, services.ErrUsernameTaken)
		assert.Nil(t, user)
		mockStore.AssertNotCalled(t, "CreateUser", mock.Anything)
	})

	t.Run("Concurrent duplicate surfaces the taken sentinel, not a raw error", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)

		// Expectations: both existence checks pass, then the insert loses the
		// race and the store reports the constraint violation.
		mockStore.On("GetUserByUsername", "maria").Return(nil, gorm.ErrRecordNotFound).Once()
		mockStore.On("GetUserByEmail", "maria@example.com").Return(nil, gorm.ErrRecordNotFound).Once()
		mockStore.On("CreateUser", mock.AnythingOfType("*models.User")).Return(services.ErrUsernameTaken).Once()

		// Execute
		user, err := accountService.Register("maria", "maria@example.com", "segredo123")

		// Assert
		assert.ErrorIs(t, err, services.ErrUsernameTaken)
		assert.Nil(t, user)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)

		// Expectations
		mockStore.On("GetUserByUsername", "maria").Return(nil, gorm.ErrRecordNotFound).Once()
		mockStore.On("GetUserByEmail", "maria@example.com").Return(&models.User{Email: "maria@example.com"}, nil).Once()

		// Execute
		user, err := accountService.Register("maria", "maria@example.com", "segredo123")

		// Assert
		assert.ErrorIs(t, err, services.ErrEmailTaken)
		assert.Nil(t, user)
		mockStore.AssertNotCalled(t, "CreateUser", mock.Anything)
	})
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	assert.NoError(t, err)

	activeUser := func() *models.User {
		return &models.User{
			ID:           uuid.New(),
			Username:     "maria",
			PasswordHash: string(hash),
			IsActive:     true,
		}
	}

	t.Run("Valid credentials", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		mockStore.On("GetUserByUsername", "maria").Return(activeUser(), nil).Once()

		// Execute
		user, err := accountService.Authenticate("maria", "segredo123")

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, "maria", user.Username)
	})

	t.Run("Wrong password", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		mockStore.On("GetUserByUsername", "maria").Return(activeUser(), nil).Once()

		// Execute
		user, err := accountService.Authenticate("maria", "errada")

		// Assert
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		assert.Nil(t, user)
	})

	t.Run("Deactivated account fails like bad credentials", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		inactive := activeUser()
		inactive.IsActive = false
		mockStore.On("GetUserByUsername", "maria").Return(inactive, nil).Once()

		// Execute
		user, err := accountService.Authenticate("maria", "segredo123")

		// Assert
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		assert.Nil(t, user)
	})

	t.Run("Unknown username", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		mockStore.On("GetUserByUsername", "ninguem").Return(nil, gorm.ErrRecordNotFound).Once()

		// Execute
		user, err := accountService.Authenticate("ninguem", "segredo123")

		// Assert
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		assert.Nil(t, user)
	})
}

func TestBalanceAdjustments(t *testing.T) {
	userID := uuid.New()

	t.Run("Credit passes a positive delta through", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		mockStore.On("AddBalance", userID, 50).Return(60, nil).Once()

		// Execute
		newBalance, err := accountService.Credit(userID, 50)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 60, newBalance)
		mockStore.AssertExpectations(t)
	})

	t.Run("Debit negates the delta", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		mockStore.On("AddBalance", userID, -5).Return(5, nil).Once()

		// Execute
		newBalance, err := accountService.Debit(userID, 5)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 5, newBalance)
	})

	t.Run("Non-positive amounts are rejected before the store", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)

		// Execute
		_, creditErr := accountService.Credit(userID, 0)
		_, debitErr := accountService.Debit(userID, -3)

		// Assert
		assert.Error(t, creditErr)
		assert.Error(t, debitErr)
		mockStore.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything)
	})

	t.Run("Overdraft surfaces ErrInsufficientBalance", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		mockStore.On("AddBalance", userID, -10).Return(0, services.ErrInsufficientBalance).Once()

		// Execute
		_, err := accountService.Debit(userID, 10)

		// Assert
		assert.ErrorIs(t, err, services.ErrInsufficientBalance)
	})
}

func TestUpdateUser(t *testing.T) {
	userID := uuid.New()

	t.Run("Profile edit never touches the balance", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		existing := &models.User{ID: userID, Username: "maria", MessageBalance: 5, IsActive: true}

		// Expectations
		mockStore.On("GetUserByID", userID).Return(existing, nil).Once()
		mockStore.On("UpdateUser", mock.AnythingOfType("*models.User")).Return(nil).Once()

		// Execute
		user, err := accountService.UpdateUser(userID, "maria2", "", "", "", nil, nil)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, "maria2", user.Username)
		mockStore.AssertNotCalled(t, "SetBalance", mock.Anything, mock.Anything)
	})

	t.Run("Balance edit goes through the locked setter", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		existing := &models.User{ID: userID, Username: "maria", MessageBalance: 5, IsActive: true}
		newBalance := 42

		// Expectations
		mockStore.On("GetUserByID", userID).Return(existing, nil).Once()
		mockStore.On("UpdateUser", mock.AnythingOfType("*models.User")).Return(nil).Once()
		mockStore.On("SetBalance", userID, 42).Return(42, nil).Once()

		// Execute
		user, err := accountService.UpdateUser(userID, "", "", "", "", &newBalance, nil)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 42, user.MessageBalance)
		mockStore.AssertExpectations(t)
	})

	t.Run("Negative balance is rejected before any write", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		negative := -1

		// Execute
		_, err := accountService.UpdateUser(userID, "", "", "", "", &negative, nil)

		// Assert
		assert.Error(t, err)
		mockStore.AssertNotCalled(t, "UpdateUser", mock.Anything)
		mockStore.AssertNotCalled(t, "SetBalance", mock.Anything, mock.Anything)
	})
}

func TestChangePassword(t *testing.T) {
	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("antiga123"), bcrypt.MinCost)
	assert.NoError(t, err)

	t.Run("Correct current password sets the new hash", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		user := &models.User{ID: userID, PasswordHash: string(hash)}

		// Expectations
		mockStore.On("GetUserByID", userID).Return(user, nil).Twice()
		mockStore.On("UpdateUser", mock.AnythingOfType("*models.User")).Return(nil).Once()

		// Execute
		err := accountService.ChangePassword(userID, "antiga123", "nova456")

		// Assert
		assert.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("nova456")))
		mockStore.AssertExpectations(t)
	})

	t.Run("Wrong current password is rejected without a write", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		user := &models.User{ID: userID, PasswordHash: string(hash)}

		// Expectations
		mockStore.On("GetUserByID", userID).Return(user, nil).Once()

		// Execute
		err := accountService.ChangePassword(userID, "errada", "nova456")

		// Assert
		assert.ErrorIs(t, err, services.ErrWrongPassword)
		mockStore.AssertNotCalled(t, "UpdateUser", mock.Anything)
	})
}

func TestRegisterOAuthUser(t *testing.T) {
	t.Run("Existing account is reused without a grant", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)
		existing := &models.User{ID: uuid.New(), Email: "joao@gmail.com", MessageBalance: 3}
		mockStore.On("GetUserByEmail", "joao@gmail.com").Return(existing, nil).Once()

		// Execute
		user, isNew, err := accountService.RegisterOAuthUser("joao@gmail.com", "João", 10)

		// Assert
		assert.NoError(t, err)
		assert.False(t, isNew)
		assert.Equal(t, 3, user.MessageBalance)
		mockStore.AssertNotCalled(t, "CreateUser", mock.Anything)
	})

	t.Run("First login gets the free tier grant and a derived username", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)

		// Expectations
		mockStore.On("GetUserByEmail", "joao@gmail.com").Return(nil, gorm.ErrRecordNotFound).Once()
		mockStore.On("GetUserByUsername", "joao").Return(nil, gorm.ErrRecordNotFound).Once()
		mockStore.On("CreateUser", mock.AnythingOfType("*models.User")).Return(nil).Once()

		// Execute
		user, isNew, err := accountService.RegisterOAuthUser("joao@gmail.com", "João", 10)

		// Assert
		assert.NoError(t, err)
		assert.True(t, isNew)
		assert.Equal(t, "joao", user.Username)
		assert.Equal(t, 10, user.MessageBalance)
		mockStore.AssertExpectations(t)
	})

	t.Run("Taken local part gets a numeric suffix", func(t *testing.T) {
		// Setup
		mockStore := new(MockUserStore)
		accountService := services.NewAccountService(mockStore)

		// Expectations
		mockStore.On("GetUserByEmail", "joao@gmail.com").Return(nil, gorm.ErrRecordNotFound).Once()
		mockStore.On("GetUserByUsername", "joao").Return(&models.User{Username: "joao"}, nil).Once()
		mockStore.On("GetUserByUsername", "joao1").Return(nil, gorm.ErrRecordNotFound).Once()
		mockStore.On("CreateUser", mock.AnythingOfType("*models.User")).Return(nil).Once()

		// Execute
		user, _, err := accountService.RegisterOAuthUser("joao@gmail.com", "João", 10)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, "joao1", user.Username)
	})
}
