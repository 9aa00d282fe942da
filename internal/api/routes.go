package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"sensus_chatbot_go_backend/cmd/api/config"
	"sensus_chatbot_go_backend/internal/auth"
	apperrors "sensus_chatbot_go_backend/internal/errors"
	"sensus_chatbot_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v79"
)

// Deps bundles the services the HTTP surface is wired against.
type Deps struct {
	Config       *config.Config
	Accounts     *services.AccountService
	Packages     *services.PackageService
	Ledger       *services.TransactionService
	Chat         *services.ChatService
	Reset        *services.ResetService
	Admin        *services.AdminService
	Reports      *services.ReportService
	Stripe       *services.StripeService // nil when checkout is not configured
	Users        services.UserStore
	Sessions     services.TokenStore
	GoogleClient string

	// AdminUsername is the bootstrap admin account seeded at startup.
	AdminUsername string
	// ResetLinkBase is the frontend URL reset tokens are appended to.
	ResetLinkBase string
}

func SetupRoutes(r *gin.Engine, deps *Deps) {
	requireAuth := auth.AuthMiddleware(deps.Sessions, deps.Users)

	api := r.Group("/api")
	{
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)
		api.GET("/setup/status", setupStatusHandler(deps))

		api.POST("/register", registerHandler(deps))
		api.POST("/login", loginHandler(deps))
		api.POST("/auth/google", googleAuthHandler(deps))
		api.POST("/auth/forgot-password", forgotPasswordHandler(deps))
		api.POST("/auth/reset-password", resetPasswordHandler(deps))
		api.POST("/auth/validate-reset-token", validateResetTokenHandler(deps))
		api.POST("/stripe/webhook", stripeWebhookHandler(deps))

		api.GET("/packages", listPackagesHandler(deps))
		api.GET("/packages/:package_id", getPackageHandler(deps))

		api.POST("/logout", requireAuth, logoutHandler(deps))
		api.GET("/profile", requireAuth, profileHandler)
		api.POST("/auth/change-password", requireAuth, changePasswordHandler(deps))

		api.GET("/transactions", requireAuth, listTransactionsHandler(deps))
		api.POST("/transactions", requireAuth, createTransactionHandler(deps))
		api.POST("/transactions/:transaction_id/complete", requireAuth, completeTransactionHandler(deps))
		api.POST("/transactions/:transaction_id/cancel", requireAuth, cancelTransactionHandler(deps))

		api.POST("/chat", requireAuth, chatHandler(deps))
		api.GET("/chat/history", requireAuth, chatHistoryHandler(deps))
		api.GET("/chat/stats", requireAuth, chatStatsHandler(deps))
	}

	SetupAdminRoutes(r, deps)
}

// handleServiceError maps the service error taxonomy onto HTTP responses.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyProcessed),
		errors.Is(err, services.ErrUserHasRecords):
		apperrors.HandleError(c, apperrors.NewConflictError(err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		apperrors.HandleError(c, &apperrors.CustomError{
			Type:       apperrors.ErrorTypeUnauthorized,
			Message:    "Invalid credentials",
			StatusCode: http.StatusUnauthorized,
		})
	case errors.Is(err, services.ErrInsufficientBalance):
		apperrors.HandleError(c, apperrors.New402Error(
			"Você não possui saldo de mensagens. Adquira um pacote para continuar usando o chatbot."))
	case errors.Is(err, services.ErrPackageNotFound),
		errors.Is(err, services.ErrTransactionNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apperrors.HandleError(c, apperrors.New404Error(err.Error()))
	case errors.Is(err, services.ErrResetTokenInvalid),
		errors.Is(err, services.ErrWrongPassword):
		apperrors.HandleError(c, apperrors.New400Error(err.Error()))
	default:
		apperrors.HandleError(c, err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "Sensus Chatbot Backend",
	})
}

func ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "pong",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// setupStatusHandler reports whether the bootstrap admin account exists, so
// deploy tooling can verify the seed ran.
func setupStatusHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := deps.Users.GetUserByUsername(deps.AdminUsername)
		c.JSON(http.StatusOK, gin.H{
			"initialized": err == nil,
		})
	}
}

func registerHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Username string `json:"username" binding:"required"`
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required,min=6"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}

		user, err := deps.Accounts.Register(request.Username, request.Email, request.Password)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func loginHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}

		user, err := deps.Accounts.Authenticate(request.Username, request.Password)
		if err != nil {
			handleServiceError(c, err)
			return
		}

		if err := startSession(c, deps, user.ID); err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"user":    user,
		})
	}
}

func startSession(c *gin.Context, deps *Deps, userID uuid.UUID) error {
	token, err := auth.NewSessionToken()
	if err != nil {
		return err
	}
	if err := deps.Sessions.Set(c.Request.Context(), token, userID, deps.Config.SessionTTL); err != nil {
		return err
	}
	c.SetCookie(auth.SessionCookieName, token, int(deps.Config.SessionTTL.Seconds()), "/", "", false, true)
	return nil
}

func logoutHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := c.Get(auth.SessionCookieName); ok {
			_ = deps.Sessions.Delete(c.Request.Context(), token.(string))
		}
		c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
	}
}

func profileHandler(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		apperrors.HandleError(c, apperrors.New401Error())
		return
	}
	c.JSON(http.StatusOK, user)
}

func googleAuthHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			GoogleToken string `json:"google_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}

		profile, err := auth.VerifyGoogleIDToken(request.GoogleToken, deps.GoogleClient)
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid Google token"))
			return
		}

		user, isNew, err := deps.Accounts.RegisterOAuthUser(profile.Email, profile.Name, deps.Config.FreeTierGrant)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		if !user.IsActive {
			apperrors.HandleError(c, apperrors.New401Error())
			return
		}

		if err := startSession(c, deps, user.ID); err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":     "Login com Google realizado com sucesso",
			"user":        user,
			"is_new_user": isNew,
		})
	}
}

func forgotPasswordHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}

		// No mail sender is configured; the reset link is delivered in the
		// response body. The message never reveals whether the email exists.
		token, err := deps.Reset.RequestReset(c.Request.Context(), request.Email)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		response := gin.H{
			"message": "Se o email existir, você receberá instruções para redefinir sua senha",
		}
		if token != "" {
			response["reset_link"] = deps.ResetLinkBase + "?token=" + token
		}
		c.JSON(http.StatusOK, response)
	}
}

func resetPasswordHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Token       string `json:"token" binding:"required"`
			NewPassword string `json:"new_password" binding:"required,min=6"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}

		if err := deps.Reset.ResetPassword(c.Request.Context(), request.Token, request.NewPassword); err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Senha redefinida com sucesso"})
	}
}

func changePasswordHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			CurrentPassword string `json:"current_password" binding:"required"`
			NewPassword     string `json:"new_password" binding:"required,min=6"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}

		user, _ := auth.CurrentUser(c)
		if err := deps.Accounts.ChangePassword(user.ID, request.CurrentPassword, request.NewPassword); err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Senha alterada com sucesso"})
	}
}

func validateResetTokenHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}

		user, err := deps.Reset.ValidateToken(c.Request.Context(), request.Token)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"valid": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"valid":      true,
			"user_email": user.Email,
		})
	}
}

func listPackagesHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		packages, err := deps.Packages.ListActive()
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, packages)
	}
}

func getPackageHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("package_id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid package id"))
			return
		}
		pkg, err := deps.Packages.Get(id)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, pkg)
	}
}

func listTransactionsHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := auth.CurrentUser(c)
		transactions, err := deps.Ledger.ListByUser(user.ID)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, transactions)
	}
}

func createTransactionHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			PackageID string `json:"package_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}
		packageID, err := uuid.Parse(request.PackageID)
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid package id"))
			return
		}

		user, _ := auth.CurrentUser(c)
		transaction, err := deps.Ledger.Create(c.Request.Context(), user.ID, packageID)
		if err != nil {
			handleServiceError(c, err)
			return
		}

		response := gin.H{
			"transaction": transaction,
			"message":     "Transaction created successfully. Proceed with payment.",
		}

		// With Stripe configured, hand the client a checkout session for the
		// pending transaction; the webhook settles it on payment. A checkout
		// failure leaves the transaction pending for manual completion.
		if deps.Stripe != nil {
			pkg, err := deps.Packages.Get(packageID)
			if err != nil {
				log.Warn().Err(err).Str("transaction_id", transaction.ID.String()).
					Msg("Failed to load package for checkout session")
			} else {
				session, err := deps.Stripe.CreateCheckoutSession(
					transaction.ID.String(), user.ID.String(), pkg.Name, transaction.Amount)
				if err != nil {
					log.Warn().Err(err).Str("transaction_id", transaction.ID.String()).
						Msg("Failed to create checkout session")
					response["checkout_error"] = "Checkout indisponível no momento. A transação permanece pendente."
				} else {
					response["checkout_session_id"] = session.ID
				}
			}
		}

		c.JSON(http.StatusCreated, response)
	}
}

func completeTransactionHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("transaction_id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid transaction id"))
			return
		}

		user, _ := auth.CurrentUser(c)
		result, err := deps.Ledger.Complete(c.Request.Context(), id, user.ID, false)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":        "Transaction completed successfully",
			"messages_added": result.MessagesAdded,
			"new_balance":    result.NewBalance,
		})
	}
}

func cancelTransactionHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("transaction_id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid transaction id"))
			return
		}

		user, _ := auth.CurrentUser(c)
		if err := deps.Ledger.Cancel(c.Request.Context(), id, user.ID, false); err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Transaction cancelled successfully"})
	}
}

func chatHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Question string `json:"question" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Question is required"))
			return
		}

		user, _ := auth.CurrentUser(c)
		result, err := deps.Chat.Consume(c.Request.Context(), user.ID, request.Question)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"question":          result.Question,
			"answer":            result.Answer,
			"remaining_balance": result.RemainingBalance,
			"upstream_degraded": result.Degraded,
		})
	}
}

func chatHistoryHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := auth.CurrentUser(c)
		page, perPage := paginationParams(c, deps.Config.HistoryPerPage)

		messages, total, err := deps.Chat.History(user.ID, page, perPage)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"messages":     messages,
			"total":        total,
			"current_page": page,
			"per_page":     perPage,
		})
	}
}

func chatStatsHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := auth.CurrentUser(c)
		total, remaining, since, err := deps.Chat.Stats(user.ID)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"total_messages_sent": total,
			"remaining_balance":   remaining,
			"user_since":          since.Format(time.RFC3339),
		})
	}
}

func stripeWebhookHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Stripe == nil {
			apperrors.HandleError(c, apperrors.New404Error("Stripe is not configured"))
			return
		}

		const MaxBodyBytes = int64(65536)
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Error reading request body"))
			return
		}

		event, err := deps.Stripe.HandleWebhook(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Failed to verify webhook signature"))
			return
		}

		if event.Type == "checkout.session.completed" {
			var session stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
				apperrors.HandleError(c, apperrors.New400Error("Failed to parse checkout session"))
				return
			}
			transactionID, err := uuid.Parse(session.Metadata["transaction_id"])
			if err != nil {
				apperrors.HandleError(c, apperrors.New400Error("Invalid transaction id in metadata"))
				return
			}
			// Settles through the same pending-only path as a manual
			// completion; a replayed event hits AlreadyProcessed.
			if _, err := deps.Ledger.Complete(c.Request.Context(), transactionID, uuid.Nil, true); err != nil {
				if !errors.Is(err, services.ErrAlreadyProcessed) {
					handleServiceError(c, err)
					return
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func paginationParams(c *gin.Context, defaultPerPage int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if err != nil || perPage < 1 || perPage > 100 {
		perPage = defaultPerPage
	}
	return page, perPage
}
