package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"sensus_chatbot_go_backend/cmd/api/config"
	"sensus_chatbot_go_backend/internal/api"
	"sensus_chatbot_go_backend/internal/auth"
	"sensus_chatbot_go_backend/internal/database"
	"sensus_chatbot_go_backend/internal/services"
	"sensus_chatbot_go_backend/internal/sessions"
	"sensus_chatbot_go_backend/internal/wsocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found")
	}

	genaiAPIKey := os.Getenv("GOOGLE_AI_STUDIO_API_KEY")
	if genaiAPIKey == "" {
		log.Fatal().Msg("GOOGLE_AI_STUDIO_API_KEY is not set in the environment")
	}
	modelName := os.Getenv("GENAI_MODEL")
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	ctx := context.Background()
	cfg := config.NewConfig()

	database.InitDB()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisClient, err := sessions.NewClient(redisAddr, os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	sessionStore := sessions.NewStore(redisClient, "session")
	resetTokenStore := sessions.NewStore(redisClient, "pwreset")

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(genaiAPIKey))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GenAI client")
	}
	defer genaiClient.Close()

	// Stripe is optional; without a secret key transactions are settled
	// manually through the complete endpoint.
	var stripeService *services.StripeService
	if secretKey := os.Getenv("STRIPE_SECRET_KEY"); secretKey != "" {
		stripeService = services.NewStripeService(
			os.Getenv("STRIPE_PUBLIC_KEY"),
			secretKey,
			os.Getenv("STRIPE_WEBHOOK_SECRET"),
			os.Getenv("STRIPE_SUCCESS_URL"),
			os.Getenv("STRIPE_CANCEL_URL"),
		)
	}

	userStore := services.NewUserStore(database.DB)
	packageStore := services.NewPackageStore(database.DB)
	ledgerStore := services.NewLedgerStore(database.DB)
	usageStore := services.NewUsageStore(database.DB)

	accountService := services.NewAccountService(userStore)
	packageService := services.NewPackageService(packageStore)
	transactionService := services.NewTransactionService(ledgerStore)
	answerProvider := services.NewGenAIProvider(genaiClient, modelName)
	chatService := services.NewChatService(usageStore, answerProvider, cfg.AnswerTimeout)
	resetService := services.NewResetService(userStore, accountService, resetTokenStore, cfg.ResetTokenTTL)
	adminService := services.NewAdminService(database.DB)
	reportService := services.NewReportService()

	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@sensus.com.br"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	if err := accountService.EnsureAdmin(adminUsername, adminEmail, adminPassword, cfg.AdminSeedBalance); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin account")
	}

	resetLinkBase := os.Getenv("RESET_LINK_BASE_URL")
	if resetLinkBase == "" {
		resetLinkBase = "http://localhost:5173/reset-password"
	}

	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173"
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(allowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	deps := &api.Deps{
		Config:        cfg,
		Accounts:      accountService,
		Packages:      packageService,
		Ledger:        transactionService,
		Chat:          chatService,
		Reset:         resetService,
		Admin:         adminService,
		Reports:       reportService,
		Stripe:        stripeService,
		Users:         userStore,
		Sessions:      sessionStore,
		GoogleClient:  os.Getenv("GOOGLE_CLIENT_ID"),
		AdminUsername: adminUsername,
		ResetLinkBase: resetLinkBase,
	}
	api.SetupRoutes(r, deps)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	wsHandler := wsocket.NewHandler(chatService, upgrader)

	r.GET("/ws", auth.AuthMiddleware(sessionStore, userStore), func(c *gin.Context) {
		user, _ := auth.CurrentUser(c)
		wsHandler.HandleWebSocket(c.Writer, c.Request, user)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Info().Str("port", port).Msg("Server starting")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
