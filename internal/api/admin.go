package api

import (
	"net/http"
	"strings"

	"sensus_chatbot_go_backend/internal/auth"
	apperrors "sensus_chatbot_go_backend/internal/errors"
	"sensus_chatbot_go_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func SetupAdminRoutes(r *gin.Engine, deps *Deps) {
	requireAuth := auth.AuthMiddleware(deps.Sessions, deps.Users)
	requireAdmin := auth.AdminMiddleware()

	admin := r.Group("/api/admin", requireAuth, requireAdmin)
	{
		admin.GET("/dashboard", dashboardHandler(deps))

		admin.GET("/users", adminListUsersHandler(deps))
		admin.POST("/users", adminCreateUserHandler(deps))
		admin.GET("/users/:user_id", adminGetUserHandler(deps))
		admin.PUT("/users/:user_id", adminUpdateUserHandler(deps))
		admin.DELETE("/users/:user_id", adminDeleteUserHandler(deps))
		admin.POST("/users/:user_id/add-messages", adminAddMessagesHandler(deps))
		admin.GET("/users/:user_id/history", adminUserHistoryHandler(deps))

		admin.GET("/packages", adminListPackagesHandler(deps))
		admin.POST("/packages", adminCreatePackageHandler(deps))
		admin.PUT("/packages/:package_id", adminUpdatePackageHandler(deps))
		admin.DELETE("/packages/:package_id", adminDeactivatePackageHandler(deps))

		admin.GET("/transactions", adminListTransactionsHandler(deps))
		admin.POST("/transactions/:transaction_id/complete", adminCompleteTransactionHandler(deps))

		admin.GET("/chat/history", adminChatHistoryHandler(deps))
		admin.GET("/reports/transactions.pdf", adminTransactionReportHandler(deps))
	}
}

func dashboardHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := deps.Admin.DashboardStats()
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func adminListUsersHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		search := strings.ToLower(c.Query("search"))
		page, perPage := paginationParams(c, 20)

		users, err := deps.Accounts.ListUsers()
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		matched := make([]*models.User, 0, len(users))
		for i := range users {
			user := &users[i]
			if search != "" &&
				!strings.Contains(strings.ToLower(user.Username), search) &&
				!strings.Contains(strings.ToLower(user.Email), search) {
				continue
			}
			matched = append(matched, user)
		}

		start := (page - 1) * perPage
		if start > len(matched) {
			start = len(matched)
		}
		end := start + perPage
		if end > len(matched) {
			end = len(matched)
		}

		result := make([]gin.H, 0, end-start)
		for _, user := range matched[start:end] {
			activity, err := deps.Admin.UserActivity(user.ID)
			if err != nil {
				apperrors.HandleError(c, apperrors.New500Error(err))
				return
			}
			result = append(result, gin.H{
				"user":          user,
				"message_count": activity.MessageCount,
				"total_spent":   activity.TotalSpent,
				"last_activity": activity.LastActivity,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"users":        result,
			"total":        len(matched),
			"current_page": page,
			"per_page":     perPage,
		})
	}
}

func adminCreateUserHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Username       string `json:"username" binding:"required"`
			Email          string `json:"email" binding:"required,email"`
			Password       string `json:"password" binding:"required,min=6"`
			UserType       string `json:"user_type"`
			MessageBalance *int   `json:"message_balance"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}
		if request.UserType != "" && request.UserType != models.UserTypeAdmin && request.UserType != models.UserTypeClient {
			apperrors.HandleError(c, apperrors.New400Error("user_type must be admin or client"))
			return
		}

		user, err := deps.Accounts.Register(request.Username, request.Email, request.Password)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		if request.UserType != "" || request.MessageBalance != nil {
			user, err = deps.Accounts.UpdateUser(user.ID, "", "", request.UserType, "", request.MessageBalance, nil)
			if err != nil {
				handleServiceError(c, err)
				return
			}
		}
		c.JSON(http.StatusCreated, user)
	}
}

func adminGetUserHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("user_id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid user id"))
			return
		}
		user, err := deps.Accounts.GetUser(id)
		if err != nil {
			apperrors.HandleError(c, apperrors.New404Error("User not found"))
			return
		}
		activity, err := deps.Admin.UserActivity(user.ID)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user":          user,
			"message_count": activity.MessageCount,
			"total_spent":   activity.TotalSpent,
			"last_activity": activity.LastActivity,
		})
	}
}

func adminUpdateUserHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("user_id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid user id"))
			return
		}

		var request struct {
			Username       string `json:"username"`
			Email          string `json:"email"`
			UserType       string `json:"user_type"`
			Password       string `json:"password"`
			MessageBalance *int   `json:"message_balance"`
			IsActive       *bool  `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}
		if request.UserType != "" && request.UserType != models.UserTypeAdmin && request.UserType != models.UserTypeClient {
			apperrors.HandleError(c, apperrors.New400Error("user_type must be admin or client"))
			return
		}

		user, err := deps.Accounts.UpdateUser(id, request.Username, request.Email, request.UserType,
			request.Password, request.MessageBalance, request.IsActive)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func adminDeleteUserHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("user_id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid user id"))
			return
		}
		if err := deps.Accounts.DeleteUser(id); err != nil {
			handleServiceError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func adminAddMessagesHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("user_id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid user id"))
			return
		}

		var request struct {
			Messages int `json:"messages" binding:"required,gt=0"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}

		newBalance, err := deps.Accounts.Credit(id, request.Messages)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"messages_added": request.Messages,
			"new_balance":    newBalance,
		})
	}
}

// adminUserHistoryHandler returns one account's exchanges, ledger rows and
// usage counters in a single view.
func adminUserHistoryHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("user_id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid user id"))
			return
		}
		user, err := deps.Accounts.GetUser(id)
		if err != nil {
			apperrors.HandleError(c, apperrors.New404Error("User not found"))
			return
		}

		page, perPage := paginationParams(c, 20)
		messages, total, err := deps.Chat.History(id, page, perPage)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		transactions, err := deps.Ledger.ListByUser(id)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		activity, err := deps.Admin.UserActivity(id)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":           user,
			"messages":       messages,
			"total_messages": total,
			"current_page":   page,
			"per_page":       perPage,
			"transactions":   transactions,
			"message_count":  activity.MessageCount,
			"total_spent":    activity.TotalSpent,
			"last_activity":  activity.LastActivity,
		})
	}
}

func adminListPackagesHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		packages, err := deps.Packages.ListAll()
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, packages)
	}
}

func adminCreatePackageHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Name         string  `json:"name" binding:"required"`
			MessageCount int     `json:"message_count" binding:"required,gt=0"`
			Price        float64 `json:"price"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}

		pkg, err := deps.Packages.Create(request.Name, request.MessageCount, request.Price)
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, pkg)
	}
}

func adminUpdatePackageHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("package_id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid package id"))
			return
		}

		var request struct {
			Name         string   `json:"name"`
			MessageCount *int     `json:"message_count"`
			Price        *float64 `json:"price"`
			IsActive     *bool    `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error(err.Error()))
			return
		}

		pkg, err := deps.Packages.Update(id, request.Name, request.MessageCount, request.Price, request.IsActive)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, pkg)
	}
}

func adminDeactivatePackageHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("package_id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid package id"))
			return
		}
		if err := deps.Packages.Deactivate(id); err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Package deactivated successfully"})
	}
}

func adminListTransactionsHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		transactions, err := deps.Ledger.ListAll()
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, transactions)
	}
}

func adminCompleteTransactionHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("transaction_id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid transaction id"))
			return
		}

		user, _ := auth.CurrentUser(c)
		result, err := deps.Ledger.Complete(c.Request.Context(), id, user.ID, true)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":          "Transaction completed successfully by admin",
			"messages_added":   result.MessagesAdded,
			"user_new_balance": result.NewBalance,
		})
	}
}

func adminChatHistoryHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := paginationParams(c, 50)

		messages, total, err := deps.Chat.AdminHistory(page, perPage)
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

func adminTransactionReportHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		transactions, err := deps.Ledger.ListAll()
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		pdf, err := deps.Reports.TransactionStatementPDF(transactions)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="transactions.pdf"`)
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}
