package services

import (
	"time"

	"sensus_chatbot_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DailyMessageCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type TopUser struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	MessageCount int64  `json:"message_count"`
}

type DashboardStats struct {
	TotalUsers    int64               `json:"total_users"`
	TotalMessages int64               `json:"total_messages"`
	TotalRevenue  float64             `json:"total_revenue"`
	ActiveUsers   int64               `json:"active_users"`
	DailyMessages []DailyMessageCount `json:"daily_messages"`
	TopUsers      []TopUser           `json:"top_users"`
}

type UserActivity struct {
	MessageCount int64      `json:"message_count"`
	TotalSpent   float64    `json:"total_spent"`
	LastActivity *time.Time `json:"last_activity"`
}

// AdminService serves the aggregate dashboard queries. Read-only.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) DashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.db.Model(&models.User{}).Where("user_type = ?", models.UserTypeClient).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.ChatMessage{}).Count(&stats.TotalMessages).Error; err != nil {
		return nil, err
	}
	err := s.db.Model(&models.Transaction{}).
		Where("status = ?", models.TransactionCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	err = s.db.Model(&models.ChatMessage{}).
		Where("created_at >= ?", thirtyDaysAgo).
		Distinct("user_id").
		Count(&stats.ActiveUsers).Error
	if err != nil {
		return nil, err
	}

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	err = s.db.Model(&models.ChatMessage{}).
		Select("DATE(created_at) AS date, COUNT(*) AS count").
		Where("created_at >= ?", sevenDaysAgo).
		Group("DATE(created_at)").
		Order("date asc").
		Scan(&stats.DailyMessages).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Table("users").
		Select("users.username, users.email, COUNT(chat_messages.id) AS message_count").
		Joins("JOIN chat_messages ON chat_messages.user_id = users.id").
		Group("users.id").
		Order("message_count DESC").
		Limit(5).
		Scan(&stats.TopUsers).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// UserActivity returns the per-user counters shown on the admin user list.
func (s *AdminService) UserActivity(userID uuid.UUID) (*UserActivity, error) {
	activity := &UserActivity{}

	if err := s.db.Model(&models.ChatMessage{}).Where("user_id = ?", userID).Count(&activity.MessageCount).Error; err != nil {
		return nil, err
	}
	err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND status = ?", userID, models.TransactionCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&activity.TotalSpent).Error
	if err != nil {
		return nil, err
	}

	var last time.Time
	row := s.db.Model(&models.ChatMessage{}).
		Where("user_id = ?", userID).
		Select("MAX(created_at)").
		Row()
	if err := row.Scan(&last); err == nil && !last.IsZero() {
		activity.LastActivity = &last
	}

	return activity, nil
}
