package config

import "time"

type Config struct {
	// FreeTierGrant is the message balance given on first OAuth login.
	FreeTierGrant int
	// AdminSeedBalance is the balance seeded onto the bootstrap admin account.
	AdminSeedBalance int
	AnswerTimeout    time.Duration
	SessionTTL       time.Duration
	ResetTokenTTL    time.Duration
	HistoryPerPage   int
}

func NewConfig() *Config {
	return &Config{
		FreeTierGrant:    10,
		AdminSeedBalance: 1000,
		AnswerTimeout:    30 * time.Second,
		SessionTTL:       24 * time.Hour,
		ResetTokenTTL:    1 * time.Hour,
		HistoryPerPage:   20,
	}
}
