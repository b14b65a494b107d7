package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port string

	// Database (audit trail; empty DBHost disables persistence)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth (single user)
	AdminUsername    string
	AdminPassword    string
	AdminDisplayName string
	AdminRole        string
	JWTSecret        string

	// Sessions
	SessionTimeout    time.Duration // idle time before the reaper disconnects
	ReapInterval      time.Duration // how often the reaper sweeps
	SSHConnectTimeout time.Duration // default handshake timeout
}

func Load() *Config {
	sessionTimeout, _ := strconv.Atoi(getEnv("SESSION_TIMEOUT", "1800"))
	reapInterval, _ := strconv.Atoi(getEnv("REAP_INTERVAL", "60"))
	connectTimeout, _ := strconv.Atoi(getEnv("SSH_CONNECT_TIMEOUT", "10"))
	return &Config{
		Port:              getEnv("PORT", "8098"),
		DBHost:            getEnv("DB_HOST", ""),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", "relayforge_db"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		AdminDisplayName:  getEnv("ADMIN_DISPLAY_NAME", "Admin"),
		AdminRole:         getEnv("ADMIN_ROLE", "admin"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		SessionTimeout:    time.Duration(sessionTimeout) * time.Second,
		ReapInterval:      time.Duration(reapInterval) * time.Second,
		SSHConnectTimeout: time.Duration(connectTimeout) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
