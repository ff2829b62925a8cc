package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	SQLite    SQLiteConfig
	Bootstrap BootstrapConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPAddr string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type SQLiteConfig struct {
	Path          string
	BusyTimeoutMs int
}

type BootstrapConfig struct {
	OwnerPIN  string
	OwnerName string
}

func LoadEnv() *Config {
	// Basic config loading
	// In a real scenario, use structured config loader like viper or koanf
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPAddr: getEnv("HTTP_ADDR", ":8090"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		SQLite: SQLiteConfig{
			Path:          getEnv("SQLITE_PATH", "omnipos.db"),
			BusyTimeoutMs: getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		},
		Bootstrap: BootstrapConfig{
			OwnerPIN:  getEnv("BOOTSTRAP_OWNER_PIN", "1234"),
			OwnerName: getEnv("BOOTSTRAP_OWNER_NAME", "Store Owner"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
