package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	EngagementSource string
	MockDelay        time.Duration
	CSVPath          string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	AnalysisMode     string
	LangflowBaseURL  string
	LangflowToken    string
	LangflowFlowID   string
	LangflowTenantID string
	LangflowStream   bool
	LangflowTweaks   string
	WorkflowTimeout  time.Duration

	HTTPPort string
	GinMode  string
	LogLevel string
}

// Source and analysis mode names.
const (
	SourceMock     = "mock"
	SourceCSV      = "csv"
	SourcePostgres = "postgres"

	AnalysisLocal  = "local"
	AnalysisRemote = "remote"
)

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		EngagementSource: strings.ToLower(getEnv("ENGAGEMENT_SOURCE", SourceMock)),
		MockDelay:        time.Duration(getEnvInt("MOCK_DELAY_MS", 500)) * time.Millisecond,
		CSVPath:          getEnv("ENGAGEMENT_CSV", "./data/engagement.csv"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "engagement"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "engagement"),
		PostgresDB:       getEnv("POSTGRES_DB", "engagement_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		AnalysisMode:     strings.ToLower(getEnv("ANALYSIS_MODE", AnalysisLocal)),
		LangflowBaseURL:  strings.TrimRight(getEnv("LANGFLOW_BASE_URL", "https://api.langflow.astra.datastax.com"), "/"),
		LangflowToken:    getEnv("LANGFLOW_TOKEN", ""),
		LangflowFlowID:   getEnv("LANGFLOW_FLOW_ID", ""),
		LangflowTenantID: getEnv("LANGFLOW_TENANT_ID", ""),
		LangflowStream:   getEnvBool("LANGFLOW_STREAM", false),
		LangflowTweaks:   getEnv("LANGFLOW_TWEAKS", ""),
		WorkflowTimeout:  time.Duration(getEnvInt("WORKFLOW_TIMEOUT_MS", 0)) * time.Millisecond,

		HTTPPort: getEnv("HTTP_PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// RemoteReady reports whether enough Langflow settings are present to call the remote flow.
func (c *Config) RemoteReady() bool {
	return c.LangflowBaseURL != "" && c.LangflowToken != "" &&
		c.LangflowFlowID != "" && c.LangflowTenantID != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
