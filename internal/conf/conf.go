package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// StateNamespace is the fixed namespace name for this bot's persisted state.
const StateNamespace = "fediring"

// Config represents application configuration
type Config struct {
	// Fediverse server configuration
	Server ServerConfig

	// Ring repository configuration
	Ring RingConfig

	// Member mention broadcast configuration
	Mention MentionConfig

	// Bot state configuration
	State StateConfig

	// Accounts permitted to use administrative commands
	AdminAccounts []string

	// Optional YAML file overriding reply templates
	TemplatesPath string

	// Debug mode
	Debug bool
}

// ServerConfig contains fediverse server configuration
type ServerConfig struct {
	URL         string
	AccessToken string
	BotAcct     string
}

// RingConfig contains ring repository configuration
type RingConfig struct {
	RepoURL        string
	ClonePath      string
	ProfilesPath   string
	UpdateInterval time.Duration
}

// MentionConfig contains member mention broadcast configuration
type MentionConfig struct {
	Interval time.Duration
	Count    int
}

// StateConfig contains bot state configuration
type StateConfig struct {
	DBPath          string
	MaxHistoryRatio float64
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = "./data"
	}

	dbPath := os.Getenv("STATE_DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(dataPath, "fediring.db")
	}

	profilesPath := os.Getenv("PROFILES_PATH")
	if profilesPath == "" {
		profilesPath = filepath.Join("content", "profiles.csv")
	}

	return &Config{
		Server: ServerConfig{
			URL:         os.Getenv("SERVER_URL"),
			AccessToken: os.Getenv("ACCESS_TOKEN"),
			BotAcct:     os.Getenv("BOT_ACCT"),
		},
		Ring: RingConfig{
			RepoURL:        os.Getenv("GIT_REPO_URL"),
			ClonePath:      filepath.Join(dataPath, "ring"),
			ProfilesPath:   profilesPath,
			UpdateInterval: envDuration("GIT_UPDATE_MINUTES", time.Minute, 10),
		},
		Mention: MentionConfig{
			Interval: envDuration("MEMBER_MENTION_HOURS", time.Hour, 24*7),
			Count:    envInt("MEMBER_MENTION_COUNT", 5),
		},
		State: StateConfig{
			DBPath:          dbPath,
			MaxHistoryRatio: envFloat("MAX_HISTORY_RATIO", 0.5),
		},
		AdminAccounts: envList("ADMIN_ACCOUNTS"),
		TemplatesPath: os.Getenv("TEMPLATES_PATH"),
		Debug:         os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.URL == "" || c.Server.AccessToken == "" {
		return &ConfigError{Field: "SERVER_URL/ACCESS_TOKEN", Message: "required"}
	}
	if c.Ring.RepoURL == "" {
		return &ConfigError{Field: "GIT_REPO_URL", Message: "required"}
	}
	if c.Mention.Count <= 0 {
		return &ConfigError{Field: "MEMBER_MENTION_COUNT", Message: "must be positive"}
	}
	if c.State.MaxHistoryRatio <= 0 || c.State.MaxHistoryRatio >= 1 {
		return &ConfigError{Field: "MAX_HISTORY_RATIO", Message: "must be between 0 and 1"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func envInt(name string, fallback int) int {
	if val := os.Getenv(name); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(name string, fallback float64) float64 {
	if val := os.Getenv(name); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(name string, unit time.Duration, fallback int) time.Duration {
	return time.Duration(envInt(name, fallback)) * unit
}

func envList(name string) []string {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
