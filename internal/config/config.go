package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database (optional account table)
	DatabaseURL   string
	MigrationsDir string

	// Tokens
	JWTSecret       string
	TokenTTLMinutes int

	// Accounts seeded at startup, "user:password" pairs
	Accounts map[string]string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiTimeoutSeconds int
	GeminiConcurrentReqs int
	GeminiForwardHistory bool

	// Chat
	SystemPrompt    string
	HistoryMaxTurns int

	// CORS
	AllowedOrigins []string
}

const (
	defaultSystemPrompt   = "You are a helpful assistant in a simple student chatroom."
	defaultAccounts       = "student:123456"
	defaultAllowedOrigins = "http://localhost:5500,https://ai-chatroom-test-jccg.vercel.app"
)

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		DatabaseURL:          getEnvOrDefault("DATABASE_URL", ""),
		MigrationsDir:        getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		TokenTTLMinutes:      getEnvAsIntOrDefault("TOKEN_TTL_MINUTES", 60*24),
		Accounts:             parseAccounts(getEnvOrDefault("CHAT_ACCOUNTS", defaultAccounts)),
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTimeoutSeconds: getEnvAsIntOrDefault("GEMINI_TIMEOUT_SECONDS", 30),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		GeminiForwardHistory: getEnvAsBoolOrDefault("GEMINI_FORWARD_HISTORY", false),
		SystemPrompt:         getEnvOrDefault("SYSTEM_PROMPT", defaultSystemPrompt),
		HistoryMaxTurns:      getEnvAsIntOrDefault("HISTORY_MAX_TURNS", 0),
		AllowedOrigins:       normalizeOrigins(getEnvAsListOrDefault("CORS_ALLOWED_ORIGINS", defaultAllowedOrigins)),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsListOrDefault(key, defaultVal string) []string {
	raw := getEnvOrDefault(key, defaultVal)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// normalizeOrigins drops trailing slashes; browsers never send them in Origin.
func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// parseAccounts reads "user:password,user2:password2". Entries without a
// username or separator are skipped.
func parseAccounts(raw string) map[string]string {
	accounts := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		username, password, ok := strings.Cut(pair, ":")
		if !ok || username == "" {
			continue
		}
		accounts[username] = password
	}
	return accounts
}
