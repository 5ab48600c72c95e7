package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultListingImage is stored on a new item until its own photos are uploaded.
const DefaultListingImage = "https://images.unsplash.com/photo-1584515933487-779824d29309?w=800&auto=format&fit=crop"

type Config struct {
	ListenAddr string
	DBDriver   string
	DBDSN      string

	ModelBackend  string
	GeminiAPIKey  string
	GeminiModel   string
	ClaudeAPIKey  string
	ClaudeModel   string
	OllamaHost    string
	OllamaModel   string
	ChatWebSearch bool

	PhotoBackend   string
	PhotoPath      string
	PublicBaseURL  string
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
	PlaceholderURL string
	MaxUploadBytes int64
	MaxVideoBytes  int64
	CORSOrigins    []string
	RedisAddr      string
	RedisPassword  string

	HandoverCodeTTL  time.Duration
	HandoverSweep    string
	ScanAttempts     int
	AIRequestsPerMin int

	LogLevel string
	LogFile  string
}

func Load() *Config {
	port := getEnv("PORT", "3000")
	dsn := getEnv("DATABASE_URL", "")
	driver := "sqlite"
	if dsn != "" {
		driver = "postgres"
	} else {
		dsn = getEnv("DB_PATH", "/data/pharmagrid.db")
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":"+port),
		DBDriver:   getEnv("DB_DRIVER", driver),
		DBDSN:      dsn,

		ModelBackend:  getEnv("MODEL_BACKEND", "gemini"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", getEnv("VITE_GEMINI_API_KEY", "")),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-flash-latest"),
		ClaudeAPIKey:  getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:   getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llava"),
		ChatWebSearch: getBool("CHAT_WEB_SEARCH", true),

		PhotoBackend:   getEnv("PHOTO_BACKEND", "local"),
		PhotoPath:      getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		SupabaseURL:    getEnv("SUPABASE_URL", getEnv("VITE_SUPABASE_URL", "")),
		SupabaseKey:    getEnv("SUPABASE_SERVICE_ROLE_KEY", getEnv("VITE_SUPABASE_ANON_KEY", "")),
		SupabaseBucket: getEnv("SUPABASE_BUCKET", "device-images"),
		PlaceholderURL: getEnv("LISTING_PLACEHOLDER_IMAGE", DefaultListingImage),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_BYTES", 50*1024*1024)),
		MaxVideoBytes:  int64(getInt("MAX_VIDEO_BYTES", 20*1024*1024)),
		CORSOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),

		HandoverCodeTTL:  getDuration("HANDOVER_CODE_TTL", 15*time.Minute),
		HandoverSweep:    getEnv("HANDOVER_SWEEP_SCHEDULE", "@every 5m"),
		ScanAttempts:     getInt("HANDOVER_MAX_ATTEMPTS", 5),
		AIRequestsPerMin: getInt("AI_REQUESTS_PER_MINUTE", 30),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

// UsingAnonKey reports whether storage calls will run with the public anon key,
// which row-level security usually rejects for uploads.
func (c *Config) UsingAnonKey() bool {
	_, hasService := os.LookupEnv("SUPABASE_SERVICE_ROLE_KEY")
	return !hasService && c.SupabaseKey != ""
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return v
}

func getBool(key string, defaultVal bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return v
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultVal
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
