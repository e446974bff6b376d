package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by RELGRAPH_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("RELGRAPH_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// GraphStore returns the edge store backend.
// Defaults to "memory" if not set.
// Valid values: memory, badger, postgres
func GraphStore() string {
	s := strings.ToLower(strings.TrimSpace(os.Getenv("GRAPH_STORE")))
	if s == "" {
		return "memory"
	}
	return s
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// BadgerDir returns the data directory of the badger backend.
func BadgerDir() string {
	d := os.Getenv("BADGER_DIR")
	if d == "" {
		return "data/relgraph"
	}
	return d
}

// MaxInferenceHops returns the path length bound for inference.
// Defaults to 3; values outside 1..3 are clamped by the inference engine.
func MaxInferenceHops() int {
	n, err := strconv.Atoi(os.Getenv("MAX_INFERENCE_HOPS"))
	if err != nil {
		return 3
	}
	return n
}

// FoldDiacritics reports whether "María" and "maria" share an entity key.
// Defaults to true.
func FoldDiacritics() bool {
	v, err := strconv.ParseBool(os.Getenv("FOLD_DIACRITICS"))
	if err != nil {
		return true
	}
	return v
}

// VocabularyFile returns the optional YAML relation vocabulary overlay.
func VocabularyFile() string {
	return os.Getenv("RELATION_VOCABULARY_FILE")
}

// AuditInterval returns how often stored graphs are audited.
// Defaults to 1h; 0 disables the auditor.
func AuditInterval() time.Duration {
	raw := os.Getenv("AUDIT_INTERVAL")
	if raw == "" {
		return time.Hour
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return time.Hour
	}
	return d
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// LogFile returns the path of the rotated JSON log file, empty for stdout only.
func LogFile() string {
	return os.Getenv("LOG_FILE")
}
