package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AIAPIKey     string
	EmbedModel   string
	GenModel     string
	Temperature  float32
	Port         string
	IndexDir     string
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	EmbedBatch   int
	AITimeout    time.Duration
	MaxUploadMB  int64
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		Temperature:  getEnvFloat("TEMPERATURE", 0.3),
		Port:         getEnv("PORT", "8080"),
		IndexDir:     getEnv("INDEX_DIR", "indexes"),
		ChunkSize:    getEnvInt("CHUNK_SIZE", 10000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 1000),
		TopK:         getEnvInt("TOP_K", 4),
		EmbedBatch:   getEnvInt("EMBED_BATCH_SIZE", 16),
		AITimeout:    time.Duration(getEnvInt("AI_TIMEOUT_SECS", 120)) * time.Second,
		MaxUploadMB:  int64(getEnvInt("MAX_UPLOAD_MB", 32)),
	}

	if cfg.AIAPIKey == "" {
		log.Fatal("GEMINI_API_KEY not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float32) float32 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %g", key, v, def)
		return def
	}
	return float32(f)
}
