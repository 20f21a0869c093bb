package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Qdrant    QdrantConfig
	Gemini    GeminiConfig
	Realtime  RealtimeConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Interview InterviewConfig
	Matching  MatchingConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey           string
	RetryMaxAttempts int
}

type RealtimeConfig struct {
	WsURL       string
	TokenSecret string
	TokenAPIKey string
	TokenTTL    time.Duration
	RPCTimeout  time.Duration
}

type StorageConfig struct {
	MaxFileSize int64
	UploadPath  string
}

type WorkerConfig struct {
	Concurrency int
}

type InterviewConfig struct {
	TotalQuestions  int
	DefaultDuration int // minutes
}

type MatchingConfig struct {
	SimilarityThreshold float32
	MatchThreshold      int
	DefaultMinimumScore int
	DefaultLimit        int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "hirehub"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("SEARCH_CACHE_TTL", "5m"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "hirehub_candidates"),
		},
		Gemini: GeminiConfig{
			APIKey:           getEnv("GEMINI_API_KEY", ""),
			RetryMaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
		},
		Realtime: RealtimeConfig{
			WsURL:       getEnv("REALTIME_WS_URL", "ws://localhost:3000/ws/interviews"),
			TokenSecret: getEnv("REALTIME_TOKEN_SECRET", ""),
			TokenAPIKey: getEnv("REALTIME_TOKEN_API_KEY", "hirehub"),
			TokenTTL:    getEnvAsDuration("REALTIME_TOKEN_TTL", "2h"),
			RPCTimeout:  getEnvAsDuration("RPC_TIMEOUT", "15s"),
		},
		Storage: StorageConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 3),
		},
		Interview: InterviewConfig{
			TotalQuestions:  getEnvAsInt("INTERVIEW_TOTAL_QUESTIONS", 6),
			DefaultDuration: getEnvAsInt("INTERVIEW_DURATION_MINUTES", 30),
		},
		Matching: MatchingConfig{
			SimilarityThreshold: float32(getEnvAsFloat("MATCH_SIMILARITY_THRESHOLD", 0.7)),
			MatchThreshold:      getEnvAsInt("MATCH_SCORE_THRESHOLD", 70),
			DefaultMinimumScore: getEnvAsInt("MATCH_DEFAULT_MINIMUM_SCORE", 60),
			DefaultLimit:        getEnvAsInt("MATCH_DEFAULT_LIMIT", 20),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
