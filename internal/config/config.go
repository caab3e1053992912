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
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Research ResearchConfig
	Qdrant   QdrantConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins string
}

type StorageConfig struct {
	Driver      string
	DataPath    string
	MaxFileSize int64
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type LLMConfig struct {
	Provider         string
	GeminiAPIKey     string
	GeminiModel      string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	Temperature      float32
	RetryMaxAttempts int
	Timeout          time.Duration
}

type ResearchConfig struct {
	SerperAPIKey string
	SerperURL    string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type WorkerConfig struct {
	Concurrency int
}

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "5000"),
			Env:         getEnv("ENV", "development"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		Storage: StorageConfig{
			Driver:      getEnv("STORE_DRIVER", DriverFile),
			DataPath:    getEnv("DATA_PATH", "./database"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "mock_interviewer"),
		},
		LLM: LLMConfig{
			Provider:         getEnv("LLM_PROVIDER", ProviderGemini),
			GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
			GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
			OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			Temperature:      getEnvAsFloat32("LLM_TEMPERATURE", 0.6),
			RetryMaxAttempts: getEnvAsInt("LLM_RETRY_MAX_ATTEMPTS", 1),
			Timeout:          getEnvAsDuration("LLM_TIMEOUT", "60s"),
		},
		Research: ResearchConfig{
			SerperAPIKey: getEnv("SERPER_API_KEY", ""),
			SerperURL:    getEnv("SERPER_URL", "https://google.serper.dev/search"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "interview_questions"),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 2),
		},
	}
}

// Validate checks the combinations Load cannot default away.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverPostgres:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.Storage.Driver)
	}

	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %s", c.LLM.Provider)
	}

	if c.LLM.RetryMaxAttempts < 1 {
		return fmt.Errorf("LLM_RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1")
	}

	return nil
}

// QuestionBankEnabled reports whether Qdrant and an embedding key are both configured.
func (c *Config) QuestionBankEnabled() bool {
	return c.Qdrant.URL != "" && c.LLM.GeminiAPIKey != ""
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
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
