package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers         []string
	KafkaGroupID         string
	ExtractionKafkaTopic string

	// Pattern library
	PatternLibraryPath string

	// Clinical heuristics
	RACUnitCorrectionEnabled bool
	NextVisitOffsetDays      int

	// Narrative LLM
	LLMAPIKey    string
	LLMBaseURL   string
	LLMModelName string

	// Caching / retention
	NarrativeCacheTTL   time.Duration
	ProfileCacheTTL     time.Duration
	ExtractionRecordTTL time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "ercinsight"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "ercinsight123"),
		PostgresDB:       getEnv("POSTGRES_DB", "ercinsight"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:         getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:         getEnv("KAFKA_GROUP_ID", "erc-insight"),
		ExtractionKafkaTopic: getEnv("EXTRACTION_KAFKA_TOPIC", "extraction-events"),

		PatternLibraryPath: getEnv("PATTERN_LIBRARY_PATH", ""),

		RACUnitCorrectionEnabled: getBoolEnv("RAC_UNIT_CORRECTION_ENABLED", true),
		NextVisitOffsetDays:      getIntEnv("NEXT_VISIT_OFFSET_DAYS", 7),

		LLMAPIKey:    getEnv("LLM_API_KEY", ""),
		LLMBaseURL:   getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModelName: getEnv("LLM_MODEL_NAME", "gemini-1.5-pro"),

		NarrativeCacheTTL:   getDuration("NARRATIVE_CACHE_TTL", 30*time.Minute),
		ProfileCacheTTL:     getDuration("PROFILE_CACHE_TTL", 30*time.Minute),
		ExtractionRecordTTL: getDuration("EXTRACTION_RECORD_TTL", 90*24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
