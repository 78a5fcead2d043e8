package common

import (
	"os"
	"strconv"
	"time"

	"github.com/claimspipe/billamounts/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	Pipeline PipelineConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	LocalPath        string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract           string
	TesseractLang       string
	TessdataDir         string
	PSM                 int
	OEM                 int
	EnableTSVConfidence bool
	ArtifactCacheDir    string
}

// PipelineConfig holds thresholds and defaults for the extraction pipeline
type PipelineConfig struct {
	DefaultCurrency  string
	MinOCRConfidence float64
	MaxAmountCeiling float64
	RulesPath        string
	ValidateSchema   bool
}

// IngestConfig holds batch-ingestion configuration for the daemon
type IngestConfig struct {
	InboxDir     string
	ScanInterval time.Duration
	Workers      int
	QueueSize    int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			LocalPath:        getEnv("LOCAL_DB_PATH", "./billamounts.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		OCR: OCRConfig{
			Tesseract:           getEnv("TESSERACT", "tesseract"),
			TesseractLang:       getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:         getEnv("TESSDATA_PREFIX", ""),
			PSM:                 getEnvAsInt("TESSERACT_PSM", 0),
			OEM:                 getEnvAsInt("TESSERACT_OEM", 0),
			EnableTSVConfidence: getEnvAsBool("OCR_TSV_CONFIDENCE", true),
			ArtifactCacheDir:    getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
		},
		Pipeline: PipelineConfig{
			DefaultCurrency:  getEnv("DEFAULT_CURRENCY", string(constants.DefaultCurrency)),
			MinOCRConfidence: getEnvAsFloat64("MIN_OCR_CONFIDENCE", 0.5),
			MaxAmountCeiling: getEnvAsFloat64("MAX_AMOUNT_CEILING", 10_000_000),
			RulesPath:        getEnv("RULES_PATH", ""),
			ValidateSchema:   getEnvAsBool("VALIDATE_RESULT_SCHEMA", false),
		},
		Ingest: IngestConfig{
			InboxDir:     getEnv("INBOX_DIR", "./inbox"),
			ScanInterval: getEnvAsDuration("SCAN_INTERVAL", 30*time.Second),
			Workers:      getEnvAsInt("INGEST_WORKERS", 4),
			QueueSize:    getEnvAsInt("INGEST_QUEUE_SIZE", 256),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if _, ok := constants.ParseCurrency(c.Pipeline.DefaultCurrency); !ok {
		return NewAppError("CONFIG_ERROR", "DEFAULT_CURRENCY must be one of INR, USD, EUR, GBP", ErrInvalidInput)
	}
	if c.Pipeline.MinOCRConfidence < 0 || c.Pipeline.MinOCRConfidence > 1 {
		return NewAppError("CONFIG_ERROR", "MIN_OCR_CONFIDENCE must be in [0,1]", ErrInvalidInput)
	}
	if c.Pipeline.MaxAmountCeiling <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_AMOUNT_CEILING must be positive", ErrInvalidInput)
	}
	if c.Ingest.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "INGEST_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
