package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. It is built once at startup
// and threaded through constructors; no package reads the environment on
// its own.
type Config struct {
	OCR    OCRConfig
	LLM    LLMConfig
	Export ExportConfig
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string
	TessdataDir string
	PSM         int
	OEM         int
	Timeout     time.Duration
}

// LLMConfig holds normalization-related configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// ExportConfig holds spreadsheet export configuration
type ExportConfig struct {
	XLSXPath  string
	SheetName string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT_CMD", "tesseract"),
			Lang:        getEnv("TESSERACT_LANG", "eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			PSM:         getEnvAsInt("TESSERACT_PSM", 0),
			OEM:         getEnvAsInt("TESSERACT_OEM", 0),
			Timeout:     getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			Model:       getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
			APIKey:      firstEnv("GEMINI_API_KEY", "GOOGLE_AI_API_KEY"),
			BaseURL:     getEnv("GEMINI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second),
		},
		Export: ExportConfig{
			XLSXPath:  getEnv("EXCEL_OUTPUT_PATH", ""),
			SheetName: getEnv("EXCEL_SHEET_NAME", "Documents"),
		},
	}
}

// Validate checks the loaded configuration. The credential is required; it
// is never logged anywhere in the codebase.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return ConfigurationError("GEMINI_API_KEY (or GOOGLE_AI_API_KEY) is required")
	}
	if c.LLM.Model == "" {
		return ConfigurationError("GEMINI_MODEL must not be empty")
	}
	if c.OCR.Timeout <= 0 || c.LLM.Timeout <= 0 {
		return ConfigurationError("timeouts must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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
