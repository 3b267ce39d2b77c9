package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Snapshot storage
	DataBackend  string
	DataDir      string
	SQLiteDBPath string

	// Write policy: reject records whose category is not registered
	StrictCategories bool

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Backup worker
	BackupDir      string
	BackupInterval time.Duration
	BackupKeep     int

	// Google Sheets mirror (optional)
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "file"),
		DataDir:      getEnv("DATA_DIR", "./data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/jizhangxt.db"),

		StrictCategories: getEnvBool("STRICT_CATEGORIES", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "jizhangxt"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "snapshot_changes"),

		BackupDir:      getEnv("BACKUP_DIR", "./backups"),
		BackupInterval: getEnvDuration("BACKUP_INTERVAL", 15*time.Minute),
		BackupKeep:     getEnvInt("BACKUP_KEEP", 30),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
	}

	return cfg
}

// MirrorConfigured reports whether the optional Google Sheets mirror
// has enough configuration to run.
func (c *Config) MirrorConfigured() bool {
	if c.GoogleSpreadsheetID == "" || c.GoogleSheetName == "" {
		return false
	}
	return c.GoogleCredentialsFile != "" || c.GoogleCredentialsJSON != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"file", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate file backend configuration
	if c.DataBackend == "file" && c.DataDir == "" {
		errors = append(errors, "data directory cannot be empty when using file backend")
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate backup worker configuration
	if c.BackupDir == "" {
		errors = append(errors, "backup directory cannot be empty")
	}
	if c.BackupInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid backup interval %v: must be at least 1 second", c.BackupInterval))
	} else if c.BackupInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid backup interval %v: must be at most 24 hours", c.BackupInterval))
	}
	if c.BackupKeep < 1 {
		errors = append(errors, fmt.Sprintf("invalid backup retention %d: must be at least 1", c.BackupKeep))
	}

	// Validate the Sheets mirror when partially configured
	mirrorVars := []string{c.GoogleSpreadsheetID, c.GoogleSheetName}
	hasMirrorTarget := mirrorVars[0] != "" || mirrorVars[1] != ""
	if hasMirrorTarget {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when a sheet name is configured")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is configured")
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
			errors = append(errors, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for the sheets mirror")
		}
		if c.GoogleCredentialsFile != "" {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
