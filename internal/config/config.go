// Package config loads and validates the client configuration from the
// environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP surface
	Port string

	// Remote transaction service
	DataBackend string // "rest" or "memory"
	BackendURL  string

	// Object storage (receipt uploads)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	// Camera source for the scan flow
	CameraDir string

	// Event publishing (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DataBackend: getEnv("DATA_BACKEND", "rest"),
		BackendURL:  getEnv("BACKEND_URL", ""),

		S3Region:    getEnv("S3_REGION", ""),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),

		CameraDir: getEnv("RECEIPT_CAMERA_DIR", "./camera"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "perfin"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_events"),
	}
}

// Validate collects every configuration problem so the process can fail
// fast with one complete report instead of dying on the first request.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "rest":
		if c.BackendURL == "" {
			errors = append(errors, "BACKEND_URL is required when using the rest backend")
		} else if parsed, err := url.Parse(c.BackendURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid backend URL '%s': %v", c.BackendURL, err))
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid backend URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
		}
	case "memory":
		// Self-contained, nothing to validate.
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [rest memory]", c.DataBackend))
	}

	// The upload path must never attempt a request with empty credentials.
	if c.S3Region == "" {
		errors = append(errors, "S3_REGION is required for receipt uploads")
	}
	if c.S3Bucket == "" {
		errors = append(errors, "S3_BUCKET is required for receipt uploads")
	}
	if c.S3AccessKey == "" {
		errors = append(errors, "S3_ACCESS_KEY is required for receipt uploads")
	}
	if c.S3SecretKey == "" {
		errors = append(errors, "S3_SECRET_KEY is required for receipt uploads")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
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
