package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3001"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database (optional; usage tracking is disabled when empty)
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Analyzer provider
	ProviderType string `envconfig:"PROVIDER_TYPE" default:"mock"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Result cache and rate limiting (active only with a database)
	CacheTTL           time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"0"`

	// Detection client (kiosk side)
	DetectURL     string        `envconfig:"DETECT_URL" default:"http://localhost:3001"`
	DetectTimeout time.Duration `envconfig:"DETECT_TIMEOUT" default:"30s"`

	// Camera (kiosk side)
	CameraURL       string `envconfig:"CAMERA_URL"`
	CameraWidth     int    `envconfig:"CAMERA_WIDTH" default:"1280"`
	CameraHeight    int    `envconfig:"CAMERA_HEIGHT" default:"720"`
	CameraFrameRate int    `envconfig:"CAMERA_FRAME_RATE" default:"60"`

	// Kiosk surface
	KioskPort       int           `envconfig:"KIOSK_PORT" default:"3000"`
	NotificationTTL time.Duration `envconfig:"NOTIFICATION_TTL" default:"5s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
