package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"8000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Analyzer
	AnalyzerType string `envconfig:"ANALYZER_TYPE" default:"deepface"`
	DeepFaceURL  string `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Enrollment store and probe scratch space
	EnrollmentDir string `envconfig:"ENROLLMENT_DIR" default:"./database"`
	TempDir       string `envconfig:"TEMP_DIR" default:""`

	// Pipeline policy
	MatchThreshold    float64 `envconfig:"MATCH_THRESHOLD" default:"0.6"`
	StrictDetection   bool    `envconfig:"STRICT_DETECTION" default:"false"`
	SoftImageLimit    int     `envconfig:"SOFT_IMAGE_LIMIT_BYTES" default:"5242880"`
	RecompressQuality int     `envconfig:"RECOMPRESS_QUALITY" default:"70"`
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
