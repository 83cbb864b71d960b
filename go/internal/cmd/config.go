package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Realtime struct {
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
		ConsumerName  string `yaml:"consumer_name"`
		MaxAgeHours   int    `yaml:"max_age_hours"`
	} `yaml:"realtime"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// defaultConfig fills in the realtime settings when no config file is
// present.
func defaultConfig() *Config {
	var config Config
	config.Realtime.StreamName = "PAGEANT_EVENTS"
	config.Realtime.SubjectPrefix = "pageant.events"
	config.Realtime.ConsumerName = "pageant-hub"
	config.Realtime.MaxAgeHours = 24
	return &config
}

func (c *Config) maxAge() time.Duration {
	return time.Duration(c.Realtime.MaxAgeHours) * time.Hour
}
