package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	MLService struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int64  `yaml:"timeout_seconds"`
	} `yaml:"ml_service"`
	Detection DetectionConfig `yaml:"detection"`
	Auth      struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Notifier struct {
		Enabled          bool   `yaml:"enabled"`
		TelegramBotToken string `yaml:"telegram_bot_token"`
		ReviewerChatID   int64  `yaml:"reviewer_chat_id"`
	} `yaml:"notifier"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// DetectionConfig carries the calibration values injected into the scan
// interpreter. Defaults mirror the production model service.
type DetectionConfig struct {
	TextThreshold       float64 `yaml:"text_threshold"`
	PhishingThreshold   float64 `yaml:"phishing_threshold"`
	VeryHighConfidence  float64 `yaml:"very_high_confidence"`
	ShortMessagePenalty float64 `yaml:"short_message_penalty"`
	MinWordsForCheck    int     `yaml:"min_words_for_check"`
	SafeGreetingBypass  bool    `yaml:"safe_greeting_bypass"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.MLService.TimeoutSeconds == 0 {
		c.MLService.TimeoutSeconds = 30
	}
	if c.Detection.TextThreshold == 0 {
		c.Detection.TextThreshold = 0.80
	}
	if c.Detection.PhishingThreshold == 0 {
		c.Detection.PhishingThreshold = 0.65
	}
	if c.Detection.VeryHighConfidence == 0 {
		c.Detection.VeryHighConfidence = 0.90
	}
	if c.Detection.ShortMessagePenalty == 0 {
		c.Detection.ShortMessagePenalty = 0.6
	}
	if c.Detection.MinWordsForCheck == 0 {
		c.Detection.MinWordsForCheck = 3
	}
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
}
