package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Telegram struct {
		APIID       int    `yaml:"api_id"`
		APIHash     string `yaml:"api_hash"`
		Phone       string `yaml:"phone"`
		SessionFile string `yaml:"session_file"`
	} `yaml:"telegram"`
	Collector struct {
		PollInterval        int64 `yaml:"poll_interval_seconds"`
		ChannelProcessDelay int64 `yaml:"channel_process_delay_seconds"`
		FetchLimit          int   `yaml:"fetch_limit"`
	} `yaml:"collector"`
	OpenSearch struct {
		URL          string `yaml:"url"`
		Username     string `yaml:"username"`
		Password     string `yaml:"password"`
		MessageIndex string `yaml:"message_index"`
		LeakIndex    string `yaml:"leak_index"`
	} `yaml:"opensearch"`
	Minio struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"minio"`
	Classifier struct {
		StrongCredentialScore int `yaml:"strong_credential_score"`
	} `yaml:"classifier"`
	Alerts struct {
		MinSeverity      string `yaml:"min_severity"`
		TelegramBotToken string `yaml:"telegram_bot_token"`
		TelegramChatID   int64  `yaml:"telegram_chat_id"`
	} `yaml:"alerts"`
	Auth struct {
		JWTSecret       string `yaml:"jwt_secret"`
		TokenTTLMinutes int64  `yaml:"token_ttl_minutes"`
	} `yaml:"auth"`
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
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Telegram.SessionFile == "" {
		c.Telegram.SessionFile = "session.json"
	}
	if c.Collector.PollInterval == 0 {
		c.Collector.PollInterval = 300
	}
	if c.Collector.FetchLimit == 0 {
		c.Collector.FetchLimit = 100
	}
	if c.OpenSearch.MessageIndex == "" {
		c.OpenSearch.MessageIndex = "telegram-extracted-data"
	}
	if c.OpenSearch.LeakIndex == "" {
		c.OpenSearch.LeakIndex = "credential-leaks"
	}
	if c.Minio.Bucket == "" {
		c.Minio.Bucket = "leaks"
	}
	if c.Classifier.StrongCredentialScore == 0 {
		c.Classifier.StrongCredentialScore = 2
	}
	if c.Alerts.MinSeverity == "" {
		c.Alerts.MinSeverity = "high"
	}
	if c.Auth.TokenTTLMinutes == 0 {
		c.Auth.TokenTTLMinutes = 60
	}
}
