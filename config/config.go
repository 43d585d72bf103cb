// Package config loads mailprobe's runtime configuration: the domain
// allow-list, the probe sender address and the per-stage timeouts.
// The core pipeline receives these as plain inputs and never reads
// the environment itself.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAllowedDomains is the list of commonly used email providers
// probing is permitted for when no allow-list is configured.
var DefaultAllowedDomains = []string{
	"aol.com",
	"gmail.com",
	"hotmail.com",
	"icloud.com",
	"outlook.com",
	"yahoo.com",
	"zoho.com",
}

// Config holds the application configuration.
type Config struct {
	AllowedDomains []string      `mapstructure:"allowed_domains"`
	SenderEmail    string        `mapstructure:"sender_email"`
	HeloDomain     string        `mapstructure:"helo_domain"`
	SMTPPort       string        `mapstructure:"smtp_port"`
	DNSTimeout     time.Duration `mapstructure:"dns_timeout"`
	SMTPTimeout    time.Duration `mapstructure:"smtp_timeout"`
	Logging        LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from an optional "config.yaml" in the
// given directory. Environment variables with prefix MAILPROBE_
// override file values; for example MAILPROBE_SENDER_EMAIL overrides
// sender_email and MAILPROBE_ALLOWED_DOMAINS takes a comma-separated
// list. A missing config file is not an error: defaults plus the
// environment fully describe a working setup.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MAILPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so env-only overrides are picked up
	// by Unmarshal.
	v.SetDefault("allowed_domains", DefaultAllowedDomains)
	v.SetDefault("sender_email", "")
	v.SetDefault("helo_domain", "localhost")
	v.SetDefault("smtp_port", "25")
	v.SetDefault("dns_timeout", 5*time.Second)
	v.SetDefault("smtp_timeout", 10*time.Second)
	v.SetDefault("logging.level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Env vars arrive as comma-separated strings; normalize every
	// entry so "a.test, b.test" behaves like a YAML list.
	cfg.AllowedDomains = splitCSV(cfg.AllowedDomains)

	return &cfg, nil
}

func splitCSV(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		for _, p := range strings.Split(entry, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
