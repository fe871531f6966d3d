package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAPIHost              = "https://api.easyship.com"
	DefaultSignatureHeader      = "X-Easyship-Signature"
	DefaultAPITimeout           = 30 * time.Second
	DefaultMaxResponseBodyBytes = int64(10 << 20)
	DefaultWebhookMaxBodyBytes  = int64(1 << 20)
	DefaultReplayTTL            = 10 * time.Minute
)

type APIConfig struct {
	Host                 string        `koanf:"host" mapstructure:"host"`
	Token                string        `koanf:"token" mapstructure:"token"`
	UserAgent            string        `koanf:"user_agent" mapstructure:"user_agent"`
	Timeout              time.Duration `koanf:"timeout" mapstructure:"timeout"`
	MaxResponseBodyBytes int64         `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
}

type WebhookConfig struct {
	SecretKeys      []string      `koanf:"secret_keys" mapstructure:"secret_keys"`
	SignatureHeader string        `koanf:"signature_header" mapstructure:"signature_header"`
	Leeway          time.Duration `koanf:"leeway" mapstructure:"leeway"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes" mapstructure:"max_body_bytes"`
	// DeferAcknowledgement keeps the receiver from answering 200 as soon as
	// the payload validates; the status is written after fan-out instead.
	DeferAcknowledgement bool          `koanf:"defer_acknowledgement" mapstructure:"defer_acknowledgement"`
	ReplayTTL            time.Duration `koanf:"replay_ttl" mapstructure:"replay_ttl"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name"`
	API         APIConfig     `koanf:"api" mapstructure:"api"`
	Webhooks    WebhookConfig `koanf:"webhooks" mapstructure:"webhooks"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "easyship",
		API: APIConfig{
			Host:                 DefaultAPIHost,
			UserAgent:            "go-easyship",
			Timeout:              DefaultAPITimeout,
			MaxResponseBodyBytes: DefaultMaxResponseBodyBytes,
		},
		Webhooks: WebhookConfig{
			SignatureHeader: DefaultSignatureHeader,
			MaxBodyBytes:    DefaultWebhookMaxBodyBytes,
			ReplayTTL:       DefaultReplayTTL,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if host := strings.TrimSpace(c.API.Host); host != "" {
		parsed, err := url.Parse(host)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("core: api.host %q is invalid", host)
		}
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("core: api.timeout must not be negative")
	}
	if c.API.MaxResponseBodyBytes < 0 {
		return fmt.Errorf("core: api.max_response_body_bytes must not be negative")
	}
	for i, key := range c.Webhooks.SecretKeys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("core: webhooks.secret_keys[%d] is required", i)
		}
	}
	if c.Webhooks.Leeway < 0 {
		return fmt.Errorf("core: webhooks.leeway must not be negative")
	}
	if c.Webhooks.MaxBodyBytes < 0 {
		return fmt.Errorf("core: webhooks.max_body_bytes must not be negative")
	}
	return nil
}
