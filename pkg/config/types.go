// Package config provides configuration loading and validation for ChatLens.
package config

import "time"

// Config is the root configuration structure loaded from YAML or TOML.
type Config struct {
	// StopWords replaces the built-in stop-word list when non-empty.
	StopWords []string `yaml:"stop_words,omitempty" toml:"stop_words"`

	// ExtraStopWords are appended to the active stop-word list.
	ExtraStopWords []string `yaml:"extra_stop_words,omitempty" toml:"extra_stop_words"`

	// MediaPlaceholders are message bodies exports use for attachments.
	MediaPlaceholders []string `yaml:"media_placeholders,omitempty" toml:"media_placeholders"`

	// TopWords is how many entries the common-words table keeps.
	TopWords int `yaml:"top_words,omitempty" toml:"top_words"`

	// TopUsers is how many entries the most-active-users table keeps.
	TopUsers int `yaml:"top_users,omitempty" toml:"top_users"`

	// User restricts statistics to one sender. "Overall" means everyone.
	User string `yaml:"user,omitempty" toml:"user"`

	Webhooks []WebhookConfig `yaml:"webhooks,omitempty" toml:"webhooks"`
}

// ActiveStopWords returns the stop-word list the analyzer should use.
func (c *Config) ActiveStopWords() []string {
	base := c.StopWords
	if len(base) == 0 {
		base = DefaultStopWords
	}
	out := make([]string, 0, len(base)+len(c.ExtraStopWords))
	out = append(out, base...)
	return append(out, c.ExtraStopWords...)
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnData fires only when the export produced records (default).
	WebhookTriggerOnData WebhookTrigger = "on_data"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty" toml:"name"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url" toml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty" toml:"token"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_data" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty" toml:"trigger"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty" toml:"timeout"`

	// Compress gzips the report body. Reports for long chats carry a large
	// daily timeline.
	Compress bool `yaml:"compress,omitempty" toml:"compress"`

	// Retries is how many more times a failed delivery is attempted.
	Retries int `yaml:"retries,omitempty" toml:"retries"`
}
