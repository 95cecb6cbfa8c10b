// Package config loads zotcast configuration from a TOML file with
// environment overrides for secrets. Validation failures are configuration
// errors: the process must exit non-zero before any detection starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/zotcast/zotcast/internal/core/domain"
)

const (
	// DefaultConfigDir is the directory under the user's home.
	DefaultConfigDir = ".zotcast"

	// DefaultConfigFile is the config file name.
	DefaultConfigFile = "config.toml"
)

// Environment variables overriding file values. Secrets should live here
// rather than in the file.
const (
	EnvZoteroAPIKey = "ZOTCAST_ZOTERO_API_KEY"
	EnvSlackToken   = "ZOTCAST_SLACK_TOKEN"
	EnvSMTPPassword = "ZOTCAST_SMTP_PASSWORD"
	EnvStatePath    = "ZOTCAST_STATE_PATH"
)

// Duration is a time.Duration that unmarshals from TOML strings like "500ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full zotcast configuration.
type Config struct {
	Zotero   ZoteroConfig   `toml:"zotero"`
	Slack    SlackConfig    `toml:"slack"`
	Email    EmailConfig    `toml:"email"`
	Mentions MentionsConfig `toml:"mentions"`
	Retry    RetryConfig    `toml:"retry"`
	State    StateConfig    `toml:"state"`
	Logging  LoggingConfig  `toml:"logging"`
}

// ZoteroConfig locates the source library.
type ZoteroConfig struct {
	// LibraryID is the numeric library identifier.
	LibraryID string `toml:"library_id"`

	// LibraryType is "group" or "user".
	LibraryType string `toml:"library_type"`

	// APIKey authenticates against the source API.
	APIKey string `toml:"api_key"`

	// PageSize is the items-per-request page size.
	PageSize int `toml:"page_size"`

	// RequestDelay paces consecutive source API calls.
	RequestDelay Duration `toml:"request_delay"`
}

// SlackConfig configures chat delivery.
type SlackConfig struct {
	// Token is the bot token used for joining and posting.
	Token string `toml:"token"`

	// MessageDelay is the fixed spacing between consecutive posts.
	MessageDelay Duration `toml:"message_delay"`
}

// EmailConfig configures the aggregated email delivery.
type EmailConfig struct {
	// Enabled turns email delivery on.
	Enabled bool `toml:"enabled"`

	// Host is the SMTP server host.
	Host string `toml:"host"`

	// Port is the SMTP server port.
	Port int `toml:"port"`

	// Username authenticates the SMTP session.
	Username string `toml:"username"`

	// Password authenticates the SMTP session.
	Password string `toml:"password"`

	// From is the sender address.
	From string `toml:"from"`

	// Recipients lists destination addresses; one message goes to each.
	Recipients []string `toml:"recipients"`

	// AbortOnFailure makes a recipient failure fatal for the run instead
	// of a counted delivery failure (the legacy behaviour).
	AbortOnFailure bool `toml:"abort_on_failure"`
}

// MentionsConfig selects the mention resolution mode.
type MentionsConfig struct {
	// Mode is "table" (flat name/id CSV over HTTP) or "fuzzy" (similarity
	// match against the chat member directory).
	Mode string `toml:"mode"`

	// TableURL is the CSV location for table mode.
	TableURL string `toml:"table_url"`

	// LowercaseUnmatched lowercases mention-looking tokens that resolve
	// to nothing, instead of leaving them verbatim. Kept for parity with
	// a deprecated experiment.
	LowercaseUnmatched bool `toml:"lowercase_unmatched"`
}

// RetryConfig shapes the delivery retry policy.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per message.
	MaxAttempts int `toml:"max_attempts"`

	// InitialDelay is the first backoff wait; it doubles per attempt.
	InitialDelay Duration `toml:"initial_delay"`
}

// StateConfig locates the watermark table and its remote home.
type StateConfig struct {
	// Path is the local state CSV location.
	Path string `toml:"path"`

	// DriveFileID is the remote file for state pull/push. Empty disables
	// the transfer commands.
	DriveFileID string `toml:"drive_file_id"`

	// ServiceAccountFile is the service-account JSON used for transfers.
	ServiceAccountFile string `toml:"service_account_file"`
}

// LoggingConfig configures the log sinks.
type LoggingConfig struct {
	// Level is the minimum log level.
	Level string `toml:"level"`

	// Console enables the stderr console writer.
	Console bool `toml:"console"`

	// File, when non-empty, appends line-JSON logs to this path.
	File string `toml:"file"`
}

// Default returns the built-in configuration. Load layers the file and
// environment on top of it.
func Default() Config {
	return Config{
		Zotero: ZoteroConfig{
			LibraryType:  "group",
			PageSize:     100,
			RequestDelay: Duration(500 * time.Millisecond),
		},
		Slack: SlackConfig{
			MessageDelay: Duration(time.Second),
		},
		Email: EmailConfig{
			Port: 587,
		},
		Mentions: MentionsConfig{
			Mode: "table",
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: Duration(time.Second),
		},
		State: StateConfig{
			Path: "state.csv",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// DefaultPath returns ~/.zotcast/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads the file at path on top of defaults, then applies environment
// overrides. A missing file at the default location is fine (first run);
// explicit paths must exist.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults plus environment.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvZoteroAPIKey); v != "" {
		c.Zotero.APIKey = v
	}
	if v := os.Getenv(EnvSlackToken); v != "" {
		c.Slack.Token = v
	}
	if v := os.Getenv(EnvSMTPPassword); v != "" {
		c.Email.Password = v
	}
	if v := os.Getenv(EnvStatePath); v != "" {
		c.State.Path = v
	}
}

// Validate checks the fields every command needs. Delivery-specific checks
// live in ValidateDelivery so inspection commands and dry runs do not demand
// chat credentials.
func (c *Config) Validate() error {
	if c.Zotero.LibraryID == "" {
		return fmt.Errorf("%w: zotero.library_id", domain.ErrNoCredentials)
	}
	if c.Zotero.LibraryType != "group" && c.Zotero.LibraryType != "user" {
		return fmt.Errorf("zotero.library_type must be \"group\" or \"user\", got %q", c.Zotero.LibraryType)
	}
	if c.Zotero.APIKey == "" {
		return fmt.Errorf("%w: zotero.api_key (or %s)", domain.ErrNoCredentials, EnvZoteroAPIKey)
	}
	if c.Zotero.PageSize < 1 {
		return fmt.Errorf("zotero.page_size must be positive, got %d", c.Zotero.PageSize)
	}
	if c.State.Path == "" {
		return fmt.Errorf("state.path must be set")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if mode := c.Mentions.Mode; mode != "table" && mode != "fuzzy" {
		return fmt.Errorf("mentions.mode must be \"table\" or \"fuzzy\", got %q", mode)
	}
	return nil
}

// ValidateDelivery checks the credentials a delivering (non-dry) run needs.
func (c *Config) ValidateDelivery() error {
	if c.Slack.Token == "" {
		return fmt.Errorf("%w: slack.token (or %s)", domain.ErrNoCredentials, EnvSlackToken)
	}
	if c.Email.Enabled {
		if c.Email.Host == "" {
			return fmt.Errorf("email.host must be set when email is enabled")
		}
		if c.Email.From == "" {
			return fmt.Errorf("email.from must be set when email is enabled")
		}
		if len(c.Email.Recipients) == 0 {
			return fmt.Errorf("email.recipients must not be empty when email is enabled")
		}
		for _, r := range c.Email.Recipients {
			if strings.TrimSpace(r) == "" {
				return fmt.Errorf("email.recipients contains a blank address")
			}
		}
	}
	return nil
}
