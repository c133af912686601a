package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ledgerline/mailtriage/internal/core/domain"
)

// Default configuration values.
const (
	// ConfigFileName is the TOML file read from the config directory.
	ConfigFileName = "config.toml"

	// DefaultConfigDirName is the directory under the user home.
	DefaultConfigDirName = ".mailtriage"

	// apiKeyEnv is consulted when the config file carries no API key.
	apiKeyEnv = "ANTHROPIC_API_KEY"
)

// Config is the full runtime configuration, loaded from TOML.
type Config struct {
	Mailbox    MailboxConfig    `toml:"mailbox"`
	Storage    StorageConfig    `toml:"storage"`
	Classifier ClassifierConfig `toml:"classifier"`
}

// MailboxConfig selects and configures the mail source.
type MailboxConfig struct {
	// Provider is "gmail" (default) or "imap".
	Provider string `toml:"provider"`

	// Query filters which Gmail messages are listed.
	Query string `toml:"query"`

	// Credentials is the path to the OAuth client credentials JSON.
	Credentials string `toml:"credentials"`

	// Token is the path to the stored OAuth token JSON.
	Token string `toml:"token"`

	IMAP IMAPConfig `toml:"imap"`
}

// IMAPConfig configures the IMAP provider.
type IMAPConfig struct {
	Address  string `toml:"address"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Folder   string `toml:"folder"`
}

// StorageConfig configures the blob store.
type StorageConfig struct {
	// Bucket is the GCS bucket name (required).
	Bucket string `toml:"bucket"`

	// EmailsPrefix and ResultsPrefix are the key prefixes for the two
	// pipeline stages.
	EmailsPrefix  string `toml:"emails_prefix"`
	ResultsPrefix string `toml:"results_prefix"`
}

// ClassifierConfig configures the LLM classifier.
type ClassifierConfig struct {
	// APIKey is the Anthropic API key. Falls back to ANTHROPIC_API_KEY.
	APIKey string `toml:"api_key"`

	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`

	// Workers is the classification pool size.
	Workers int `toml:"workers"`
}

// DefaultConfigDir returns ~/.mailtriage.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDirName), nil
}

// LoadConfig reads and validates the configuration file. If configDir is
// empty it defaults to ~/.mailtriage. A missing file is a startup error:
// the pipeline cannot run without a bucket and credentials.
func LoadConfig(configDir string) (*Config, error) {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	path := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no config file at %s", domain.ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mailbox.Provider == "" {
		c.Mailbox.Provider = "gmail"
	}
	if c.Storage.EmailsPrefix == "" {
		c.Storage.EmailsPrefix = "emails/"
	}
	if c.Storage.ResultsPrefix == "" {
		c.Storage.ResultsPrefix = "results/"
	}
	if c.Classifier.APIKey == "" {
		c.Classifier.APIKey = os.Getenv(apiKeyEnv)
	}
	if c.Classifier.Workers <= 0 {
		c.Classifier.Workers = 1
	}
}

func (c *Config) validate() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("%w: storage.bucket is required", domain.ErrMissingConfig)
	}
	if c.Classifier.APIKey == "" {
		return fmt.Errorf("%w: classifier.api_key is required (or set %s)", domain.ErrMissingConfig, apiKeyEnv)
	}

	switch c.Mailbox.Provider {
	case "gmail":
		// Credentials are resolved at connection time so a relative
		// path in the config stays usable.
	case "imap":
		if c.Mailbox.IMAP.Address == "" {
			return fmt.Errorf("%w: mailbox.imap.address is required for the imap provider", domain.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, c.Mailbox.Provider)
	}

	return nil
}
