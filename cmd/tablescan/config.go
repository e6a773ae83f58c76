package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/hugr-lab/tablescan-go/auth"
	"github.com/hugr-lab/tablescan-go/encryption"
	"github.com/hugr-lab/tablescan-go/fileio"
	"github.com/hugr-lab/tablescan-go/scan"
)

// Config is the CLI configuration.
type Config struct {
	Listen                   string `mapstructure:"listen"`
	Address                  string `mapstructure:"address"`
	MetricsListen            string `mapstructure:"metrics-listen"`
	LogLevel                 string `mapstructure:"log-level"`
	BatchSize                int    `mapstructure:"batch-size"`
	MaxMessageSize           int    `mapstructure:"max-message-size"`
	ReadTimestampWithoutZone bool   `mapstructure:"read-timestamp-without-zone"`

	// Tables maps table names to their definition.
	Tables map[string]TableConfig `mapstructure:"tables"`

	Encryption EncryptionConfig `mapstructure:"encryption"`
	S3         S3Config         `mapstructure:"s3"`
	Auth       AuthConfig       `mapstructure:"auth"`
}

// TableConfig defines a served table.
type TableConfig struct {
	// Schema is the path of the table's .avsc file.
	Schema string `mapstructure:"schema"`

	// Location is the prefix the table's files live under. Tickets naming
	// other files are refused.
	Location string `mapstructure:"location"`
}

// EncryptionConfig holds local KMS master keys, base64 encoded and keyed by id.
type EncryptionConfig struct {
	MasterKeys map[string]string `mapstructure:"master-keys"`
}

// S3Config enables s3:// locations when Endpoint is set.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access-key-id"`
	SecretAccessKey string `mapstructure:"secret-access-key"`
	Region          string `mapstructure:"region"`
	UseSSL          bool   `mapstructure:"use-ssl"`
}

// AuthConfig maps identities to their accepted bearer token. Tokens are
// values because config keys are case-insensitive.
type AuthConfig struct {
	Tokens map[string]string `mapstructure:"tokens"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":50051")
	v.SetDefault("log-level", "info")
	v.SetDefault("batch-size", scan.DefaultBatchSize)
}

func (c *Config) validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", c.BatchSize)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	for name, t := range c.Tables {
		if t.Schema == "" {
			return fmt.Errorf("table %s: schema path is required", name)
		}
	}
	for id, key := range c.Encryption.MasterKeys {
		raw, err := base64.StdEncoding.DecodeString(key)
		if err != nil {
			return fmt.Errorf("master key %s: %w", id, err)
		}
		if len(raw) != encryption.KeySize {
			return fmt.Errorf("master key %s: want %d bytes, got %d", id, encryption.KeySize, len(raw))
		}
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log-level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func (c *Config) logger() *slog.Logger {
	level, _ := c.level()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// fileIO routes bare paths and file:// to the local filesystem and, when
// configured, s3 locations to the object store.
func (c *Config) fileIO() (fileio.FileIO, error) {
	router := fileio.NewRouter().Register(fileio.NewLocalFS(), "", "file")
	if c.S3.Endpoint == "" {
		return router, nil
	}
	s3, err := fileio.NewS3(fileio.S3Config{
		Endpoint:        c.S3.Endpoint,
		AccessKeyID:     c.S3.AccessKeyID,
		SecretAccessKey: c.S3.SecretAccessKey,
		Region:          c.S3.Region,
		UseSSL:          c.S3.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return router.Register(s3, "s3", "s3a", "s3n"), nil
}

// encryption returns a standard manager over the configured master keys, or
// nil when none are configured.
func (c *Config) encryption(logger *slog.Logger) (encryption.Manager, error) {
	if len(c.Encryption.MasterKeys) == 0 {
		return nil, nil
	}
	keys := make(map[string][]byte, len(c.Encryption.MasterKeys))
	for id, key := range c.Encryption.MasterKeys {
		raw, err := base64.StdEncoding.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("master key %s: %w", id, err)
		}
		keys[id] = raw
	}
	kms, err := encryption.NewLocalKMS(keys)
	if err != nil {
		return nil, err
	}
	return encryption.NewStandard(kms, logger), nil
}

func (c *Config) authenticator() auth.Authenticator {
	if len(c.Auth.Tokens) == 0 {
		return nil
	}
	tokens := make(auth.StaticTokens, len(c.Auth.Tokens))
	for identity, token := range c.Auth.Tokens {
		tokens[token] = identity
	}
	return tokens
}
