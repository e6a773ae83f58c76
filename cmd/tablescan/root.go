package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix prefixes environment overrides, e.g. TABLESCAN_LISTEN or
// TABLESCAN_S3_ENDPOINT.
const envPrefix = "TABLESCAN"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "tablescan",
	Short: "Read table scan tasks and serve them over Arrow Flight",
	Long: `tablescan converts Avro schemas to engine schemas, reads Avro data files
as units of work and serves units of work to Flight clients.

Configuration is read from --config (YAML, JSON or TOML), then from
TABLESCAN_* environment variables, then from flags.

Examples:
  tablescan schema events.avsc
  tablescan read --parallel 4 data/*.avro
  tablescan serve --config tablescan.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig merges the config file, environment and the flags of cmd.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", configFile, err)
			}
		}
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
