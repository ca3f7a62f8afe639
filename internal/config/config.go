package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	JSONLog  bool   `mapstructure:"json"`

	// Browser
	Driver     string   `mapstructure:"driver" validate:"oneof=chrome static"`
	Headless   bool     `mapstructure:"headless"`
	ChromePath string   `mapstructure:"chrome_path" validate:"omitempty,file"`
	UserAgent  string   `mapstructure:"user_agent" validate:"required"`
	Proxy      string   `mapstructure:"proxy" validate:"omitempty,url"`
	Headers    []string `mapstructure:"headers"`

	// Session
	Width         int           `mapstructure:"width" validate:"min=1"`
	Height        int           `mapstructure:"height" validate:"min=1"`
	ImplicitWait  time.Duration `mapstructure:"implicit_wait" validate:"min=0"`
	TeardownDelay time.Duration `mapstructure:"teardown_delay" validate:"min=0"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`

	// Rate Limiting
	NavigationRPS   float64 `mapstructure:"navigation_rps" validate:"gt=0"`
	NavigationBurst int     `mapstructure:"navigation_burst" validate:"min=1"`

	// Sites
	Site      string `mapstructure:"site" validate:"required"`
	SitesFile string `mapstructure:"sites_file" validate:"omitempty,file"`

	// Cookies and persistence
	Session     string `mapstructure:"session"`
	DatabaseURL string `mapstructure:"database_url"`
}

// Load builds a Config from defaults, a .env file, an optional config file,
// AFIND_* environment variables and CLI flags, in increasing precedence.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	configFile := ""
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}
	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		bindFlags(v, cmd)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cmd != nil {
		applyVerbosity(&cfg, cmd)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// readConfigFile reads path, or looks for .afind.yaml in the working and
// home directories when path is empty. Only an explicit path must exist.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(DefaultConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func applyVerbosity(cfg *Config, cmd *cobra.Command) {
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "debug"
	}
	if f := cmd.Flags().Lookup("quiet"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "error"
	}
}
