package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lin-Jiong-HDU/shellgate/internal/core/security"
	"github.com/spf13/viper"
)

const (
	ConfigFileName   = "config"
	ConfigFileType   = "yaml"
	ShellgateDirName = ".shellgate"
	EnvPrefix        = "SHELLGATE"
	DotEnvFileName   = ".env"
)

var config *Config

// Config holds the application configuration
type Config struct {
	Telegram TelegramConfig          `mapstructure:"telegram"`
	Security security.SecurityPolicy `mapstructure:"security"`
	Device   DeviceConfig            `mapstructure:"device"`
	Exec     ExecConfig              `mapstructure:"exec"`
	Log      LogConfig               `mapstructure:"log"`
}

// TelegramConfig holds the bot transport settings
type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	PollTimeout int    `mapstructure:"poll_timeout"`
}

// DeviceConfig holds the host identity shown to users
type DeviceConfig struct {
	Name string `mapstructure:"name"`
}

// ExecConfig holds shell execution settings
type ExecConfig struct {
	Shell     string `mapstructure:"shell"`
	Timeout   int    `mapstructure:"timeout"`
	MaxOutput int    `mapstructure:"max_output"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetConfigDir returns the shellgate config directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ShellgateDirName), nil
}

// InitConfig loads .env, ~/.shellgate/config.yaml and the environment.
func InitConfig() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig is InitConfig with an explicit config file. An empty configFile
// searches the shellgate config directory; a missing file there is fine, a
// missing explicit file is not.
func LoadConfig(configFile string) (*Config, error) {
	if err := LoadDotEnv(DotEnvFileName); err != nil {
		return nil, err
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		configDir, err := GetConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileType)
		v.AddConfigPath(configDir)
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// names used by existing deployments win over the prefixed ones
	_ = v.BindEnv("telegram.token", "TELEGRAM_BOT_TOKEN", "SHELLGATE_TELEGRAM_TOKEN")
	_ = v.BindEnv("security.allowed_users", "ALLOWED_USERS", "SHELLGATE_SECURITY_ALLOWED_USERS")
	_ = v.BindEnv("device.name", "DEVICE_NAME", "SHELLGATE_DEVICE_NAME")

	// Read config file (ignore if not exists)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyFallbacks()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	config = &cfg
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", 60)

	// Security defaults
	v.SetDefault("security.allowed_users", []string{})
	v.SetDefault("security.commands_file", "")
	v.SetDefault("security.directories_file", "")

	v.SetDefault("device.name", "")

	v.SetDefault("exec.shell", "")
	v.SetDefault("exec.timeout", 60)
	v.SetDefault("exec.max_output", 4000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// applyFallbacks fills values that depend on the host rather than on fixed
// defaults.
func (c *Config) applyFallbacks() {
	if c.Device.Name == "" {
		if host, err := os.Hostname(); err == nil {
			c.Device.Name = host
		}
	}

	defaults := security.DefaultPolicy()
	if c.Security.CommandsFile == "" {
		c.Security.CommandsFile = defaults.CommandsFile
	}
	if c.Security.DirectoriesFile == "" {
		c.Security.DirectoriesFile = defaults.DirectoriesFile
	}
}

// Validate rejects settings the gateway cannot run with.
func (c *Config) Validate() error {
	if c.Exec.Timeout <= 0 {
		return fmt.Errorf("exec.timeout must be positive, got %d", c.Exec.Timeout)
	}
	if c.Exec.MaxOutput <= 0 {
		return fmt.Errorf("exec.max_output must be positive, got %d", c.Exec.MaxOutput)
	}
	if c.Telegram.PollTimeout < 0 {
		return fmt.Errorf("telegram.poll_timeout must not be negative, got %d", c.Telegram.PollTimeout)
	}
	return nil
}

// GetConfig returns the loaded config
func GetConfig() *Config {
	return config
}

// LoadDotEnv copies KEY=VALUE pairs from path into the process environment.
// Variables that are already set are left alone; a missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}
	return nil
}
