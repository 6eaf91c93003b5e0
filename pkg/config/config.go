// Package config loads YAML configuration through viper with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config gives read access to loaded settings.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringMap(key string) map[string]interface{}
	GetAll() map[string]interface{}
	// Unmarshal decodes all settings into out using mapstructure tags.
	Unmarshal(out interface{}) error
}

type viperConfig struct {
	v *viper.Viper
}

func (c *viperConfig) GetString(key string) string {
	return c.v.GetString(key)
}

func (c *viperConfig) GetInt(key string) int {
	return c.v.GetInt(key)
}

func (c *viperConfig) GetBool(key string) bool {
	return c.v.GetBool(key)
}

func (c *viperConfig) GetStringMap(key string) map[string]interface{} {
	return c.v.GetStringMap(key)
}

func (c *viperConfig) GetAll() map[string]interface{} {
	return c.v.AllSettings()
}

func (c *viperConfig) Unmarshal(out interface{}) error {
	return c.v.Unmarshal(out)
}

const configDir = "configs"

// Load reads the configuration of serviceName.
//
// CONFIG_PATH may name a file or a directory. Without it the file is looked up
// as configs/{APP_ENV}/{service}.yaml, then configs/{service}.yaml.
// Environment variables prefixed with the upper-cased service name override
// file values, with dots replaced by underscores (BIBPAY_DATABASE_HOST).
// Keys present in defaults are always bindable from the environment, even when
// the file does not mention them.
func Load(serviceName string, defaults map[string]interface{}) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(serviceName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	configPath := os.Getenv("CONFIG_PATH")
	if info, err := os.Stat(configPath); configPath != "" && err == nil && !info.IsDir() {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(serviceName)
		if configPath != "" {
			v.AddConfigPath(configPath)
		}
		v.AddConfigPath(filepath.Join(configDir, env))
		v.AddConfigPath(configDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		// No file at the default locations: run on defaults and environment only.
	}

	return &viperConfig{v: v}, nil
}
