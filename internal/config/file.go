package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const fileHeader = `# webwire configuration
#
# Every key can be overridden with a WEBWIRE_ environment variable,
# e.g. WEBWIRE_LOGGING_LEVEL=debug for logging.level.

`

// WriteDefault writes the default configuration to path as YAML. It refuses
// to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Encode renders cfg as YAML.
func Encode(cfg *Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Watch calls fn with the reloaded configuration each time the config file
// is written. Reloads that fail validation are passed to onError instead;
// onError may be nil.
func Watch(fn func(*Config), onError func(error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		fn(cfg)
	})
	viper.WatchConfig()
}
