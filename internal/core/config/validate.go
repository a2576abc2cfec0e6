package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("max_actual", c.MaxActual, maxActualInRange),
		criterio.Run("sync.interval", c.Sync.Interval, positiveDuration),
		criterio.Run("data_dir", c.DataDir, nonEmpty),
		c.validateCloud(),
	)
}

// ValidateDeep performs I/O validation on top of Validate: config file
// accessibility and data directory shape. The configPath argument may be
// empty to skip the config file check.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func (c *Config) validateCloud() error {
	if !c.CloudEnabled() {
		return nil
	}

	return criterio.ValidateStruct(
		criterio.Run("cloud.endpoint", c.Cloud.Endpoint, isHTTPURL),
		criterio.Run("cloud.access_token", c.Cloud.AccessToken, nonEmpty),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func maxActualInRange(n int) error {
	if n < 1 || n > 20 {
		return fmt.Errorf("must be between 1 and 20, got %d", n)
	}
	return nil
}

func positiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", d)
	}
	return nil
}

func nonEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func isHTTPURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http(s) URL")
	}
	return nil
}

func isDirectoryOrNotExist(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists but is not a directory", path)
	}
	return nil
}
