package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/hay-kot/criterio"
)

// ValidateDeep performs comprehensive validation of the configuration
// including backend reachability prerequisites and the config file itself.
// This calls Validate() first for basic structural validation, then adds
// field-level checks. The configPath argument specifies the config file
// location to validate (empty string skips the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("backend.base_url", c.Backend.BaseURL, validBaseURL),
		c.validateTimeouts(),
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

// validBaseURL checks the backend URL is absolute http(s).
func validBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	var errs criterio.FieldErrorsBuilder

	if c.Backend.TimeoutMS < 0 {
		errs = errs.Append("backend.timeout_ms", fmt.Errorf("cannot be negative"))
	}
	if c.Backend.TimeoutMS > 0 && c.Backend.TimeoutMS < 100 {
		errs = errs.Append("backend.timeout_ms", fmt.Errorf("below 100ms is almost certainly a misconfiguration"))
	}

	return errs.ToError()
}
