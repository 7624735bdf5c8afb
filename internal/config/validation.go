package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration values.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

// Validate validates the entire configuration and returns any errors.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = make(ValidationErrors, 0)

	v.validateRunnerConfig(&cfg.Runner)
	v.validatePacingConfig(&cfg.Pacing)
	v.validateLoggingConfig(&cfg.Logging)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) validateRunnerConfig(cfg *RunnerConfig) {
	if cfg.Scenario == "" {
		v.addError("runner.scenario", "scenario name is required")
	}
	if cfg.VUs <= 0 {
		v.addError("runner.vus", "vus must be positive")
	}
	if cfg.Iterations <= 0 {
		v.addError("runner.iterations", "iterations must be positive")
	}
	if cfg.Workers < 0 {
		v.addError("runner.workers", "workers must be non-negative")
	}
	if cfg.StartSpread < 0 {
		v.addError("runner.start_spread", "start spread must be non-negative")
	}
	if cfg.GracefulStop < 0 {
		v.addError("runner.graceful_stop", "graceful stop must be non-negative")
	}
}

func (v *Validator) validatePacingConfig(cfg *PacingConfig) {
	if cfg.ThinkTime < 0 {
		v.addError("pacing.think_time", "think time must be non-negative")
	}
	if cfg.MaxDrift < 0 {
		v.addError("pacing.max_drift", "max drift must be non-negative")
	}
}

func (v *Validator) validateLoggingConfig(cfg *LoggingConfig) {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if cfg.Level == "" {
		v.addError("logging.level", "log level is required")
	} else if !validLevels[strings.ToLower(cfg.Level)] {
		v.addError("logging.level", fmt.Sprintf("invalid log level '%s', must be one of: debug, info, warn, error", cfg.Level))
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}
	if cfg.Format == "" {
		v.addError("logging.format", "log format is required")
	} else if !validFormats[strings.ToLower(cfg.Format)] {
		v.addError("logging.format", fmt.Sprintf("invalid log format '%s', must be one of: json, console", cfg.Format))
	}

	validOutputs := map[string]bool{
		"stdout": true,
		"stderr": true,
		"file":   true,
		"both":   true,
	}
	if !validOutputs[strings.ToLower(cfg.Output)] {
		v.addError("logging.output", fmt.Sprintf("invalid log output '%s', must be one of: stdout, stderr, file, both", cfg.Output))
	}
	if (cfg.Output == "file" || cfg.Output == "both") && cfg.FilePath == "" {
		v.addError("logging.file_path", "file path is required when logging to a file")
	}
}

// Validate validates the configuration and returns any errors.
// This is a convenience method on Config.
func (c *Config) Validate() error {
	return NewValidator().Validate(c)
}
