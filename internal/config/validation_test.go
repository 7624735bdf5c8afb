package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Valid(t *testing.T) {
	assert.NoError(t, NewValidator().Validate(DefaultConfig()))
}

func TestValidator_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Runner.Scenario = ""
	cfg.Runner.VUs = 0
	cfg.Runner.Iterations = -1
	cfg.Pacing.ThinkTime = -1
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"runner.scenario",
		"runner.vus",
		"runner.iterations",
		"pacing.think_time",
		"logging.level",
	}, fields)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestValidator_FileOutputNeedsPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Output = "file"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.file_path")

	cfg.Logging.FilePath = "/var/log/vusession.log"
	assert.NoError(t, cfg.Validate())
}

func TestValidator_Output(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Output = "syslog"
	assert.Error(t, cfg.Validate())
}
