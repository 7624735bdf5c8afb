// Package config provides property-based tests for configuration handling.
// Property: for any valid Config, serializing it and then deserializing
// should produce an equivalent object.
package config

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestConfigRoundTripProperty checks deserialize(serialize(config)) == config.
func TestConfigRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("config round-trip preserves data", prop.ForAll(
		func(config *Config) bool {
			yamlBytes, err := config.Serialize()
			if err != nil {
				return false
			}

			parsed, err := ParseConfig(yamlBytes)
			if err != nil {
				return false
			}

			return *config == *parsed
		},
		genConfig(),
	))

	properties.TestingRun(t)
}

// TestGeneratedConfigsAreValid checks the generators only produce configs the
// validator accepts.
func TestGeneratedConfigsAreValid(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("generated config validates", prop.ForAll(
		func(config *Config) bool {
			return config.Validate() == nil
		},
		genConfig(),
	))

	properties.TestingRun(t)
}

func genConfig() gopter.Gen {
	return gopter.CombineGens(
		genRunnerConfig(),
		genPacingConfig(),
		gen.OneConstOf("debug", "info", "warn", "error"),
		gen.OneConstOf("json", "console"),
	).Map(func(values []interface{}) *Config {
		cfg := DefaultConfig()
		cfg.Runner = values[0].(RunnerConfig)
		cfg.Pacing = values[1].(PacingConfig)
		cfg.Logging.Level = values[2].(string)
		cfg.Logging.Format = values[3].(string)
		return cfg
	})
}

func genRunnerConfig() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("synthetic", "checkout", "browse"),
		gen.IntRange(1, 10000),
		gen.IntRange(1, 100),
		gen.IntRange(0, 512),
		gen.IntRange(0, 60000),
		gen.IntRange(0, 120),
	).Map(func(values []interface{}) RunnerConfig {
		return RunnerConfig{
			Scenario:     values[0].(string),
			VUs:          values[1].(int),
			Iterations:   values[2].(int),
			Workers:      values[3].(int),
			StartSpread:  time.Duration(values[4].(int)) * time.Millisecond,
			GracefulStop: time.Duration(values[5].(int)) * time.Second,
		}
	})
}

func genPacingConfig() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 5000),
		gen.IntRange(0, 10000),
	).Map(func(values []interface{}) PacingConfig {
		return PacingConfig{
			ThinkTime: time.Duration(values[0].(int)) * time.Millisecond,
			MaxDrift:  time.Duration(values[1].(int)) * time.Millisecond,
		}
	})
}
