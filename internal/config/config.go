package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"yqhp/vusession/pkg/logger"
)

// Config represents the complete configuration of a vusession run.
type Config struct {
	Runner  RunnerConfig  `yaml:"runner"`
	Pacing  PacingConfig  `yaml:"pacing"`
	Logging LoggingConfig `yaml:"logging"`
}

// RunnerConfig holds virtual user scheduling configuration.
type RunnerConfig struct {
	Scenario     string        `yaml:"scenario" env:"VS_RUNNER_SCENARIO"`
	VUs          int           `yaml:"vus" env:"VS_RUNNER_VUS"`
	Iterations   int           `yaml:"iterations" env:"VS_RUNNER_ITERATIONS"`
	Workers      int           `yaml:"workers" env:"VS_RUNNER_WORKERS"`
	StartSpread  time.Duration `yaml:"start_spread" env:"VS_RUNNER_START_SPREAD"`
	GracefulStop time.Duration `yaml:"graceful_stop" env:"VS_RUNNER_GRACEFUL_STOP"`
}

// PacingConfig holds pause and drift configuration.
type PacingConfig struct {
	ThinkTime time.Duration `yaml:"think_time" env:"VS_PACING_THINK_TIME"`
	MaxDrift  time.Duration `yaml:"max_drift" env:"VS_PACING_MAX_DRIFT"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"VS_LOG_LEVEL"`
	Format     string `yaml:"format" env:"VS_LOG_FORMAT"`
	Output     string `yaml:"output" env:"VS_LOG_OUTPUT"`
	FilePath   string `yaml:"file_path" env:"VS_LOG_FILE_PATH"`
	MaxSize    int    `yaml:"max_size" env:"VS_LOG_MAX_SIZE"`
	MaxBackups int    `yaml:"max_backups" env:"VS_LOG_MAX_BACKUPS"`
	MaxAge     int    `yaml:"max_age" env:"VS_LOG_MAX_AGE"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Runner: RunnerConfig{
			Scenario:     "synthetic",
			VUs:          10,
			Iterations:   1,
			Workers:      0, // 0 means one worker per VU
			StartSpread:  0,
			GracefulStop: 30 * time.Second,
		},
		Pacing: PacingConfig{
			ThinkTime: 10 * time.Millisecond,
			MaxDrift:  time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stderr",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// Logger converts the logging section into a logger configuration.
func (c LoggingConfig) Logger() *logger.Config {
	return &logger.Config{
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		FilePath:   c.FilePath,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
	}
}

// Loader handles configuration loading from multiple sources.
type Loader struct {
	configPath string
	lookupEnv  func(string) (string, bool)
	cmdArgs    map[string]string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		lookupEnv: os.LookupEnv,
		cmdArgs:   make(map[string]string),
	}
}

// WithConfigPath sets the path to the YAML configuration file.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvLookup replaces the environment lookup, mainly for tests.
func (l *Loader) WithEnvLookup(fn func(string) (string, bool)) *Loader {
	l.lookupEnv = fn
	return l
}

// WithCmdArgs sets dot-path overrides such as "runner.vus" -> "20".
func (l *Loader) WithCmdArgs(args map[string]string) *Loader {
	l.cmdArgs = args
	return l
}

// Load loads configuration from all sources with proper precedence:
// defaults < YAML file < environment variables < command-line flags
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("从文件加载配置失败: %w", err)
		}
	}

	if err := l.applyEnvToStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("应用环境变量覆盖失败: %w", err)
	}

	for key, value := range l.cmdArgs {
		if err := setConfigValue(cfg, key, value); err != nil {
			return nil, fmt.Errorf("设置配置值 %s 失败: %w", key, err)
		}
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}

	return nil
}

// applyEnvToStruct recursively applies environment variables to struct fields.
func (l *Loader) applyEnvToStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := l.applyEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envValue, ok := l.lookupEnv(envTag)
		if !ok || envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("从环境变量 %s 设置字段 %s 失败: %w", envTag, fieldType.Name, err)
		}
	}

	return nil
}

// setConfigValue sets a configuration value by its yaml dot path.
func setConfigValue(cfg *Config, path, value string) error {
	v := reflect.ValueOf(cfg).Elem()
	parts := strings.Split(path, ".")

	for i, part := range parts {
		field, ok := fieldByYAMLName(v, part)
		if !ok {
			return fmt.Errorf("未知的配置路径: %s", path)
		}

		if i == len(parts)-1 {
			return setFieldValue(field, value)
		}

		if field.Kind() != reflect.Struct {
			return fmt.Errorf("期望 %s 是结构体，实际是 %s", part, field.Kind())
		}
		v = field
	}

	return nil
}

// fieldByYAMLName finds a struct field by its yaml tag.
func fieldByYAMLName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("yaml"), ",")[0]
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from a string value.
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("无法设置字段")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("无效的时间格式: %w", err)
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("无效的整数: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("无效的布尔值: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("不支持的字段类型: %s", field.Kind())
	}

	return nil
}

// Serialize serializes the configuration to YAML bytes.
func (c *Config) Serialize() ([]byte, error) {
	return yaml.Marshal(c)
}

// ParseConfig parses a YAML configuration from bytes.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file path.
func LoadFromFile(path string) (*Config, error) {
	return NewLoader().WithConfigPath(path).Load()
}
