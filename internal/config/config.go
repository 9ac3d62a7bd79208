package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Env        string           `yaml:"env"`        // Env is the current environment: local, development, production.
	HTTP       HTTPConfig       `yaml:"http"`       // HTTP holds the public API server configuration.
	Monitoring MonitoringConfig `yaml:"monitoring"` // Monitoring holds the health/metrics server configuration.
	Upstream   UpstreamConfig   `yaml:"upstream"`   // Upstream holds the employee directory connection settings.
	Mock       MockConfig       `yaml:"mock"`       // Mock holds the development upstream settings.
}

// HTTPConfig struct holds the configuration of the public API server.
type HTTPConfig struct {
	Address            string        `yaml:"address"`              // Address is the listen address in format `host:port`.
	ReadTimeout        time.Duration `yaml:"read_timeout"`         // ReadTimeout bounds reading a whole request.
	WriteTimeout       time.Duration `yaml:"write_timeout"`        // WriteTimeout bounds writing a response.
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`     // ShutdownTimeout bounds graceful shutdown.
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"` // CORSAllowedOrigins enables CORS when not empty.
}

// MonitoringConfig struct holds the configuration of the monitoring server.
type MonitoringConfig struct {
	Port int `yaml:"port"` // Port serves /healthz and /metrics.
}

// UpstreamConfig struct holds the configuration details for the upstream employee service.
type UpstreamConfig struct {
	BaseURL string        `yaml:"url"`     // BaseURL is the employee collection url, e.g. `http://localhost:8112/api/v1/employee`
	Timeout time.Duration `yaml:"timeout"` // Timeout of a single upstream call, zero keeps transport defaults.
}

// MockConfig struct holds the configuration of the development upstream server.
type MockConfig struct {
	Address string `yaml:"address"` // Address is the listen address of the mock upstream.
	Seed    int    `yaml:"seed"`    // Seed is the number of generated employees on start.
}

// MustLoad loads the configuration and panics if it cannot be loaded.
// The YAML file at CONFIG_PATH is optional; IRIS_* environment variables override it.
func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic("config error: " + err.Error())
	}

	return cfg
}

// MustLoadMock is MustLoad for the development upstream, which does not need upstream.url.
func MustLoadMock() *Config {
	cfg, err := LoadMock(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic("config error: " + err.Error())
	}

	return cfg
}

// Load reads the configuration from configPath (if not empty) and the environment.
func Load(configPath string) (*Config, error) {
	return load(configPath, true)
}

// LoadMock reads the configuration like Load but leaves the upstream section unchecked.
func LoadMock(configPath string) (*Config, error) {
	return load(configPath, false)
}

func load(configPath string, requireUpstream bool) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("iris")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		// check if file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}

		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		HTTP: HTTPConfig{
			Address:            v.GetString("http.address"),
			ReadTimeout:        v.GetDuration("http.read_timeout"),
			WriteTimeout:       v.GetDuration("http.write_timeout"),
			ShutdownTimeout:    v.GetDuration("http.shutdown_timeout"),
			CORSAllowedOrigins: stringList(v, "http.cors_allowed_origins"),
		},
		Monitoring: MonitoringConfig{
			Port: v.GetInt("monitoring.port"),
		},
		Upstream: UpstreamConfig{
			BaseURL: strings.TrimRight(v.GetString("upstream.url"), "/"),
			Timeout: v.GetDuration("upstream.timeout"),
		},
		Mock: MockConfig{
			Address: v.GetString("mock.address"),
			Seed:    v.GetInt("mock.seed"),
		},
	}

	if err := cfg.validate(requireUpstream); err != nil {
		return nil, err
	}

	return cfg, nil
}

// stringList reads a list that may come from YAML or from a comma separated environment variable.
func stringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for part := range strings.SplitSeq(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

func setDefaults(v *viper.Viper) {
	const (
		defMonitoringPort = 8080
		defMockSeed       = 25
		defIOTimeout      = 10 * time.Second
		defShutdown       = 5 * time.Second
	)

	v.SetDefault("env", "local")
	v.SetDefault("http.address", ":8111")
	v.SetDefault("http.read_timeout", defIOTimeout)
	v.SetDefault("http.write_timeout", defIOTimeout)
	v.SetDefault("http.shutdown_timeout", defShutdown)
	v.SetDefault("http.cors_allowed_origins", []string{})
	v.SetDefault("monitoring.port", defMonitoringPort)
	v.SetDefault("upstream.url", "")
	v.SetDefault("upstream.timeout", time.Duration(0))
	v.SetDefault("mock.address", ":8112")
	v.SetDefault("mock.seed", defMockSeed)
}

func (c *Config) validate(requireUpstream bool) error {
	if c.Monitoring.Port <= 0 || c.Monitoring.Port > 65535 {
		return fmt.Errorf("%w: monitoring.port out of range: %d", ErrInvalidConfig, c.Monitoring.Port)
	}

	if c.Upstream.Timeout < 0 {
		return fmt.Errorf("%w: upstream.timeout must not be negative", ErrInvalidConfig)
	}

	if !requireUpstream {
		return nil
	}

	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("%w: upstream.url is required", ErrInvalidConfig)
	}

	parsed, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: upstream.url must be an absolute http(s) url, got %q", ErrInvalidConfig, c.Upstream.BaseURL)
	}

	return nil
}
