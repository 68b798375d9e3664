// Package config holds the runtime configuration for the service and loads
// user-supplied instruction files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultHost         = "127.0.0.1"
	defaultPort         = 8000
	defaultArtifactsDir = "logs"
	defaultTaskTimeout  = 10 * time.Minute
)

// Config is the resolved service configuration. Values come from defaults,
// then an optional YAML file, then functional options, in that order.
type Config struct {
	host           string
	port           int
	artifactsDir   string
	modelID        string
	taskTimeout    time.Duration
	allowedOrigins []string
	debug          bool
}

// Option mutates a Config during construction.
type Option func(*Config)

// WithHost sets the listen host.
func WithHost(host string) Option {
	return func(c *Config) {
		if host != "" {
			c.host = host
		}
	}
}

// WithPort sets the listen port.
func WithPort(port int) Option {
	return func(c *Config) {
		if port > 0 {
			c.port = port
		}
	}
}

// WithArtifactsDir sets the directory for execution logs and screenshots.
func WithArtifactsDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.artifactsDir = dir
		}
	}
}

// WithModelID sets the model used for browser automation and analysis.
func WithModelID(modelID string) Option {
	return func(c *Config) {
		if modelID != "" {
			c.modelID = modelID
		}
	}
}

// WithTaskTimeout sets the per-task agent timeout.
func WithTaskTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.taskTimeout = d
		}
	}
}

// WithAllowedOrigins sets the CORS allow-list.
func WithAllowedOrigins(origins []string) Option {
	return func(c *Config) {
		if len(origins) > 0 {
			c.allowedOrigins = origins
		}
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(c *Config) { c.debug = debug }
}

// New builds a Config from defaults plus the given options.
func New(opts ...Option) *Config {
	c := &Config{
		host:         defaultHost,
		port:         defaultPort,
		artifactsDir: defaultArtifactsDir,
		taskTimeout:  defaultTaskTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fileConfig is the YAML shape of a config file. All fields are optional.
type fileConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	ArtifactsDir   string   `yaml:"artifacts_dir"`
	ModelID        string   `yaml:"model_id"`
	TaskTimeout    string   `yaml:"task_timeout"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Debug          bool     `yaml:"debug"`
}

// Load reads a YAML config file and builds a Config from it. Options are
// applied after the file, so they win. A missing file is not an error, the
// defaults just apply.
func Load(path string, opts ...Option) (*Config, error) {
	var fileOpts []Option

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		fileOpts, err = fc.options()
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	// Environment overrides the file, explicit options override both.
	fileOpts = append(fileOpts, WithModelID(os.Getenv("WEBSENTINEL_MODEL")))
	if dir := os.Getenv("WEBSENTINEL_ARTIFACTS_DIR"); dir != "" {
		fileOpts = append(fileOpts, WithArtifactsDir(dir))
	}

	return New(append(fileOpts, opts...)...), nil
}

func (fc fileConfig) options() ([]Option, error) {
	opts := []Option{
		WithHost(fc.Host),
		WithPort(fc.Port),
		WithArtifactsDir(fc.ArtifactsDir),
		WithModelID(fc.ModelID),
		WithAllowedOrigins(fc.AllowedOrigins),
		WithDebug(fc.Debug),
	}
	if fc.TaskTimeout != "" {
		d, err := time.ParseDuration(fc.TaskTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid task_timeout %q: %w", fc.TaskTimeout, err)
		}
		opts = append(opts, WithTaskTimeout(d))
	}
	return opts, nil
}

// Host returns the listen host.
func (c *Config) Host() string { return c.host }

// Port returns the listen port.
func (c *Config) Port() int { return c.port }

// ArtifactsDir returns the directory for logs and screenshots.
func (c *Config) ArtifactsDir() string { return c.artifactsDir }

// ModelID returns the configured model, empty for the engine default.
func (c *Config) ModelID() string { return c.modelID }

// TaskTimeout returns the per-task agent timeout.
func (c *Config) TaskTimeout() time.Duration { return c.taskTimeout }

// AllowedOrigins returns the CORS allow-list.
func (c *Config) AllowedOrigins() []string { return c.allowedOrigins }

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool { return c.debug }
