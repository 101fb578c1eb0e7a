package config

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/webpush/core/validator"
	"github.com/kochabx/webpush/log"
)

// Config manages application configuration
type Config struct {
	mu       sync.RWMutex        // protects concurrent access to target
	viper    *viper.Viper        // viper instance for configuration management
	validate validator.Validator // validator for configuration validation
	target   any                 // target is the destination where the configuration will be unmarshalled
	loader   Loader              // loader is responsible for loading configuration
	watch    bool                // whether to automatically watch for configuration changes
	file     string              // explicit config file, see WithFile
	optional bool                // whether the explicit file may be missing
}

// DefaultFilename is searched for in the working directory when no file is given
const DefaultFilename = "webpush.yaml"

// New creates a new Config instance with the given options
// If no loader is provided, a default FileLoader will be created with:
//   - filename: DefaultFilename
//   - paths: ["."]
func New(target any, opts ...Option) *Config {
	c := &Config{
		viper:    viper.New(),
		validate: validator.Validate,
		target:   target,
		watch:    true,
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	// Create default FileLoader if no loader is provided
	if c.loader == nil {
		var l *FileLoader
		if c.file != "" {
			l = NewFileLoaderFromPath(c.file, c.viper, c.validate)
		} else {
			l = NewFileLoader(DefaultFilename, []string{"."}, c.viper, c.validate)
		}
		if c.optional {
			l.Optional()
		}
		c.loader = l
	}

	return c
}

// Load reads the configuration using the configured loader
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loader.Load(c.target); err != nil {
		return err
	}

	return nil
}

// Reload reloads the configuration from the loader
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loader.Load(c.target); err != nil {
		return err
	}

	return nil
}

// Watch sets up automatic configuration watching if enabled
func (c *Config) Watch() error {
	if !c.watch {
		return nil
	}
	return c.loader.Watch(func() {
		log.Info().Msg("config change detected")

		// Attempt to reload configuration
		if err := c.Reload(); err != nil {
			log.Error().Err(err).Msg("failed to reload config after change")
			return
		}

		log.Info().Msg("config reloaded successfully")
	})
}

// GetViper returns the underlying viper instance if the loader is a FileLoader
// This is provided for backward compatibility
func (c *Config) GetViper() *viper.Viper {
	return c.viper
}
