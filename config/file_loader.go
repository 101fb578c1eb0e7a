package config

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/kochabx/webpush/core/validator"
	"github.com/kochabx/webpush/errors"
)

// FileLoader loads configuration from file
type FileLoader struct {
	viper    *viper.Viper
	validate validator.Validator
	name     string
	paths    []string
	optional bool
}

// NewFileLoader creates a loader searching paths for name, e.g. "webpush.yaml"
func NewFileLoader(name string, paths []string, v *viper.Viper, validate validator.Validator) *FileLoader {
	// Determine config type from file extension
	extension := filepath.Ext(name)
	configType := strings.TrimPrefix(extension, ".")

	// Add configuration paths to viper
	for _, configPath := range paths {
		v.AddConfigPath(configPath)
	}

	v.SetConfigName(strings.TrimSuffix(name, extension))
	if configType != "" {
		v.SetConfigType(configType)
	}

	return newFileLoader(v, validate, name, paths)
}

// NewFileLoaderFromPath creates a loader for one explicit file
func NewFileLoaderFromPath(file string, v *viper.Viper, validate validator.Validator) *FileLoader {
	v.SetConfigFile(file)
	return newFileLoader(v, validate, filepath.Base(file), []string{filepath.Dir(file)})
}

func newFileLoader(v *viper.Viper, validate validator.Validator, name string, paths []string) *FileLoader {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &FileLoader{
		viper:    v,
		paths:    paths,
		name:     name,
		validate: validate,
	}
}

// Optional makes a missing config file fall back to defaults and environment
func (l *FileLoader) Optional() *FileLoader {
	l.optional = true
	return l
}

// Load implements Loader interface
func (l *FileLoader) Load(target any) error {
	// Fields absent from the file keep their defaults
	if d, ok := target.(Defaulter); ok {
		d.Defaults()
	}

	if err := l.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := stderrors.As(err, &notFound) || stderrors.Is(err, fs.ErrNotExist)
		if !l.optional || !missing {
			return errors.Wrap(err, 404, "config file %s not found", l.name)
		}
	}

	if err := l.viper.Unmarshal(target, viper.DecodeHook(decodeHook)); err != nil {
		return errors.Wrap(err, 500, "config parse error")
	}

	// Validate configuration
	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return validator.ToError(err)
		}
	}

	return nil
}

// Watch implements Loader interface
func (l *FileLoader) Watch(callback func()) error {
	l.viper.OnConfigChange(func(e fsnotify.Event) {
		if callback != nil {
			callback()
		}
	})

	l.viper.WatchConfig()
	return nil
}

var decodeHook = mapstructure.ComposeDecodeHookFunc(
	mapstructure.TextUnmarshallerHookFunc(),
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
)
