// Package config loads clrhost settings from YAML files and the environment.
// Priority is environment, then file, then defaults.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/clr-host/errors"
	"github.com/wippyai/clr-host/loader"
	"github.com/wippyai/clr-host/marshal"
)

// EnvPrefix is prepended to environment overrides, e.g. CLRHOST_LIBRARY.
const EnvPrefix = "CLRHOST"

var validate = validator.New()

// Config is the full host configuration.
type Config struct {
	// Library is the path of the runtime shared library.
	Library string `mapstructure:"library" yaml:"library" validate:"required"`
	// ExePath is passed to coreclr_initialize as the executable path.
	ExePath string `mapstructure:"exe_path" yaml:"exe_path" validate:"required"`
	// AppDomain is the friendly name of the default domain.
	AppDomain string `mapstructure:"app_domain" yaml:"app_domain" validate:"required"`
	// AppPaths become the APP_PATHS property.
	AppPaths []string `mapstructure:"app_paths" yaml:"app_paths,omitempty"`
	// TrustedAssembliesDir is scanned for *.dll to build TRUSTED_PLATFORM_ASSEMBLIES.
	TrustedAssembliesDir string `mapstructure:"trusted_assemblies_dir" yaml:"trusted_assemblies_dir,omitempty"`
	// Properties are passed verbatim after the generated ones.
	Properties []PropertyConfig `mapstructure:"properties" yaml:"properties,omitempty" validate:"dive"`
	Delegates  []DelegateConfig `mapstructure:"delegates" yaml:"delegates,omitempty" validate:"dive"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// PropertyConfig is one runtime property. Properties are a list rather than
// a map because keys are case sensitive.
type PropertyConfig struct {
	Key   string `mapstructure:"key" yaml:"key" validate:"required"`
	Value string `mapstructure:"value" yaml:"value"`
}

// DelegateConfig names a managed static method and the native signature
// the caller asserts it has.
type DelegateConfig struct {
	Name     string   `mapstructure:"name" yaml:"name" validate:"required"`
	Assembly string   `mapstructure:"assembly" yaml:"assembly" validate:"required"`
	Type     string   `mapstructure:"type" yaml:"type" validate:"required"`
	Method   string   `mapstructure:"method" yaml:"method" validate:"required"`
	Params   []string `mapstructure:"params" yaml:"params,omitempty" validate:"dive,oneof=int32 int64 uint32 uint64 uintptr bool string"`
	Result   string   `mapstructure:"result" yaml:"result,omitempty" validate:"omitempty,oneof=void int32 int64 uint32 uint64 uintptr bool"`
}

// LoggingConfig selects the zap logger built by NewLogger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	// Format is json or console.
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=json console"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("library", loader.DefaultLibraryName)
	v.SetDefault("exe_path", "")
	v.SetDefault("app_domain", "clrhost")
	v.SetDefault("trusted_assemblies_dir", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// NewViper returns a viper instance with defaults and environment binding.
// If file is not empty it is read; a missing file is an error only when
// named explicitly.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file == "" {
		return v, nil
	}
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(file).
			Detail("read config").
			Cause(err).
			Build()
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and that delegate names are unique.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "config validation failed")
	}
	seen := make(map[string]struct{}, len(c.Delegates))
	for _, d := range c.Delegates {
		if _, ok := seen[d.Name]; ok {
			return errors.New(errors.PhaseConfig, errors.KindDuplicateKey).
				Path("delegates", d.Name).
				Detail("delegate %q defined more than once", d.Name).
				Build()
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}

// Delegate returns the delegate named name.
func (c *Config) Delegate(name string) (DelegateConfig, bool) {
	for _, d := range c.Delegates {
		if d.Name == name {
			return d, true
		}
	}
	return DelegateConfig{}, false
}

// RuntimeProperties builds the property list passed to coreclr_initialize:
// APP_PATHS, then TRUSTED_PLATFORM_ASSEMBLIES, then the explicit pairs.
func (c *Config) RuntimeProperties() (marshal.Properties, error) {
	var props marshal.Properties
	sep := string(os.PathListSeparator)

	if len(c.AppPaths) > 0 {
		props = append(props, marshal.Property{Key: marshal.AppPaths, Value: strings.Join(c.AppPaths, sep)})
	}
	if c.TrustedAssembliesDir != "" {
		tpa, err := TrustedAssemblies(c.TrustedAssembliesDir)
		if err != nil {
			return nil, err
		}
		props = append(props, marshal.Property{Key: marshal.TrustedPlatformAssemblies, Value: strings.Join(tpa, sep)})
	}
	for _, p := range c.Properties {
		if _, ok := props.Get(p.Key); ok {
			return nil, errors.DuplicateKey(errors.PhaseConfig, p.Key)
		}
		props = append(props, marshal.Property{Key: p.Key, Value: p.Value})
	}

	if err := props.Validate(); err != nil {
		return nil, err
	}
	return props, nil
}

// TrustedAssemblies returns the absolute paths of the *.dll files in dir,
// sorted.
func TrustedAssemblies(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "trusted_assemblies_dir")
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "trusted_assemblies_dir")
	}
	if !info.IsDir() {
		return nil, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("trusted_assemblies_dir %s is not a directory", abs))
	}
	matches, err := filepath.Glob(filepath.Join(abs, "*.dll"))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "trusted_assemblies_dir")
	}
	sort.Strings(matches)
	return matches, nil
}

// Sample returns a starter configuration.
func Sample() *Config {
	return &Config{
		Library:              loader.DefaultLibraryName,
		ExePath:              "/path/to/app",
		AppDomain:            "clrhost",
		AppPaths:             []string{"/path/to/app"},
		TrustedAssembliesDir: "/usr/share/dotnet/shared/Microsoft.NETCore.App/8.0.0",
		Properties: []PropertyConfig{
			{Key: marshal.GlobalizationInvariant, Value: "true"},
		},
		Delegates: []DelegateConfig{{
			Name:     "hello",
			Assembly: "App",
			Type:     "App.Program",
			Method:   "Hello",
			Params:   []string{"int32"},
			Result:   "int32",
		}},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// WriteYAML renders c as YAML.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
