package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/gitver/internal/engine"
	"github.com/leapstack-labs/gitver/internal/refs"
)

// EnvPrefix prefixes the environment variables mapped to options.
const EnvPrefix = "VERSIONING_"

// loggerKey is used to store logger in context.
type loggerKey struct{}

// flagKeys maps flag names to config keys. Flags not listed here are not
// configuration.
var flagKeys = map[string]string{
	"verbose":     "verbose",
	"output":      "output",
	"project-dir": "project_dir",
	"git-ref":     "options.git_ref",
	"git-tag":     "options.git_tag",
	"git-branch":  "options.git_branch",
	"disable":     "options.disable",
	"update-pom":  "options.update_pom",
}

// DefineFlag is the repeatable key=value user property flag.
const DefineFlag = "define"

// LoadConfig loads configuration from defaults, the config file, the
// environment and flags, in increasing precedence.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	projectDir, err := inferProjectDir(flags)
	if err != nil {
		return nil, err
	}
	stateDir, err := engine.FindStateDir(projectDir)
	if err != nil {
		return nil, err
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"disable":                        false,
		"update_pom":                     false,
		"refs.consider_tags_on_branches": false,
		"verbose":                        false,
		"output":                         DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		cfgFile = findConfigFile(stateDir)
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: VERSIONING_GIT_BRANCH -> options.git_branch
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return "options." + strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				patternHook,
				kindHook,
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectDir = projectDir
	cfg.StateDir = stateDir
	cfg.ConfigFile = cfgFile
	if cfg.Options.Properties, err = defines(flags); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// findConfigFile returns the config file in the state directory, or "".
func findConfigFile(stateDir string) string {
	for _, name := range []string{ConfigFileName, "gitver.yml"} {
		candidate := filepath.Join(stateDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// inferProjectDir returns the absolute --project-dir, or the working
// directory.
func inferProjectDir(flags *pflag.FlagSet) (string, error) {
	dir := "."
	if flags != nil && flags.Changed("project-dir") {
		if v, _ := flags.GetString("project-dir"); v != "" {
			dir = v
		}
	}
	return filepath.Abs(dir)
}

// defines parses the repeated -D key=value flag. A bare key is "true".
func defines(flags *pflag.FlagSet) (map[string]string, error) {
	props := map[string]string{}
	if flags == nil || flags.Lookup(DefineFlag) == nil {
		return props, nil
	}
	values, err := flags.GetStringArray(DefineFlag)
	if err != nil {
		return nil, err
	}
	for _, kv := range values {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid property definition %q", kv)
		}
		if !ok {
			value = "true"
		}
		props[key] = value
	}
	return props, nil
}

var (
	patternType    = reflect.TypeOf(refs.Pattern{})
	patternPtrType = reflect.TypeOf(&refs.Pattern{})
	kindType       = reflect.TypeOf(refs.Kind(""))
)

// patternHook compiles pattern strings so a malformed expression fails the
// load.
func patternHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || (to != patternType && to != patternPtrType) {
		return data, nil
	}
	return refs.CompilePattern(reflect.ValueOf(data).String())
}

func kindHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != kindType {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	if s == "" {
		return refs.Kind(""), nil
	}
	return refs.ParseKind(s)
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.New(slog.DiscardHandler)
}

// IsNoStateDir reports whether err means no build state directory exists.
func IsNoStateDir(err error) bool {
	return errors.Is(err, engine.ErrNoStateDir)
}

type configKey struct{}

// NewContext returns ctx carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the configuration stored by NewContext, or nil.
func FromContext(ctx context.Context) *Config {
	if ctx == nil {
		return nil
	}
	cfg, _ := ctx.Value(configKey{}).(*Config)
	return cfg
}
