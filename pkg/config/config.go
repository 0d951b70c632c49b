// Package config loads buildcache's effective configuration from a YAML
// file, applies environment variable overrides, and resolves the result
// into the typed values the rest of the program consumes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/buildcache/buildcache/pkg/encoding"
	"github.com/buildcache/buildcache/pkg/logging"
	"github.com/buildcache/buildcache/pkg/wrapper"
)

// envPrefix namespaces every configuration override environment variable.
const envPrefix = "BUILDCACHE_"

// EnvConfigPath is the environment variable used to locate the
// configuration file itself, checked before falling back to DefaultPath.
const EnvConfigPath = envPrefix + "CONFIG"

const (
	defaultMaxSize    = "5GiB"
	defaultAccuracy   = "default"
	defaultDirectMode = true
	defaultDisable    = false
	defaultLogLevel   = "warning"
	defaultTimeout    = 2 * time.Second
)

// fileStore mirrors the YAML "store" section.
type fileStore struct {
	Directory string `yaml:"directory"`
	MaxSize   string `yaml:"maxSize"`
}

// fileRemote mirrors the YAML "remote" section.
type fileRemote struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// fileLog mirrors the YAML "log" section.
type fileLog struct {
	Level string `yaml:"level"`
}

// fileConfig mirrors the on-disk YAML configuration document verbatim.
// Every field is optional; an absent field falls back to its default after
// environment overrides are applied.
type fileConfig struct {
	Store      fileStore  `yaml:"store"`
	Accuracy   string     `yaml:"accuracy"`
	DirectMode *bool      `yaml:"directMode"`
	Disable    *bool      `yaml:"disable"`
	Remote     fileRemote `yaml:"remote"`
	Log        fileLog    `yaml:"log"`
}

// Config is the resolved, typed configuration the rest of buildcache
// consumes: defaults applied, environment overrides applied, and
// human-friendly strings (sizes, durations, level names) parsed into their
// working representations.
type Config struct {
	// StoreDirectory is the local store's root directory.
	StoreDirectory string
	// SizeCap is the local store's size budget in bytes. Zero means
	// unbounded (eviction never triggers).
	SizeCap uint64
	// Accuracy is the configured accuracy level.
	Accuracy wrapper.AccuracyLevel
	// DirectMode enables the manifest-based fast path.
	DirectMode bool
	// Disable forces every invocation through passthrough.
	Disable bool
	// RemoteURL is the remote provider URL (empty means no remote).
	RemoteURL string
	// RemoteTimeout bounds every remote provider call.
	RemoteTimeout time.Duration
	// LogLevel is the resolved logging level.
	LogLevel logging.Level
}

// DefaultStoreDirectory returns the default local store root,
// "<user cache dir>/buildcache".
func DefaultStoreDirectory() string {
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "buildcache")
	}
	return filepath.Join(".", ".buildcache")
}

// DefaultPath returns the default configuration file path,
// "<user config dir>/buildcache/config.yaml", consulted when neither
// --config nor BUILDCACHE_CONFIG is set.
func DefaultPath() string {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "buildcache", "config.yaml")
	}
	return filepath.Join(".", ".buildcache", "config.yaml")
}

// ResolvePath determines the effective configuration file path given an
// explicit --config flag value (possibly empty), checking it, then
// BUILDCACHE_CONFIG, then DefaultPath, in that order.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if fromEnv := os.Getenv(EnvConfigPath); fromEnv != "" {
		return fromEnv
	}
	return DefaultPath()
}

// Load reads the configuration file at path (a missing file is not an
// error; it's treated as an all-defaults document), applies environment
// variable overrides, and resolves the result. logger receives a warning
// for any unrecognized YAML key and for any malformed override value
// (which is then ignored in favor of the file value or default).
func Load(path string, logger *logging.Logger) (*Config, error) {
	var file fileConfig
	if _, err := os.Stat(path); err == nil {
		if err := encoding.LoadAndUnmarshalYAML(path, &file); err != nil {
			return nil, fmt.Errorf("unable to load configuration file %s: %w", path, err)
		}
		if warnErr := encoding.WarnOnUnknownYAMLFields(path, &fileConfig{}); warnErr != nil {
			logger.Warnf("configuration file %s: %v", path, warnErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("unable to stat configuration file %s: %w", path, err)
	}

	applyEnvOverrides(&file, logger)

	return resolve(&file, logger)
}

// applyEnvOverrides mutates file in place, applying any
// BUILDCACHE_<PATH>-named environment variable that's set. Malformed
// boolean overrides are logged and ignored rather than failing the load:
// a configuration typo must never turn a successful build into a failed
// one.
func applyEnvOverrides(file *fileConfig, logger *logging.Logger) {
	if v, ok := os.LookupEnv(envPrefix + "STORE_DIRECTORY"); ok {
		file.Store.Directory = v
	}
	if v, ok := os.LookupEnv(envPrefix + "MAX_SIZE"); ok {
		file.Store.MaxSize = v
	}
	if v, ok := os.LookupEnv(envPrefix + "ACCURACY"); ok {
		file.Accuracy = v
	}
	if v, ok := os.LookupEnv(envPrefix + "DIRECT_MODE"); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			file.DirectMode = &parsed
		} else {
			logger.Warnf("ignoring malformed %sDIRECT_MODE value %q", envPrefix, v)
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "DISABLE"); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			file.Disable = &parsed
		} else {
			logger.Warnf("ignoring malformed %sDISABLE value %q", envPrefix, v)
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "REMOTE_URL"); ok {
		file.Remote.URL = v
	}
	if v, ok := os.LookupEnv(envPrefix + "REMOTE_TIMEOUT"); ok {
		file.Remote.Timeout = v
	}
	if v, ok := os.LookupEnv(envPrefix + "LOG_LEVEL"); ok {
		file.Log.Level = v
	}
}

// resolve applies defaults to every unset field and parses human-friendly
// strings into their typed representations.
func resolve(file *fileConfig, logger *logging.Logger) (*Config, error) {
	resolved := &Config{
		StoreDirectory: file.Store.Directory,
		DirectMode:     defaultDirectMode,
		Disable:        defaultDisable,
		RemoteURL:      file.Remote.URL,
		RemoteTimeout:  defaultTimeout,
	}
	if resolved.StoreDirectory == "" {
		resolved.StoreDirectory = DefaultStoreDirectory()
	}

	maxSize := file.Store.MaxSize
	if maxSize == "" {
		maxSize = defaultMaxSize
	}
	sizeCap, err := ParseSize(maxSize)
	if err != nil {
		return nil, fmt.Errorf("invalid store.maxSize %q: %w", maxSize, err)
	}
	resolved.SizeCap = sizeCap

	accuracy := file.Accuracy
	if accuracy == "" {
		accuracy = defaultAccuracy
	}
	level, ok := accuracyFromName(accuracy)
	if !ok {
		return nil, fmt.Errorf("invalid accuracy %q", accuracy)
	}
	resolved.Accuracy = level

	if file.DirectMode != nil {
		resolved.DirectMode = *file.DirectMode
	}
	if file.Disable != nil {
		resolved.Disable = *file.Disable
	}

	if file.Remote.Timeout != "" {
		timeout, err := time.ParseDuration(file.Remote.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid remote.timeout %q: %w", file.Remote.Timeout, err)
		}
		resolved.RemoteTimeout = timeout
	}

	logLevelName := file.Log.Level
	if logLevelName == "" {
		logLevelName = defaultLogLevel
	}
	logLevel, ok := logLevelFromName(logLevelName)
	if !ok {
		logger.Warnf("unknown log level %q, defaulting to %s", logLevelName, defaultLogLevel)
		logLevel, _ = logLevelFromName(defaultLogLevel)
	}
	resolved.LogLevel = logLevel

	return resolved, nil
}

// accuracyFromName converts the user-facing accuracy names (upper- or
// lowercase) to a wrapper.AccuracyLevel.
func accuracyFromName(name string) (wrapper.AccuracyLevel, bool) {
	switch name {
	case "sloppy", "SLOPPY":
		return wrapper.AccuracySloppy, true
	case "default", "DEFAULT":
		return wrapper.AccuracyDefault, true
	case "strict", "STRICT":
		return wrapper.AccuracyStrict, true
	default:
		return wrapper.AccuracyDefault, false
	}
}

// logLevelFromName converts the configuration file's log level names to
// the pkg/logging level enum, which uses slightly different names
// ("warn"/"disabled") for its own internal API.
func logLevelFromName(name string) (logging.Level, bool) {
	switch name {
	case "silent":
		return logging.LevelDisabled, true
	case "error":
		return logging.LevelError, true
	case "warning", "warn":
		return logging.LevelWarn, true
	case "info":
		return logging.LevelInfo, true
	case "debug":
		return logging.LevelDebug, true
	case "trace":
		return logging.LevelTrace, true
	default:
		return logging.LevelWarn, false
	}
}

// Marshal renders the effective configuration back to YAML, the format
// `buildcache config` (alias `-c`/`--get-config`) prints.
func (c *Config) Marshal() ([]byte, error) {
	file := fileConfig{
		Store: fileStore{
			Directory: c.StoreDirectory,
			MaxSize:   FormatSize(c.SizeCap),
		},
		Accuracy:   accuracyName(c.Accuracy),
		DirectMode: &c.DirectMode,
		Disable:    &c.Disable,
		Remote: fileRemote{
			URL:     c.RemoteURL,
			Timeout: c.RemoteTimeout.String(),
		},
		Log: fileLog{Level: logLevelName(c.LogLevel)},
	}
	return yaml.Marshal(&file)
}

func accuracyName(level wrapper.AccuracyLevel) string {
	switch level {
	case wrapper.AccuracySloppy:
		return "sloppy"
	case wrapper.AccuracyStrict:
		return "strict"
	default:
		return "default"
	}
}

func logLevelName(level logging.Level) string {
	switch level {
	case logging.LevelDisabled:
		return "silent"
	case logging.LevelError:
		return "error"
	case logging.LevelInfo:
		return "info"
	case logging.LevelDebug:
		return "debug"
	case logging.LevelTrace:
		return "trace"
	default:
		return "warning"
	}
}
