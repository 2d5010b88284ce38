// Package config provides configuration loading and parsing functionality
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFormat represents the configuration file format
type ConfigFormat string

const (
	FormatYAML ConfigFormat = "yaml"
	FormatJSON ConfigFormat = "json"
)

// Loader handles configuration loading from various sources
type Loader struct {
	// Configuration search paths
	searchPaths []string

	// Environment variable prefix
	envPrefix string

	// Default configuration
	defaultConfig *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		searchPaths: []string{
			".",
			"./config",
			"/etc/scenebridge",
			os.Getenv("HOME") + "/.scenebridge",
		},
		envPrefix:     "SCENEBRIDGE",
		defaultConfig: DefaultConfig(),
	}
}

// SetSearchPaths sets the configuration file search paths
func (l *Loader) SetSearchPaths(paths []string) *Loader {
	l.searchPaths = paths
	return l
}

// SetEnvPrefix sets the environment variable prefix
func (l *Loader) SetEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// SetDefaultConfig sets the default configuration
func (l *Loader) SetDefaultConfig(config *Config) *Loader {
	l.defaultConfig = config
	return l
}

// Load loads configuration from the specified file, falling back to
// defaults when filename is empty
func (l *Loader) Load(filename string) (*Config, error) {
	if filename != "" {
		return l.LoadFromFile(filename)
	}

	config := l.defaults()
	if err := l.loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific file
func (l *Loader) LoadFromFile(filename string) (*Config, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	var format ConfigFormat
	switch ext {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.finish(data, format)
}

// LoadFromReader loads configuration from an io.Reader
func (l *Loader) LoadFromReader(reader io.Reader, format ConfigFormat) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration data: %w", err)
	}
	return l.finish(data, format)
}

// AutoLoad discovers a configuration file in the search paths and loads
// it; without one it falls back to defaults plus environment overrides
func (l *Loader) AutoLoad() (*Config, error) {
	configFile, _, err := l.findConfigFile()
	if err != nil {
		if err == ErrConfigFileNotFound {
			return l.Load("")
		}
		return nil, err
	}
	return l.LoadFromFile(configFile)
}

// finish parses raw data, merges defaults, applies environment overrides
// and validates
func (l *Loader) finish(data []byte, format ConfigFormat) (*Config, error) {
	config, err := l.parseConfig(data, format)
	if err != nil {
		return nil, err
	}

	config = l.mergeConfig(l.defaults(), config)

	if err := l.loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func (l *Loader) defaults() *Config {
	if l.defaultConfig != nil {
		cp := *l.defaultConfig
		return &cp
	}
	return DefaultConfig()
}

// findConfigFile searches for configuration files in search paths
func (l *Loader) findConfigFile() (string, ConfigFormat, error) {
	filenames := []string{
		"scenebridge.yaml", "scenebridge.yml",
		"config.yaml", "config.yml",
		"scenebridge.json", "config.json",
	}

	for _, searchPath := range l.searchPaths {
		for _, filename := range filenames {
			fullPath := filepath.Join(searchPath, filename)
			if _, err := os.Stat(fullPath); err == nil {
				ext := strings.ToLower(filepath.Ext(filename))
				var format ConfigFormat
				switch ext {
				case ".yaml", ".yml":
					format = FormatYAML
				case ".json":
					format = FormatJSON
				default:
					continue
				}
				return fullPath, format, nil
			}
		}
	}

	return "", "", ErrConfigFileNotFound
}

// parseConfig parses configuration data based on format
func (l *Loader) parseConfig(data []byte, format ConfigFormat) (*Config, error) {
	config := &Config{}

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	return config, nil
}

// loadFromEnv loads configuration overrides from environment variables
func (l *Loader) loadFromEnv(config *Config) error {
	// App configuration
	if val := os.Getenv(l.envPrefix + "_APP_NAME"); val != "" {
		config.App.Name = val
	}
	if val := os.Getenv(l.envPrefix + "_APP_ENVIRONMENT"); val != "" {
		config.App.Environment = Environment(val)
	}
	if val := os.Getenv(l.envPrefix + "_APP_DEBUG"); val != "" {
		config.App.Debug = strings.ToLower(val) == "true"
	}

	// Log configuration
	if val := os.Getenv(l.envPrefix + "_LOG_LEVEL"); val != "" {
		config.Log.Level = LogLevel(val)
	}
	if val := os.Getenv(l.envPrefix + "_LOG_FORMAT"); val != "" {
		config.Log.Format = val
	}
	if val := os.Getenv(l.envPrefix + "_LOG_OUTPUT"); val != "" {
		config.Log.Output = val
	}

	// Import configuration
	if val := os.Getenv(l.envPrefix + "_IMPORT_ZUP_CORRECTION"); val != "" {
		config.Import.ZUpCorrection = val
	}
	if val := os.Getenv(l.envPrefix + "_IMPORT_MESH_SPLIT_UNIT"); val != "" {
		if n, err := parseCount(val); err == nil {
			config.Import.MeshSplitUnit = n
		}
	}
	if val := os.Getenv(l.envPrefix + "_IMPORT_MESH_MAX_BONE_INFLUENCE"); val != "" {
		if n, err := parseCount(val); err == nil {
			config.Import.MeshMaxBoneInfluence = n
		}
	}

	// Task configuration
	if val := os.Getenv(l.envPrefix + "_TASK_WORKERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Task.Workers = n
		}
	}

	// Protocol configuration
	if val := os.Getenv(l.envPrefix + "_PROTOCOL_MAX_PAYLOAD_SIZE"); val != "" {
		if n, err := parseCount(val); err == nil {
			config.Protocol.MaxPayloadSize = n
		}
	}

	return nil
}

// parseCount parses a non-negative integer
func parseCount(val string) (int, error) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count: %d", n)
	}
	return n, nil
}

// mergeConfig merges user config with default config
func (l *Loader) mergeConfig(defaultConfig, userConfig *Config) *Config {
	merged := *defaultConfig

	// App config
	if userConfig.App.Name != "" {
		merged.App.Name = userConfig.App.Name
	}
	if userConfig.App.Environment != "" {
		merged.App.Environment = userConfig.App.Environment
	}
	merged.App.Debug = userConfig.App.Debug

	// Log config
	if userConfig.Log.Level != "" {
		merged.Log.Level = userConfig.Log.Level
	}
	if userConfig.Log.Format != "" {
		merged.Log.Format = userConfig.Log.Format
	}
	if userConfig.Log.Output != "" {
		merged.Log.Output = userConfig.Log.Output
	}

	// Import config
	if userConfig.Import.ZUpCorrection != "" {
		merged.Import.ZUpCorrection = userConfig.Import.ZUpCorrection
	}
	if userConfig.Import.MeshSplitUnit != 0 {
		merged.Import.MeshSplitUnit = userConfig.Import.MeshSplitUnit
	}
	if userConfig.Import.MeshMaxBoneInfluence != 0 {
		merged.Import.MeshMaxBoneInfluence = userConfig.Import.MeshMaxBoneInfluence
	}

	// Task config
	if userConfig.Task.Workers != 0 {
		merged.Task.Workers = userConfig.Task.Workers
	}

	// Protocol config
	if userConfig.Protocol.MaxPayloadSize != 0 {
		merged.Protocol.MaxPayloadSize = userConfig.Protocol.MaxPayloadSize
	}

	// Custom fields
	if userConfig.Custom != nil {
		if merged.Custom == nil {
			merged.Custom = make(map[string]interface{})
		}
		for k, v := range userConfig.Custom {
			merged.Custom[k] = v
		}
	}

	return &merged
}
