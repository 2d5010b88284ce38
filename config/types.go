// Package config provides configuration management for the scene bridge
package config

import (
	"fmt"
	"strings"

	"github.com/scenebridge/scenebridge/logging"
	"github.com/scenebridge/scenebridge/scene"
	"github.com/scenebridge/scenebridge/task"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// String returns the string representation of Environment
func (e Environment) String() string {
	return string(e)
}

// IsValid checks if the environment is valid
func (e Environment) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvTesting, EnvProduction:
		return true
	default:
		return false
	}
}

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	return string(l)
}

// IsValid checks if the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// Config represents the complete scene bridge configuration
type Config struct {
	// Application configuration
	App AppConfig `yaml:"app" json:"app"`

	// Logging configuration
	Log LogConfig `yaml:"log" json:"log"`

	// Scene import configuration
	Import ImportConfig `yaml:"import" json:"import"`

	// Task pool configuration
	Task TaskConfig `yaml:"task" json:"task"`

	// Protocol configuration
	Protocol ProtocolConfig `yaml:"protocol" json:"protocol"`

	// Custom application-specific settings
	Custom map[string]interface{} `yaml:"custom" json:"custom"`
}

// AppConfig contains application-level settings
type AppConfig struct {
	// Application name
	Name string `yaml:"name" json:"name"`

	// Deployment environment
	Environment Environment `yaml:"environment" json:"environment"`

	// Debug mode
	Debug bool `yaml:"debug" json:"debug"`
}

// LogConfig contains logging settings
type LogConfig struct {
	// Log level (debug, info, warn, error)
	Level LogLevel `yaml:"level" json:"level"`

	// Output format (json, console)
	Format string `yaml:"format" json:"format"`

	// Output destination (stdout, stderr, or a file path)
	Output string `yaml:"output" json:"output"`
}

// ImportConfig controls how incoming scenes are normalized to the
// canonical frame
type ImportConfig struct {
	// Correction mode for Z-up coordinate systems (flip_yz, rotate_x)
	ZUpCorrection string `yaml:"zup_correction" json:"zup_correction"`

	// Vertex count above which a mesh is marked for splitting
	MeshSplitUnit int `yaml:"mesh_split_unit" json:"mesh_split_unit"`

	// Maximum bone influences retained per vertex
	MeshMaxBoneInfluence int `yaml:"mesh_max_bone_influence" json:"mesh_max_bone_influence"`
}

// TaskConfig controls the worker pool used by bulk scene operations
type TaskConfig struct {
	// Worker count; zero or negative selects GOMAXPROCS
	Workers int `yaml:"workers" json:"workers"`
}

// ProtocolConfig controls message framing limits
type ProtocolConfig struct {
	// Maximum accepted payload size in bytes
	MaxPayloadSize int `yaml:"max_payload_size" json:"max_payload_size"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "scenebridge",
			Environment: EnvDevelopment,
			Debug:       false,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: "console",
			Output: "stdout",
		},
		Import: ImportConfig{
			ZUpCorrection:        "flip_yz",
			MeshSplitUnit:        65000,
			MeshMaxBoneInfluence: 4,
		},
		Task: TaskConfig{
			Workers: 0,
		},
		Protocol: ProtocolConfig{
			MaxPayloadSize: 512 * 1024 * 1024,
		},
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.App.Environment != "" && !c.App.Environment.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidEnvironment, c.App.Environment)
	}
	if c.Log.Level != "" && !c.Log.Level.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.Log.Level)
	}

	switch strings.ToLower(c.Import.ZUpCorrection) {
	case "flip_yz", "rotate_x", "":
	default:
		return fmt.Errorf("%w: %s", ErrInvalidZUpCorrection, c.Import.ZUpCorrection)
	}

	if c.Import.MeshSplitUnit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSplitUnit, c.Import.MeshSplitUnit)
	}
	if c.Import.MeshMaxBoneInfluence < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBoneInfluence, c.Import.MeshMaxBoneInfluence)
	}
	if c.Protocol.MaxPayloadSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPayloadSize, c.Protocol.MaxPayloadSize)
	}

	return nil
}

// SceneImportSettings converts the import section to scene.ImportSettings
func (c *Config) SceneImportSettings() scene.ImportSettings {
	imp := scene.DefaultImportSettings()
	if strings.ToLower(c.Import.ZUpCorrection) == "rotate_x" {
		imp.ZUpCorrection = scene.RotateX
	}
	if c.Import.MeshSplitUnit > 0 {
		imp.MeshSplitUnit = int32(c.Import.MeshSplitUnit)
	}
	if c.Import.MeshMaxBoneInfluence > 0 {
		imp.MeshMaxBoneInfluence = int32(c.Import.MeshMaxBoneInfluence)
	}
	return imp
}

// NewPool builds a task pool from the task section
func (c *Config) NewPool() *task.Pool {
	return task.NewPool(c.Task.Workers)
}

// NewLogger builds a logger from the app and log sections
func (c *Config) NewLogger() (*logging.Logger, error) {
	development := c.App.Environment != EnvProduction
	debug := c.App.Debug || c.Log.Level == LogLevelDebug
	return logging.New(development, debug)
}
