// Package config provides error definitions for configuration management
package config

import "errors"

// Configuration validation errors
var (
	ErrInvalidEnvironment   = errors.New("invalid environment")
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrInvalidZUpCorrection = errors.New("invalid zup correction mode")
	ErrInvalidSplitUnit     = errors.New("invalid mesh split unit")
	ErrInvalidBoneInfluence = errors.New("invalid mesh max bone influence")
	ErrInvalidPayloadSize   = errors.New("invalid max payload size")
)

// Configuration loading errors
var (
	ErrConfigFileNotFound = errors.New("configuration file not found")
	ErrConfigParseError   = errors.New("configuration parse error")
	ErrConfigWatchError   = errors.New("configuration watch error")
)
