package config

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure reported by Load.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig is returned when a provider (file or env) cannot be read.
	ErrLoadConfig = errors.New("load config failed")
	// ErrInvalidAnchor marks a static season anchor that is partial or out of range.
	// It is always wrapped together with ErrInvalidConfig.
	ErrInvalidAnchor = errors.New("invalid season anchor")
)
