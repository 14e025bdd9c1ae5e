package config

import (
	"os"
	"strings"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// GetEnv returns the value of an environment variable or a default value if not set.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvironment returns the current environment from LEADFLOW_SERVER_ENVIRONMENT,
// lower-cased. Defaults to development.
func GetEnvironment() string {
	return strings.ToLower(GetEnv("LEADFLOW_SERVER_ENVIRONMENT", EnvDevelopment))
}

// IsDevelopment returns true if running in development environment.
func IsDevelopment() bool {
	return GetEnvironment() == EnvDevelopment
}

// IsProduction returns true if running in production environment.
func IsProduction() bool {
	return GetEnvironment() == EnvProduction
}

// IsProductionLike returns true for staging and production.
func IsProductionLike() bool {
	env := GetEnvironment()
	return env == EnvStaging || env == EnvProduction
}

// IsProductionLike reports whether the loaded config targets staging or production.
func (c *Config) IsProductionLike() bool {
	return c.Server.Environment == EnvStaging || c.Server.Environment == EnvProduction
}
