package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match
	})
}

// expandConfigEnvVars expands environment variables in config string fields
func expandConfigEnvVars(cfg *Config) {
	cfg.Scrape.BaseURL = expandEnvVars(cfg.Scrape.BaseURL)
	cfg.Scrape.UserAgent = expandEnvVars(cfg.Scrape.UserAgent)
	cfg.Endpoints.DataCallPath = expandEnvVars(cfg.Endpoints.DataCallPath)
}
