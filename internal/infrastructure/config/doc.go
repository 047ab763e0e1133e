// Package config provides layered configuration management for modxel.
//
// Configuration is resolved in three layers, each overriding the previous:
//  1. Defaults (Default)
//  2. An optional TOML file (default: <user config>/modxel/config.toml)
//  3. Environment variables
//
// Configuration Sections:
//   - Server: connector paths, session cookie name, timeout, user agent
//   - Store: location of the persisted session settings file
//   - Workspace: buffer state directory and scratch directory
//   - Logging: Log level and output format
//   - RateLimit: client-side request rate limiting
//   - Metrics: optional node-exporter textfile output
//
// Example Usage:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// Environment Variables:
//   - MODXEL_CONNECTOR_PATH, MODXEL_LOGIN_PATH, MODXEL_SESSION_COOKIE
//   - MODXEL_TIMEOUT, MODXEL_USER_AGENT
//   - MODXEL_SETTINGS, MODXEL_WORKSPACE, MODXEL_SCRATCH_DIR
//   - LOG_LEVEL, LOG_DEV
//   - MODXEL_RATE_LIMIT_RPS, MODXEL_RATE_LIMIT_BURST
//   - MODXEL_METRICS_TEXTFILE
package config
