// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Output defaults to stderr; stdout belongs to command output.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Element updated", zap.String("action", "element/chunk/update"))
//	logger.Error("Request failed", zap.Error(err))
package logging
