// Package logging provides structured logging for the alarm panel service.
//
// It wraps log/slog so every record carries the service name and build
// version, and so components can take a *Logger without caring about the
// handler behind it.
//
// Logging is configured via the logging section of the config file:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log the alarm code or broker credentials.
package logging
