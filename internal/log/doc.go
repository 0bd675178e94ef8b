// Package log provides slog handlers that keep the bot token and other
// secrets out of log output.
//
// SecureHandler wraps any slog.Handler. It masks attributes whose key names
// a secret (token, password, authorization, ...), whole values that look
// like credentials, and Telegram bot tokens embedded in longer strings such
// as API URLs or wrapped error messages. Masking applies in verbose mode
// too.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Warn("send failed", "error", err) // "/bot123:AA.../" becomes "/bot***REDACTED***/"
package log
