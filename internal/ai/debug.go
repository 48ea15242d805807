package ai

import "sync/atomic"

// debugLoggingEnabled guards per-tick debug output of the AI and session code.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging toggles per-tick AI debug logging.
// Called once from main after the log level is parsed.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if per-tick debug logging is enabled:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("agent moved", "pos", body.Location())
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
