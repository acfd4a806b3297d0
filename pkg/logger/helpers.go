package logger

import "time"

// LogRequest logs an outbound API call at debug level.
func LogRequest(path string, purpose string, params string) {
	GetLogger().DebugWithFields("issuing API request", map[string]interface{}{
		"path":    path,
		"purpose": purpose,
		"params":  params,
	})
}

// LogRateLimit logs a rate-limit cooldown event.
func LogRateLimit(path string, cooldown time.Duration) {
	GetLogger().WarnWithFields("rate limited, entering cooldown", map[string]interface{}{
		"path":     path,
		"cooldown": cooldown,
	})
}

// LogUserVisit logs the start of a per-user expansion.
func LogUserVisit(identity, screenName string, pending int) {
	GetLogger().InfoWithFields("visiting user", map[string]interface{}{
		"identity":    identity,
		"screen_name": screenName,
		"pending":     pending,
	})
}

// LogUserSkipped logs a user excluded from expansion with its reason.
func LogUserSkipped(identity, screenName, disposition string) {
	GetLogger().InfoWithFields("skipping user", map[string]interface{}{
		"identity":    identity,
		"screen_name": screenName,
		"disposition": disposition,
	})
}

// LogFatal logs the full context of a fatal classification before exit.
func LogFatal(path, params string, status int, err error) {
	GetLogger().ErrorWithFields("fatal API failure", map[string]interface{}{
		"path":   path,
		"params": params,
		"status": status,
		"error":  err,
	})
}
