package utils

import (
	"strings"

	"go.uber.org/zap"
)

// LogEvent writes a standardized event line with module/action/request_id.
// Avoid logging full payloads; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	zap.L().Info(message,
		zap.String("module", strings.ToLower(module)),
		zap.String("action", action),
		zap.String("request_id", strings.TrimSpace(requestID)),
	)
}

// LogFailure is LogEvent for errors that are returned to the caller.
func LogFailure(requestID, module, action string, err error) {
	zap.L().Warn("operation failed",
		zap.String("module", strings.ToLower(module)),
		zap.String("action", action),
		zap.String("request_id", strings.TrimSpace(requestID)),
		zap.Error(err),
	)
}
