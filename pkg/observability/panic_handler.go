package observability

import "runtime/debug"

// RecoverPanic recovers a panic in a detached goroutine and logs it with the
// stack trace instead of letting the goroutine take the process down. Call in
// a defer at the top of background work (notification dispatch, scheduled
// jobs). The panic is not re-raised.
func RecoverPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.WithFields(map[string]interface{}{
			"panic":   r,
			"stack":   string(debug.Stack()),
			"context": context,
		}).Error("panic recovered")
	}
}
