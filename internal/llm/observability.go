package llm

import "go.uber.org/zap"

// CallEvent records metadata about a single completion call.
type CallEvent struct {
	RequestID string
	Kind      CallKind
	Model     string
	LatencyMs int64
	Attempts  int
	Success   bool
	ErrorCode string
}

// Observer receives events about completion calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events through a zap logger.
type LogObserver struct {
	log *zap.SugaredLogger
}

// NewLogObserver creates an Observer that logs events to log.
func NewLogObserver(log *zap.SugaredLogger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) OnCallComplete(e CallEvent) {
	kv := []any{
		"request_id", e.RequestID,
		"kind", e.Kind,
		"model", e.Model,
		"latency_ms", e.LatencyMs,
		"attempts", e.Attempts,
	}
	if e.Success {
		o.log.Infow("llm call", kv...)
		return
	}
	o.log.Warnw("llm call failed", append(kv, "error_code", e.ErrorCode)...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
