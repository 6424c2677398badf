package llm

import (
	"go.uber.org/zap"
)

// LLMCallEvent describes one finished oracle call, successful or not.
type LLMCallEvent struct {
	Task      TaskType
	Provider  Provider
	Model     string
	Web       bool
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer is told about every oracle call a client makes.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes one structured line per call: info for successes,
// warn for failures.
type LogObserver struct {
	log *zap.Logger
}

func NewLogObserver(log *zap.Logger) *LogObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogObserver{log: log}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	fields := []zap.Field{
		zap.String("task", string(event.Task)),
		zap.String("provider", string(event.Provider)),
		zap.String("model", event.Model),
		zap.Int64("latency_ms", event.LatencyMs),
	}
	if event.Web {
		fields = append(fields, zap.Bool("web_context", true))
	}
	if event.Success {
		o.log.Info("llm_call", append(fields, zap.String("status", "ok"))...)
		return
	}
	o.log.Warn("llm_call", append(fields, zap.String("status", "err:"+event.ErrorCode))...)
}

type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}
