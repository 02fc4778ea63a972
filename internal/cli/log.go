package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodeflow/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered diagram (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports engine and cache events as debug log lines.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.EngineHooks = logHooks{}
	_ observability.CacheHooks  = logHooks{}
)

func (h logHooks) OnRunStart(_ context.Context, nodeCount int) {
	h.logger.Debug("run started", "nodes", nodeCount)
}

func (h logHooks) OnNodeStart(_ context.Context, nodeID, name string) {
	h.logger.Debug("executing node", "id", nodeID, "name", name)
}

func (h logHooks) OnNodeComplete(_ context.Context, nodeID, name string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("node failed", "id", nodeID, "name", name, "duration", d, "err", err)
		return
	}
	h.logger.Debug("node done", "id", nodeID, "name", name, "duration", d)
}

func (h logHooks) OnRunComplete(_ context.Context, status string, executed int, d time.Duration, _ error) {
	h.logger.Debug("run complete", "status", status, "executed", executed, "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
