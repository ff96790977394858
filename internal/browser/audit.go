package browser

import (
	"log/slog"
	"time"

	"github.com/neboloop/browserpilot/internal/logging"
)

// sensitiveActions can leak credentials or run arbitrary code in the page.
var sensitiveActions = map[string]bool{
	ActionNavigate: true,
	ActionType:     true,
	ActionEvaluate: true,
}

type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger() *auditLogger {
	return &auditLogger{
		logger: logging.With("component", "browser-audit"),
	}
}

func (l *auditLogger) logAction(driver string, a Action, elapsed time.Duration, err error) {
	if l == nil {
		return
	}

	attrs := []any{
		"driver", driver,
		"action", a.Name,
		"ms", elapsed.Milliseconds(),
		"ts", time.Now().Unix(),
	}
	if a.URL != "" {
		attrs = append(attrs, "url", a.URL)
	}
	if a.Selector != "" {
		attrs = append(attrs, "selector", truncate(a.Selector, 80))
	}
	if a.Text != "" {
		attrs = append(attrs, "text_len", len(a.Text))
	}
	if a.Script != "" {
		attrs = append(attrs, "script", truncate(a.Script, 80))
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}

	if sensitiveActions[a.Name] {
		l.logger.Warn("browser_sensitive_action", attrs...)
	} else {
		l.logger.Info("browser_action", attrs...)
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
