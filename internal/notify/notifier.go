// Package notify is the fire-and-forget user notification channel.
package notify

import "go.uber.org/zap"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notifier interface {
	Notify(message string, severity Severity)
}

// LogNotifier writes notifications to the structured log. It is the
// default sink when no interactive client is attached.
type LogNotifier struct {
	Log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{Log: log}
}

func (n *LogNotifier) Notify(message string, severity Severity) {
	if n.Log == nil {
		return
	}
	switch severity {
	case SeverityError:
		n.Log.Error(message, zap.String("severity", string(severity)))
	case SeverityWarning:
		n.Log.Warn(message, zap.String("severity", string(severity)))
	default:
		n.Log.Info(message, zap.String("severity", string(severity)))
	}
}

// Fanout duplicates notifications to several sinks, e.g. the log and a
// connected websocket client.
type Fanout []Notifier

func (f Fanout) Notify(message string, severity Severity) {
	for _, n := range f {
		if n != nil {
			n.Notify(message, severity)
		}
	}
}
