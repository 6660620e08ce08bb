package telemetry

import (
	"github.com/barrymcandrews/aurora-home-skill/internal/directive"
)

// Logger defines the logging interface used by observers.
type Logger interface {
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

func orNoop(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}

// Multi fans each event out to every observer in order.
type Multi []directive.Observer

// ObserveDirective implements directive.Observer.
func (m Multi) ObserveDirective(ev directive.Event) {
	for _, o := range m {
		if o != nil {
			o.ObserveDirective(ev)
		}
	}
}
