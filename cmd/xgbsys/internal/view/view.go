package view

import (
	"io"
	"log/slog"
)

// Viewer couples the output stream with the logger for one invocation.
// Results go to the stream; logs go to a separate writer so the directive
// stream on stdout stays parseable.
type Viewer struct {
	*Stream
	Type   ViewType
	logger *slog.Logger
}

func NewViewer(vt ViewType, s *Stream, logs io.Writer, level LogLevel) *Viewer {
	return &Viewer{
		Stream: s,
		Type:   vt,
		logger: NewLogger(vt, logs, level),
	}
}

func (v *Viewer) Logger() *slog.Logger {
	return v.logger
}
