package trace

import "github.com/sirupsen/logrus"

// LogSink writes every record as a structured logrus entry at Level.
type LogSink struct {
	Logger *logrus.Entry
	Level  logrus.Level
}

// NewLogSink logs records through logger at debug level.
func NewLogSink(logger *logrus.Entry) *LogSink {
	return &LogSink{Logger: logger, Level: logrus.DebugLevel}
}

// Report logs r.
func (s *LogSink) Report(r Record) {
	entry := s.Logger.WithFields(logrus.Fields{
		"source": r.Source,
		"entity": r.Entity,
		"frame":  r.Frame,
	})
	if r.Reason != "" {
		entry = entry.WithField("reason", r.Reason)
	}
	entry.Logf(s.Level, "%s %+v", r.Kind, r.Snapshot)
}
