package main

import "github.com/apex/log"

// apexLogger adapts apex/log's package-level logger to [wfq.Logger], so
// the scheduler can log through the same structured logging stack as
// the rest of this command without importing apex/log itself.
type apexLogger struct {
	entry *log.Entry
}

func newApexLogger(fields log.Fields) *apexLogger {
	return &apexLogger{entry: log.WithFields(fields)}
}

func (l *apexLogger) Debug(msg string)            { l.entry.Debug(msg) }
func (l *apexLogger) Debugf(f string, args ...any) { l.entry.Debugf(f, args...) }
func (l *apexLogger) Info(msg string)             { l.entry.Info(msg) }
func (l *apexLogger) Infof(f string, args ...any)  { l.entry.Infof(f, args...) }
func (l *apexLogger) Warn(msg string)             { l.entry.Warn(msg) }
func (l *apexLogger) Warnf(f string, args ...any)  { l.entry.Warnf(f, args...) }
