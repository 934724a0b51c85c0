// Package nulllog contains logging helpers internal to this module.
package nulllog

// NullLogger is a [wfq.Logger] that does not emit logs. Tests that do not
// care about log output should use this instead of wiring up apex/log.
type NullLogger struct{}

// Debug implements wfq.Logger.
func (nl *NullLogger) Debug(message string) {
	// nothing
}

// Debugf implements wfq.Logger.
func (nl *NullLogger) Debugf(format string, v ...any) {
	// nothing
}

// Info implements wfq.Logger.
func (nl *NullLogger) Info(message string) {
	// nothing
}

// Infof implements wfq.Logger.
func (nl *NullLogger) Infof(format string, v ...any) {
	// nothing
}

// Warn implements wfq.Logger.
func (nl *NullLogger) Warn(message string) {
	// nothing
}

// Warnf implements wfq.Logger.
func (nl *NullLogger) Warnf(format string, v ...any) {
	// nothing
}
