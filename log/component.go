package log

import logrus "github.com/sirupsen/logrus"

// Entry is a component-scoped logger. Calls are dropped while logging is disabled.
type Entry struct {
	entry *logrus.Entry
}

// Component returns an Entry tagging every emission with the given component name.
func Component(name string) *Entry {
	return &Entry{entry: logrus.WithField("component", name)}
}

// WithField returns a copy of e carrying an extra field.
func (e *Entry) WithField(k string, v interface{}) *Entry {
	return &Entry{entry: e.entry.WithField(k, v)}
}

func (e *Entry) Errorf(format string, args ...interface{}) {
	if enabled {
		e.entry.Errorf(format, args...)
	}
}

func (e *Entry) Warnf(format string, args ...interface{}) {
	if enabled {
		e.entry.Warnf(format, args...)
	}
}

func (e *Entry) Infof(format string, args ...interface{}) {
	if enabled {
		e.entry.Infof(format, args...)
	}
}

// Debugf is used for high-frequency element notifications such as timeupdate.
func (e *Entry) Debugf(format string, args ...interface{}) {
	if enabled {
		e.entry.Debugf(format, args...)
	}
}
