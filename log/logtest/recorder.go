/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package logtest

import (
	"sync"

	"github.com/ssgreg/logf"

	"github.com/acronis/go-hostlimit/log"
)

// RecordedEntry represents recorded entry which was logged.
type RecordedEntry struct {
	Fields []log.Field
	Level  log.Level
	Text   string
}

// FindField tries to find field in logging entry by key.
func (re *RecordedEntry) FindField(key string) (log.Field, bool) {
	for _, field := range re.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return log.Field{}, false
}

type entryRecorder struct {
	mu      sync.RWMutex
	entries []RecordedEntry
}

//nolint:gocritic
func (er *entryRecorder) WriteEntry(e logf.Entry) {
	fields := make([]log.Field, 0, len(e.Fields)+len(e.DerivedFields))
	fields = append(fields, e.DerivedFields...)
	fields = append(fields, e.Fields...)

	er.mu.Lock()
	er.entries = append(er.entries, RecordedEntry{Fields: fields, Level: levelFromLogf(e.Level), Text: e.Text})
	er.mu.Unlock()
}

// Recorder is a log.FieldLogger that keeps all logged entries (debug level included).
type Recorder struct {
	*log.LogfAdapter
	recorder *entryRecorder
}

// NewRecorder returns an initialized Recorder.
func NewRecorder() *Recorder {
	er := &entryRecorder{}
	return &Recorder{&log.LogfAdapter{Logger: logf.NewLogger(logf.LevelDebug, er)}, er}
}

// With returns a new Recorder with the given additional fields that shares entries with the original one.
func (r *Recorder) With(fs ...log.Field) log.FieldLogger {
	return &Recorder{r.LogfAdapter.With(fs...).(*log.LogfAdapter), r.recorder}
}

// Entries returns all recorded logging entries.
func (r *Recorder) Entries() []RecordedEntry {
	r.recorder.mu.RLock()
	defer r.recorder.mu.RUnlock()
	return append([]RecordedEntry(nil), r.recorder.entries...)
}

// FindEntry tries to find recorded logging entry by message.
func (r *Recorder) FindEntry(msg string) (RecordedEntry, bool) {
	entries := r.FindAllEntries(msg)
	if len(entries) == 0 {
		return RecordedEntry{}, false
	}
	return entries[0], true
}

// FindAllEntries returns all recorded logging entries with the given message.
func (r *Recorder) FindAllEntries(msg string) []RecordedEntry {
	r.recorder.mu.RLock()
	defer r.recorder.mu.RUnlock()
	var found []RecordedEntry
	for _, entry := range r.recorder.entries {
		if entry.Text == msg {
			found = append(found, entry)
		}
	}
	return found
}

// Reset drops all recorded entries.
func (r *Recorder) Reset() {
	r.recorder.mu.Lock()
	r.recorder.entries = nil
	r.recorder.mu.Unlock()
}

func levelFromLogf(value logf.Level) log.Level {
	switch value {
	case logf.LevelError:
		return log.LevelError
	case logf.LevelWarn:
		return log.LevelWarn
	case logf.LevelDebug:
		return log.LevelDebug
	}
	return log.LevelInfo
}
