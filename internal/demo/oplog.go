package demo

import (
	"time"

	"github.com/hostkit/statedemo/internal/models"
)

// oplog is the bounded operation log. Once full, the oldest entry falls
// off for every new one. Not safe for concurrent use on its own; the
// component guards it with its mutex.
type oplog struct {
	limit   int
	entries []models.LogEntry
}

func newOplog(limit int) *oplog {
	return &oplog{limit: limit}
}

func (l *oplog) append(msg string) {
	if len(l.entries) >= l.limit {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, models.LogEntry{Time: time.Now(), Message: msg})
}

// snapshot returns a copy of the entries, oldest first.
func (l *oplog) snapshot() []models.LogEntry {
	out := make([]models.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *oplog) clear() {
	l.entries = nil
}
