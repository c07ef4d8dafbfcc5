// Package history keeps the append-only log of document snapshots.
//
// A Log is seeded with the initial document and only ever grows. Restoring
// an entry returns its document; the caller records that document again as
// a new entry, so no entry is ever edited or removed. Entry order (Seq) is
// authoritative over Timestamp when deciding which entry is most recent.
//
// A Log is not safe for concurrent use; session.Session serializes access.
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/blueprint/internal/ir"
)

// ErrOutOfRange is wrapped by At and Restore for an index outside the log.
var ErrOutOfRange = errors.New("history index out of range")

// Clock supplies entry timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Entry is one snapshot in the log.
type Entry struct {
	Seq       int64       `json:"seq"`
	Timestamp time.Time   `json:"timestamp"`
	Data      ir.Document `json:"data"`
	Hash      string      `json:"hash"` // ir.DocumentHash of Data
}

// Log is an append-only sequence of snapshots. Index 0 is the seed.
type Log struct {
	entries []Entry
	clock   Clock
}

// New returns a log whose first entry is seed.
// A nil clock means SystemClock.
func New(seed ir.Document, clock Clock) *Log {
	if clock == nil {
		clock = SystemClock{}
	}
	l := &Log{clock: clock}
	l.Record(seed)
	return l
}

// Record appends a snapshot of doc stamped with the log's clock.
func (l *Log) Record(doc ir.Document) Entry {
	return l.RecordAt(doc, l.clock.Now())
}

// RecordAt appends a snapshot of doc stamped with ts and returns the new entry.
func (l *Log) RecordAt(doc ir.Document, ts time.Time) Entry {
	snapshot := doc.Clone()
	e := Entry{
		Seq:       int64(len(l.entries)),
		Timestamp: ts,
		Data:      snapshot,
		Hash:      ir.MustDocumentHash(snapshot),
	}
	l.entries = append(l.entries, e)
	return cloneEntry(e)
}

// Restore returns the document stored at index. Later entries are kept.
func (l *Log) Restore(index int) (ir.Document, error) {
	e, err := l.At(index)
	if err != nil {
		return ir.Document{}, err
	}
	return e.Data, nil
}

// At returns a copy of the entry at index.
func (l *Log) At(index int) (Entry, error) {
	if index < 0 || index >= len(l.entries) {
		return Entry{}, fmt.Errorf("%w: history[%d] (len %d)", ErrOutOfRange, index, len(l.entries))
	}
	return cloneEntry(l.entries[index]), nil
}

// Len returns the number of entries. It is never zero.
func (l *Log) Len() int {
	return len(l.entries)
}

// Latest returns a copy of the most recently recorded entry.
func (l *Log) Latest() Entry {
	return cloneEntry(l.entries[len(l.entries)-1])
}

// Entries returns copies of every entry, oldest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func cloneEntry(e Entry) Entry {
	e.Data = e.Data.Clone()
	return e
}
