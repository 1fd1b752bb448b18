// Package audit records who accessed which records. Logging is
// fire-and-forget: a failure to record an access must never fail the
// operation that triggered it.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// AccessEntry captures a single record access.
type AccessEntry struct {
	RecordID     string
	RecordType   string
	AccessSource string
	UserID       string
	Timestamp    time.Time
}

// Recorder persists audit entries. Implementations must tolerate being
// called concurrently.
type Recorder interface {
	RecordAccess(ctx context.Context, entry AccessEntry) error
}

// RecorderFunc is a function adapter for Recorder.
type RecorderFunc func(ctx context.Context, entry AccessEntry) error

func (f RecorderFunc) RecordAccess(ctx context.Context, entry AccessEntry) error {
	return f(ctx, entry)
}

// Logger buffers access entries and drains them on a background goroutine.
// When the buffer is full, entries are dropped rather than blocking the
// calling request.
type Logger struct {
	log      zerolog.Logger
	recorder Recorder
	entries  chan AccessEntry

	closeOnce sync.Once
	done      chan struct{}
	drained   chan struct{}
}

// NewLogger starts a Logger draining into recorder. A nil recorder logs
// entries through zerolog only.
func NewLogger(log zerolog.Logger, recorder Recorder, buffer int) *Logger {
	if buffer <= 0 {
		buffer = 1024
	}
	l := &Logger{
		log:      log,
		recorder: recorder,
		entries:  make(chan AccessEntry, buffer),
		done:     make(chan struct{}),
		drained:  make(chan struct{}),
	}
	go l.drain()
	return l
}

// LogAccess enqueues an access entry. It never blocks and never returns an
// error; if the buffer is full the entry is dropped and counted in the log.
func (l *Logger) LogAccess(recordID, recordType, accessSource, userID string) {
	entry := AccessEntry{
		RecordID:     recordID,
		RecordType:   recordType,
		AccessSource: accessSource,
		UserID:       userID,
		Timestamp:    time.Now().UTC(),
	}
	select {
	case l.entries <- entry:
	case <-l.done:
	default:
		l.log.Warn().
			Str("record_type", recordType).
			Msg("audit buffer full, access entry dropped")
	}
}

func (l *Logger) drain() {
	defer close(l.drained)
	for {
		select {
		case entry := <-l.entries:
			l.write(entry)
		case <-l.done:
			// Flush whatever is left in the buffer.
			for {
				select {
				case entry := <-l.entries:
					l.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) write(entry AccessEntry) {
	evt := l.log.Info().
		Str("record_id", entry.RecordID).
		Str("record_type", entry.RecordType).
		Str("access_source", entry.AccessSource).
		Str("user_id", entry.UserID).
		Time("accessed_at", entry.Timestamp)

	if l.recorder != nil {
		if err := l.recorder.RecordAccess(context.Background(), entry); err != nil {
			// Recorder failures are logged and swallowed.
			l.log.Error().Err(err).Msg("audit recorder failed")
		}
	}
	evt.Msg("record access")
}

// Close stops the drain goroutine after flushing buffered entries.
func (l *Logger) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	<-l.drained
}
