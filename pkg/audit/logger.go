package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// Logger is an audit backend.
type Logger interface {
	Log(event *Event) error
	Query(filter Filter) ([]*Event, error)
	Close() error
}

// Option configures a FileLogger.
type Option func(*FileLogger)

// WithRotation rotates the log once it reaches maxSize bytes and keeps at
// most maxBackups rotated files. Zero disables either limit.
func WithRotation(maxSize int64, maxBackups int) Option {
	return func(l *FileLogger) {
		l.maxSize = maxSize
		l.maxBackups = maxBackups
	}
}

// FileLogger appends audit events to a JSON-lines file.
type FileLogger struct {
	path       string
	maxSize    int64
	maxBackups int

	mu   sync.Mutex
	file *os.File
}

// NewFileLogger opens (or creates) the log at path.
func NewFileLogger(path string, opts ...Option) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	l := &FileLogger{path: path}
	for _, o := range opts {
		o(l)
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) open() error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	l.file = f
	return nil
}

// Path returns the log file location.
func (l *FileLogger) Path() string { return l.path }

// Log appends one event.
func (l *FileLogger) Log(event *Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("audit log %s is closed", l.path)
	}
	if l.maxSize > 0 {
		if info, err := l.file.Stat(); err == nil && info.Size()+int64(len(line)) > l.maxSize && info.Size() > 0 {
			if err := l.rotate(); err != nil {
				return fmt.Errorf("rotating audit log: %w", err)
			}
		}
	}
	_, err = l.file.Write(line)
	return err
}

// Query reads the rotated backups, oldest first, then the current log
// file and returns the matching events in the order they were written.
// Malformed lines are skipped.
func (l *FileLogger) Query(filter Filter) ([]*Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := l.backups()
	if err != nil {
		return nil, err
	}
	files = append(files, l.path)

	events := []*Event{}
	for _, path := range files {
		if events, err = readEvents(path, filter, events); err != nil {
			return nil, err
		}
	}
	return filter.page(events), nil
}

func readEvents(path string, filter Filter, events []*Event) ([]*Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return events, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; scanner.Scan(); n++ {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			util.Warnf("audit: skipping malformed entry at %s:%d: %v", path, n, err)
			continue
		}
		if filter.Matches(&ev) {
			events = append(events, &ev)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Close closes the log file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	l.file = nil

	rotated := l.path + "." + time.Now().Format("20060102-150405.000000000")
	if err := os.Rename(l.path, rotated); err != nil {
		return err
	}
	if err := l.open(); err != nil {
		return err
	}
	if l.maxBackups > 0 {
		l.prune()
	}
	return nil
}

// backups returns the rotated files, oldest first. Rotated names carry a
// sortable timestamp suffix.
func (l *FileLogger) backups() ([]string, error) {
	matches, err := filepath.Glob(l.path + ".*")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// prune removes the oldest rotated files beyond maxBackups.
func (l *FileLogger) prune() {
	matches, err := l.backups()
	if err != nil || len(matches) <= l.maxBackups {
		return
	}
	for _, old := range matches[:len(matches)-l.maxBackups] {
		if err := os.Remove(old); err != nil {
			util.Warnf("audit: removing %s: %v", old, err)
		}
	}
}

// Matches reports whether e satisfies every set criterion.
func (f Filter) Matches(e *Event) bool {
	switch {
	case f.Router != "" && e.Router != f.Router:
		return false
	case f.User != "" && e.User != f.User:
		return false
	case f.Operation != "" && e.Operation != f.Operation:
		return false
	case f.Target != "" && e.Target != f.Target:
		return false
	case !f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime):
		return false
	case !f.EndTime.IsZero() && e.Timestamp.After(f.EndTime):
		return false
	case f.SuccessOnly && !e.Success:
		return false
	case f.FailureOnly && e.Success:
		return false
	}
	return true
}

func (f Filter) page(events []*Event) []*Event {
	if f.Offset > 0 {
		if f.Offset >= len(events) {
			return []*Event{}
		}
		events = events[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(events) {
		events = events[:f.Limit]
	}
	return events
}

// loggerHolder wraps a Logger so atomic.Value always stores the same concrete type.
type loggerHolder struct {
	logger Logger
}

var defaultLogger atomic.Value

// SetDefaultLogger installs the process-wide logger. Nil disables auditing.
func SetDefaultLogger(logger Logger) {
	defaultLogger.Store(loggerHolder{logger: logger})
}

func getDefaultLogger() Logger {
	v := defaultLogger.Load()
	if v == nil {
		return nil
	}
	return v.(loggerHolder).logger
}

// Log records event with the default logger, if one is installed.
func Log(event *Event) error {
	l := getDefaultLogger()
	if l == nil {
		return nil
	}
	return l.Log(event)
}

// Query queries events from the default logger
func Query(filter Filter) ([]*Event, error) {
	l := getDefaultLogger()
	if l == nil {
		return []*Event{}, nil
	}
	return l.Query(filter)
}
