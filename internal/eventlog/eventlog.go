// Package eventlog appends timestamped, uniquely tagged lines to files under a log directory.
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// File names used by the HTTP layer.
const (
	RequestLog = "reqLog.log"
	ErrorLog   = "errLog.log"
)

const timestampLayout = "20060102\t15:04:05"

// Recorder accepts event lines. Implementations never fail the caller.
type Recorder interface {
	Record(message string)
}

// Discard is a Recorder that drops every line.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(string) {}

// Sink appends lines of the form "<date>\t<time>\t<uuid>\t<message>\n" to dir/file.
type Sink struct {
	path string
	log  logrus.FieldLogger

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// NewSink returns a Sink writing to dir/file. The directory is created on first write.
func NewSink(dir, file string, log logrus.FieldLogger) *Sink {
	return &Sink{
		path:  filepath.Join(dir, file),
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Path reports the file the sink appends to.
func (s *Sink) Path() string {
	return s.path
}

// Record appends message. Failures are logged and swallowed.
func (s *Sink) Record(message string) {
	line := fmt.Sprintf("%s\t%s\t%s\n", s.now().Format(timestampLayout), s.newID(), message)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.append(line); err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("event log write failed")
	}
}

func (s *Sink) append(line string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
