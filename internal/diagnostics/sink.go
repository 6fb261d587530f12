// Package diagnostics carries audit events out of the extraction core.
//
// The core never logs on its own. Callers pass a Sink, which keeps analyses testable and
// lets the CLI both log through zap and hand the same events back as a tracking record.
package diagnostics

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event is one recorded step or recovered failure.
type Event struct {
	Time    time.Time `json:"time" yaml:"time"`
	Level   Level     `json:"level" yaml:"level"`
	Stage   string    `json:"stage" yaml:"stage"`
	Message string    `json:"message" yaml:"message"`
	Member  string    `json:"member,omitempty" yaml:"member,omitempty"`
	Error   string    `json:"error,omitempty" yaml:"error,omitempty"`
}

type Sink interface {
	Record(Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(Event) {}

// Recorder keeps events in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Record(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events in recording order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

type tee []Sink

func (t tee) Record(event Event) {
	for _, sink := range t {
		sink.Record(event)
	}
}

// Tee forwards every event to each non-nil sink.
func Tee(sinks ...Sink) Sink {
	kept := make(tee, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			kept = append(kept, sink)
		}
	}
	return kept
}

type zapSink struct {
	logger *zap.Logger
}

// NewZapSink writes events as structured zap entries.
func NewZapSink(logger *zap.Logger) Sink {
	return zapSink{logger: logger}
}

func (s zapSink) Record(event Event) {
	fields := []zap.Field{zap.String("stage", event.Stage)}
	if event.Member != "" {
		fields = append(fields, zap.String("member", event.Member))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	if checked := s.logger.Check(event.Level.zapLevel(), event.Message); checked != nil {
		checked.Write(fields...)
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Reporter stamps events for one analysis stage before handing them to a sink.
type Reporter struct {
	Sink  Sink
	Stage string
	now   func() time.Time
}

func NewReporter(sink Sink, stage string) Reporter {
	if sink == nil {
		sink = Nop{}
	}
	return Reporter{Sink: sink, Stage: stage, now: time.Now}
}

func (r Reporter) emit(level Level, message, member string, err error) {
	now := r.now
	if now == nil {
		now = time.Now
	}
	event := Event{Time: now().UTC(), Level: level, Stage: r.Stage, Message: message, Member: member}
	if err != nil {
		event.Error = err.Error()
	}
	r.Sink.Record(event)
}

func (r Reporter) Debug(message, member string) {
	r.emit(LevelDebug, message, member, nil)
}

func (r Reporter) Info(message, member string) {
	r.emit(LevelInfo, message, member, nil)
}

func (r Reporter) Warn(message, member string, err error) {
	r.emit(LevelWarn, message, member, err)
}

func (r Reporter) Error(message, member string, err error) {
	r.emit(LevelError, message, member, err)
}
