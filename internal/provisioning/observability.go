package provisioning

import (
	"fmt"
	"io"
	"maps"
	"time"

	"github.com/go-logr/logr"
)

// Observer reports run progress to the operator and the structured log.
type Observer interface {
	// Printf writes an operator-facing console line.
	Printf(format string, v ...any)

	// Event emits a structured event.
	Event(event Event)

	// WithFields returns a new Observer with additional context fields.
	WithFields(fields map[string]string) Observer
}

// Event represents a structured install event.
type Event struct {
	Type      EventType
	Phase     string
	Message   string
	Resource  string
	Timestamp time.Time
	Fields    map[string]string
	// Err is set on failure events.
	Err error
}

// EventType represents the type of install event.
type EventType string

const (
	EventPhaseStarted   EventType = "phase.started"
	EventPhaseCompleted EventType = "phase.completed"
	EventPhaseFailed    EventType = "phase.failed"

	EventResourceCreating EventType = "resource.creating"
	EventResourceCreated  EventType = "resource.created"
	EventResourceExists   EventType = "resource.exists"
	EventResourceDeleting EventType = "resource.deleting"
	EventResourceDeleted  EventType = "resource.deleted"
	EventResourceFailed   EventType = "resource.failed"
)

// ConsoleObserver writes console lines to an io.Writer and events to a logr.Logger.
type ConsoleObserver struct {
	out           io.Writer
	log           logr.Logger
	contextFields map[string]string
}

// NewConsoleObserver creates an observer.
func NewConsoleObserver(out io.Writer, log logr.Logger) *ConsoleObserver {
	return &ConsoleObserver{
		out:           out,
		log:           log,
		contextFields: make(map[string]string),
	}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	_, _ = fmt.Fprintf(o.out, format+"\n", v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	kv := []any{"type", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			kv = append(kv, k, v)
		}
	}
	for k, v := range event.Fields {
		kv = append(kv, k, v)
	}

	if event.Err != nil || event.Type == EventPhaseFailed || event.Type == EventResourceFailed {
		o.log.Error(event.Err, event.Message, kv...)
		return
	}
	o.log.Info(event.Message, kv...)
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	merged := maps.Clone(o.contextFields)
	maps.Copy(merged, fields)
	return &ConsoleObserver{out: o.out, log: o.log, contextFields: merged}
}

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{Type: EventPhaseStarted, Phase: phase, Message: "starting"})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{Type: EventPhaseFailed, Phase: phase, Message: "failed", Err: err})
}

// LogResourceCreating logs that a tenant or user is about to be created.
func LogResourceCreating(observer Observer, phase, kind, name string) {
	observer.Event(resourceEvent(EventResourceCreating, phase, kind, name, "creating "+kind))
}

// LogResourceCreated logs a created resource with its store id.
func LogResourceCreated(observer Observer, phase, kind, name, id string) {
	e := resourceEvent(EventResourceCreated, phase, kind, name, kind+" created")
	e.Fields["id"] = id
	observer.Event(e)
}

// LogResourceExists logs a resource found before it was created.
func LogResourceExists(observer Observer, phase, kind, name, id string) {
	e := resourceEvent(EventResourceExists, phase, kind, name, kind+" already exists")
	e.Fields["id"] = id
	observer.Event(e)
}

// LogResourceDeleting logs that a resource is about to be deleted.
func LogResourceDeleting(observer Observer, phase, kind, name string) {
	observer.Event(resourceEvent(EventResourceDeleting, phase, kind, name, "deleting "+kind))
}

// LogResourceDeleted logs a deleted resource.
func LogResourceDeleted(observer Observer, phase, kind, name string) {
	observer.Event(resourceEvent(EventResourceDeleted, phase, kind, name, kind+" deleted"))
}

// LogResourceFailed logs a failed create or delete.
func LogResourceFailed(observer Observer, phase, kind, name string, err error) {
	e := resourceEvent(EventResourceFailed, phase, kind, name, kind+" operation failed")
	e.Err = err
	observer.Event(e)
}

func resourceEvent(typ EventType, phase, kind, name, message string) Event {
	return Event{
		Type:     typ,
		Phase:    phase,
		Resource: name,
		Message:  message,
		Fields:   map[string]string{"kind": kind},
	}
}
