package lloyd

import (
	"fmt"
	"time"
)

// EventLevel classifies an Event.
type EventLevel string

const (
	EventInfo    EventLevel = "info"
	EventSuccess EventLevel = "success"
	EventWarning EventLevel = "warning"
)

// Event is a human-readable entry of the session log.
type Event struct {
	Time    time.Time  `json:"time"`
	Level   EventLevel `json:"level"`
	Message string     `json:"message"`
}

func (e Event) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format("15:04:05"), e.Message)
}

// eventLog is a fixed-size ring of the most recent events.
type eventLog struct {
	buf  []Event
	next int
	full bool
}

func newEventLog(size int) *eventLog {
	return &eventLog{buf: make([]Event, size)}
}

func (l *eventLog) add(level EventLevel, format string, args ...any) {
	l.buf[l.next] = Event{Time: time.Now(), Level: level, Message: fmt.Sprintf(format, args...)}
	l.next = (l.next + 1) % len(l.buf)
	if l.next == 0 {
		l.full = true
	}
}

// list returns events newest first.
func (l *eventLog) list() []Event {
	n := l.next
	if l.full {
		n = len(l.buf)
	}
	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, l.buf[(l.next-i+len(l.buf))%len(l.buf)])
	}
	return out
}

func (l *eventLog) clear() {
	clear(l.buf)
	l.next = 0
	l.full = false
}
