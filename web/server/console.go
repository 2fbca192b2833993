package server

import (
	"strings"
	"sync"
	"time"
)

// ConsoleMessage is one captured log line
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ConsoleBuffer retains the most recent log lines so the web console can
// poll them. It implements io.Writer and is meant to be installed as a
// logging sink next to stderr.
type ConsoleBuffer struct {
	mu    sync.Mutex
	lines []ConsoleMessage
	next  int
	limit int
}

// NewConsoleBuffer creates a buffer that retains up to limit lines
func NewConsoleBuffer(limit int) *ConsoleBuffer {
	if limit <= 0 {
		limit = 200
	}
	return &ConsoleBuffer{
		lines: make([]ConsoleMessage, 0, limit),
		limit: limit,
	}
}

// Write splits p into lines and appends them to the ring. It never fails,
// so a slow console cannot break logging.
func (b *ConsoleBuffer) Write(p []byte) (int, error) {
	now := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, line := range strings.Split(string(p), "\n") {
		if line == "" {
			continue
		}
		msg := ConsoleMessage{Message: line, Timestamp: now}
		if len(b.lines) < b.limit {
			b.lines = append(b.lines, msg)
		} else {
			b.lines[b.next] = msg
			b.next = (b.next + 1) % b.limit
		}
	}
	return len(p), nil
}

// Messages returns the retained lines, oldest first
func (b *ConsoleBuffer) Messages() []ConsoleMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]ConsoleMessage, 0, len(b.lines))
	if len(b.lines) < b.limit {
		return append(out, b.lines...)
	}
	out = append(out, b.lines[b.next:]...)
	return append(out, b.lines[:b.next]...)
}

// Len reports how many lines are currently retained
func (b *ConsoleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}
