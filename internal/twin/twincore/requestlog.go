package twincore

import (
	"sync"
	"time"
)

// RequestLogEntry is one request as reported by GET /admin/requests.
type RequestLogEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Query      string            `json:"query,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	StatusCode int               `json:"status_code"`
	DurationMS int64             `json:"duration_ms"`
	RequestID  string            `json:"request_id,omitempty"`
}

// RequestLog keeps the most recent requests in a fixed-size ring.
type RequestLog struct {
	mu   sync.Mutex
	ring []RequestLogEntry
	next int // slot the next Add writes
	full bool
}

func NewRequestLog(size int) *RequestLog {
	return &RequestLog{ring: make([]RequestLogEntry, size)}
}

// Add records e, overwriting the oldest entry once the ring is full.
func (l *RequestLog) Add(e RequestLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.ring) == 0 {
		return
	}
	l.ring[l.next] = e
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.full = true
	}
}

// Entries returns the recorded requests oldest first.
func (l *RequestLog) Entries() []RequestLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.full {
		return append([]RequestLogEntry(nil), l.ring[:l.next]...)
	}
	out := make([]RequestLogEntry, 0, len(l.ring))
	out = append(out, l.ring[l.next:]...)
	return append(out, l.ring[:l.next]...)
}

func (l *RequestLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.ring)
	l.next, l.full = 0, false
}
