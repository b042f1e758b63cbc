// Package security records security-relevant events (failed logins,
// suspicious payloads, unauthorized access) and raises alerts when an event
// type crosses its per-client threshold.
package security

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	EventFailedLogin        = "failed_login"
	EventSuspiciousRequest  = "suspicious_request"
	EventUnauthorizedAccess = "unauthorized_access"
	EventRateLimitExceeded  = "rate_limit_exceeded"
	EventUploadViolation    = "file_upload_violation"
)

const maxRetainedEvents = 1000

// Event is one recorded occurrence.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	UserAgent string    `json:"user_agent"`
	Detail    string    `json:"detail"`
}

// Threshold triggers an alert when an event type fires Count times within
// Window for a single client.
type Threshold struct {
	Count  int64
	Window time.Duration
}

var defaultThresholds = map[string]Threshold{
	EventFailedLogin:        {Count: 5, Window: 15 * time.Minute},
	EventSuspiciousRequest:  {Count: 10, Window: time.Minute},
	EventUnauthorizedAccess: {Count: 3, Window: 5 * time.Minute},
	EventRateLimitExceeded:  {Count: 1, Window: time.Minute},
}

var severities = map[string]string{
	EventFailedLogin:        "medium",
	EventSuspiciousRequest:  "medium",
	EventUnauthorizedAccess: "high",
	EventRateLimitExceeded:  "low",
	EventUploadViolation:    "high",
}

// Monitor keeps a bounded in-memory event log and an injected counter store
// for threshold tracking.
type Monitor struct {
	mu         sync.Mutex
	counters   CounterStore
	events     []Event
	alerts     []Event
	thresholds map[string]Threshold
	now        func() time.Time
}

func NewMonitor(counters CounterStore) *Monitor {
	return &Monitor{
		counters:   counters,
		thresholds: defaultThresholds,
		now:        time.Now,
	}
}

// Record logs one event and evaluates the threshold for its type+client pair.
func (m *Monitor) Record(eventType, ip, method, path, userAgent, detail string) Event {
	sev := severities[eventType]
	if sev == "" {
		sev = "low"
	}
	evt := Event{
		ID:        "sec_" + uuid.NewString(),
		Type:      eventType,
		Severity:  sev,
		Timestamp: m.now(),
		IP:        ip,
		Path:      path,
		Method:    method,
		UserAgent: userAgent,
		Detail:    detail,
	}

	m.mu.Lock()
	m.events = append(m.events, evt)
	if len(m.events) > maxRetainedEvents {
		m.events = m.events[len(m.events)-maxRetainedEvents:]
	}
	m.mu.Unlock()

	if th, ok := m.thresholds[eventType]; ok {
		n := m.counters.Increment(eventType+":"+ip, th.Window)
		if n >= th.Count {
			m.mu.Lock()
			m.alerts = append(m.alerts, evt)
			if len(m.alerts) > maxRetainedEvents {
				m.alerts = m.alerts[len(m.alerts)-maxRetainedEvents:]
			}
			m.mu.Unlock()
			log.Printf("security alert: %s from %s hit %d occurrences", eventType, ip, n)
			m.counters.Expire(eventType + ":" + ip)
		}
	}
	return evt
}

// Report is the admin-facing snapshot.
type Report struct {
	TotalEvents  int              `json:"total_events"`
	EventsByType map[string]int64 `json:"events_by_type"`
	RecentEvents []Event          `json:"recent_events"`
	RecentAlerts []Event          `json:"recent_alerts"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// Report returns the last 50 events plus totals grouped by type.
func (m *Monitor) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	byType := map[string]int64{}
	for _, e := range m.events {
		byType[e.Type]++
	}
	recent := m.events
	if len(recent) > 50 {
		recent = recent[len(recent)-50:]
	}
	alerts := m.alerts
	if len(alerts) > 50 {
		alerts = alerts[len(alerts)-50:]
	}
	return Report{
		TotalEvents:  len(m.events),
		EventsByType: byType,
		RecentEvents: append([]Event(nil), recent...),
		RecentAlerts: append([]Event(nil), alerts...),
		GeneratedAt:  m.now(),
	}
}
