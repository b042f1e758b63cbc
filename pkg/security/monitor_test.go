package security

import (
	"testing"
	"time"
)

func TestMemoryCounterExpiry(t *testing.T) {
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCounter()
	c.now = func() time.Time { return now }

	if n := c.Increment("k", time.Minute); n != 1 {
		t.Fatalf("first increment = %d", n)
	}
	if n := c.Increment("k", time.Minute); n != 2 {
		t.Fatalf("second increment = %d", n)
	}
	if got := c.Get("k"); got != 2 {
		t.Fatalf("get = %d", got)
	}

	// Past the window the counter lazily resets.
	now = now.Add(2 * time.Minute)
	if got := c.Get("k"); got != 0 {
		t.Fatalf("expired get = %d", got)
	}
	if n := c.Increment("k", time.Minute); n != 1 {
		t.Fatalf("post-expiry increment = %d", n)
	}

	c.Expire("k")
	if got := c.Get("k"); got != 0 {
		t.Fatalf("get after expire = %d", got)
	}
}

func TestMonitorAlertThreshold(t *testing.T) {
	m := NewMonitor(NewMemoryCounter())

	// unauthorized_access alerts at 3 within the window, per client.
	for i := 0; i < 2; i++ {
		m.Record(EventUnauthorizedAccess, "10.0.0.1", "GET", "/api/journals/admin/all", "curl", "")
	}
	if r := m.Report(); len(r.RecentAlerts) != 0 {
		t.Fatalf("alert fired too early: %d", len(r.RecentAlerts))
	}
	m.Record(EventUnauthorizedAccess, "10.0.0.1", "GET", "/api/journals/admin/all", "curl", "")
	r := m.Report()
	if len(r.RecentAlerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(r.RecentAlerts))
	}
	if r.RecentAlerts[0].Severity != "high" {
		t.Fatalf("unexpected severity %q", r.RecentAlerts[0].Severity)
	}

	// The counter resets after alerting, so the next burst alerts again.
	for i := 0; i < 3; i++ {
		m.Record(EventUnauthorizedAccess, "10.0.0.1", "GET", "/api/journals/admin/all", "curl", "")
	}
	r = m.Report()
	if len(r.RecentAlerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(r.RecentAlerts))
	}
	if r.EventsByType[EventUnauthorizedAccess] != 6 {
		t.Fatalf("events by type = %d", r.EventsByType[EventUnauthorizedAccess])
	}

	// A different client does not inherit the first client's counter.
	m.Record(EventUnauthorizedAccess, "10.0.0.2", "GET", "/api/journals/admin/all", "curl", "")
	if r := m.Report(); len(r.RecentAlerts) != 2 {
		t.Fatalf("cross-client alert leak: %d", len(r.RecentAlerts))
	}
}

func TestMonitorUnknownEventType(t *testing.T) {
	m := NewMonitor(NewMemoryCounter())
	evt := m.Record("something_new", "10.0.0.9", "POST", "/x", "", "detail")
	if evt.Severity != "low" {
		t.Fatalf("unknown type severity = %q", evt.Severity)
	}
	if evt.ID == "" || evt.Type != "something_new" {
		t.Fatalf("malformed event: %+v", evt)
	}
	if r := m.Report(); r.TotalEvents != 1 {
		t.Fatalf("total events = %d", r.TotalEvents)
	}
}
