package redirect

import (
	"errors"
	"testing"
	"time"

	"upiqr/internal/engine/analytics"
	"upiqr/internal/engine/links"
)

func TestLinkCache(t *testing.T) {
	now := time.Unix(1000, 0)
	cache := NewLinkCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set(&links.PaymentLink{ID: "l1", ShortCode: "abc", Status: links.StatusActive, Intent: links.PaymentIntent{Amount: 5}})

	got, ok := cache.Get("abc")
	if !ok || got.ID != "l1" || got.Link().Intent.Amount != 5 {
		t.Fatalf("Get(abc) = %+v, %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("abc"); ok {
		t.Error("entry should have expired")
	}

	cache.Set(&links.PaymentLink{ID: "l1", ShortCode: "abc"})
	cache.Invalidate("abc")
	if _, ok := cache.Get("abc"); ok {
		t.Error("entry should have been invalidated")
	}
}

type fakeRecorder struct {
	scans []*analytics.Scan
	err   error
}

func (f *fakeRecorder) RecordScan(s *analytics.Scan) error {
	f.scans = append(f.scans, s)
	return f.err
}

type fakeCounter struct {
	ids []string
}

func (f *fakeCounter) IncrementScanCount(id string) error {
	f.ids = append(f.ids, id)
	return nil
}

func TestScanLogger(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	counter := &fakeCounter{}

	NewScanLogger(rec, counter).LogScan("l1", "abc", RequestContext{
		IPAddress: "10.0.0.1",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) Mobile/15E148 Safari/604.1",
		Referrer:  "https://wa.me/chat?x=1",
	})

	if len(rec.scans) != 1 {
		t.Fatalf("Expected 1 scan, got %d", len(rec.scans))
	}
	s := rec.scans[0]
	if s.OS != "iOS" || s.DeviceType != "mobile" || s.ReferrerDomain != "wa.me" || s.ShortCode != "abc" {
		t.Errorf("unexpected scan: %+v", s)
	}
	if len(counter.ids) != 1 || counter.ids[0] != "l1" {
		t.Errorf("counter not incremented after a failed insert: %v", counter.ids)
	}
}

type fakeNotifier struct {
	events []string
	data   []interface{}
}

func (f *fakeNotifier) Dispatch(eventType string, data interface{}) {
	f.events = append(f.events, eventType)
	f.data = append(f.data, data)
}

func TestScanLogger_Notifies(t *testing.T) {
	rec := &fakeRecorder{}
	n := &fakeNotifier{}
	l := NewScanLogger(rec, &fakeCounter{})
	l.Notifier = n

	l.LogScan("l1", "abc", RequestContext{IPAddress: "10.0.0.1"})
	if len(n.events) != 1 || n.events[0] != "link.scanned" {
		t.Fatalf("unexpected events %v", n.events)
	}
	if s, ok := n.data[0].(*analytics.Scan); !ok || s.LinkID != "l1" {
		t.Errorf("unexpected payload %+v", n.data[0])
	}

	rec.err = errors.New("disk full")
	l.LogScan("l1", "abc", RequestContext{})
	if len(n.events) != 1 {
		t.Error("failed scans should not be published")
	}
}
