package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("a = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](4, time.Hour).WithClock(func() time.Time { return now })
	c.Set("k", "v")
	c.Set("other", "v")

	now = now.Add(30 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired too early")
	}

	now = now.Add(31 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
}

func TestLRUDropsExpiredBeforeEvicting(t *testing.T) {
	now := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](2, time.Hour).WithClock(func() time.Time { return now })

	c.Set("old", "v")
	now = now.Add(30 * time.Minute)
	c.Set("fresh", "v")
	now = now.Add(10 * time.Minute)
	c.Get("old") // most recently used, but written first

	now = now.Add(21 * time.Minute)
	c.Set("new", "v")

	if _, ok := c.Get("fresh"); !ok {
		t.Error("live entry evicted while an expired one was held")
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("new entry missing")
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestSessionJSON(t *testing.T) {
	s := NewSession(4, 0)

	type filter struct {
		Month string `json:"month"`
	}
	if err := s.StoreJSON(KeyFilters, filter{Month: "2025-11"}); err != nil {
		t.Fatal(err)
	}
	var got filter
	if !s.LoadJSON(KeyFilters, &got) || got.Month != "2025-11" {
		t.Fatalf("LoadJSON = %+v", got)
	}

	s.Set(KeyFilters, "{not json")
	if s.LoadJSON(KeyFilters, &got) {
		t.Error("corrupt entry should not load")
	}
	if _, ok := s.Get(KeyFilters); ok {
		t.Error("corrupt entry should be dropped")
	}

	if s.LoadJSON(KeyChatTranscript, &got) {
		t.Error("missing key should not load")
	}
}
