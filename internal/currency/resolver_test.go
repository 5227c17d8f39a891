package currency

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLookup struct {
	country string
	err     error
	calls   int
}

func (f *fakeLookup) CountryCode(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.country, nil
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*CacheEntry, error) {
	return nil, errors.New("store unavailable")
}

func (failingStore) Set(context.Context, string, *CacheEntry, time.Duration) error {
	return errors.New("store unavailable")
}

func TestResolveCountry(t *testing.T) {
	cases := []struct {
		country string
		want    Code
	}{
		{"GB", GBP},
		{"gb", GBP},
		{"AU", AUD},
		{"NZ", AUD},
		{"DE", EUR},
		{"SE", EUR}, // non-Eurozone deliberately routed to EUR
		{"JP", EUR},
		{"US", EUR}, // absent from the table, default applies
		{"", EUR},
	}

	for _, tc := range cases {
		if got := ResolveCountry(tc.country); got != tc.want {
			t.Fatalf("ResolveCountry(%q) = %s, want %s", tc.country, got, tc.want)
		}
	}
}

func TestDetectLooksUpAndCaches(t *testing.T) {
	lookup := &fakeLookup{country: "GB"}
	store := NewMemoryStore()
	det := NewDetector(lookup, store, DefaultCacheTTL, nil)

	if got := det.Detect(context.Background(), "203.0.113.9"); got != GBP {
		t.Fatalf("first detect = %s, want GBP", got)
	}
	if got := det.Detect(context.Background(), "203.0.113.9"); got != GBP {
		t.Fatalf("second detect = %s, want GBP", got)
	}
	if lookup.calls != 1 {
		t.Fatalf("expected a single lookup thanks to the cache, got %d", lookup.calls)
	}
}

func TestDetectCacheExpiry(t *testing.T) {
	lookup := &fakeLookup{country: "AU"}
	store := NewMemoryStore()
	det := NewDetector(lookup, store, DefaultCacheTTL, nil)

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	det.now = func() time.Time { return base }

	det.Detect(context.Background(), "198.51.100.4")

	// Inside the window the cache answers.
	det.now = func() time.Time { return base.Add(6 * 24 * time.Hour) }
	det.Detect(context.Background(), "198.51.100.4")
	if lookup.calls != 1 {
		t.Fatalf("cache should still be valid, got %d lookups", lookup.calls)
	}

	// Past the window the entry is stale and the lookup runs again.
	det.now = func() time.Time { return base.Add(8 * 24 * time.Hour) }
	det.Detect(context.Background(), "198.51.100.4")
	if lookup.calls != 2 {
		t.Fatalf("stale cache should trigger a fresh lookup, got %d lookups", lookup.calls)
	}
}

func TestDetectLookupFailureFallsBackToEUR(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("network down")}
	det := NewDetector(lookup, NewMemoryStore(), DefaultCacheTTL, nil)

	if got := det.Detect(context.Background(), "203.0.113.9"); got != EUR {
		t.Fatalf("lookup failure must fall back to EUR, got %s", got)
	}
}

func TestDetectStoreFailureIsTreatedAsMiss(t *testing.T) {
	lookup := &fakeLookup{country: "GB"}
	det := NewDetector(lookup, failingStore{}, DefaultCacheTTL, nil)

	if got := det.Detect(context.Background(), "203.0.113.9"); got != GBP {
		t.Fatalf("broken store should not prevent detection, got %s", got)
	}
	if lookup.calls != 1 {
		t.Fatalf("expected lookup despite store failure, got %d", lookup.calls)
	}
}

func TestDetectWithoutStore(t *testing.T) {
	lookup := &fakeLookup{country: "NZ"}
	det := NewDetector(lookup, nil, 0, nil)

	if got := det.Detect(context.Background(), ""); got != AUD {
		t.Fatalf("got %s, want AUD", got)
	}
}
