package currency

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// countryToCurrency maps ISO-3166 alpha-2 country codes onto the supported currency
// set. Non-Eurozone European countries and several Asian ones deliberately route to
// EUR as an approximation; widening the table is a data change.
var countryToCurrency = map[string]Code{
	// Eurozone
	"AT": EUR, "BE": EUR, "CY": EUR, "EE": EUR, "FI": EUR,
	"FR": EUR, "DE": EUR, "GR": EUR, "IE": EUR, "IT": EUR,
	"LV": EUR, "LT": EUR, "LU": EUR, "MT": EUR, "NL": EUR,
	"PT": EUR, "SK": EUR, "SI": EUR, "ES": EUR, "HR": EUR,
	// Non-Euro Europe
	"BG": EUR, "CZ": EUR, "DK": EUR, "HU": EUR, "PL": EUR,
	"RO": EUR, "SE": EUR, "NO": EUR, "CH": EUR, "IS": EUR,
	// UK
	"GB": GBP,
	// Australia and New Zealand
	"AU": AUD, "NZ": AUD,
	// Asia
	"CN": EUR, "JP": EUR, "KR": EUR, "SG": EUR, "HK": EUR,
	"IN": EUR, "TH": EUR, "VN": EUR, "MY": EUR, "PH": EUR,
}

// ResolveCountry maps a country code to its currency, defaulting to EUR for any
// code not in the table.
func ResolveCountry(countryCode string) Code {
	if code, ok := countryToCurrency[strings.ToUpper(strings.TrimSpace(countryCode))]; ok {
		return code
	}
	return EUR
}

// DefaultCacheTTL is how long a detected currency stays valid.
const DefaultCacheTTL = 7 * 24 * time.Hour

// CountryLookup resolves a client's country from its IP address.
type CountryLookup interface {
	CountryCode(ctx context.Context, ip string) (string, error)
}

// Detector resolves a client's currency via IP geolocation, caching results per IP.
// Detect never returns an error: cache and lookup failures degrade to EUR.
type Detector struct {
	lookup CountryLookup
	store  Store
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewDetector builds detector. The store may be nil, which disables caching.
func NewDetector(lookup CountryLookup, store Store, ttl time.Duration, logger *zap.Logger) *Detector {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		lookup: lookup,
		store:  store,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Detect returns the currency for the given client IP, consulting the cache first.
// Concurrent detects for the same IP may race on the cache write; last writer wins,
// which is fine because the value is idempotent within the TTL window.
func (d *Detector) Detect(ctx context.Context, clientIP string) Code {
	key := cacheKey(clientIP)

	if d.store != nil {
		entry, err := d.store.Get(ctx, key)
		switch {
		case err != nil:
			d.logger.Debug("currency cache read failed", zap.Error(err))
		case entry != nil && d.now().Sub(time.UnixMilli(entry.TimestampMillis)) <= d.ttl:
			return Code(entry.CurrencyCode)
		}
	}

	country, err := d.lookup.CountryCode(ctx, clientIP)
	if err != nil {
		d.logger.Info("could not detect currency from IP, using default EUR", zap.Error(err))
		return EUR
	}
	code := ResolveCountry(country)

	if d.store != nil {
		entry := &CacheEntry{
			CurrencyCode:    string(code),
			TimestampMillis: d.now().UnixMilli(),
		}
		if err := d.store.Set(ctx, key, entry, d.ttl); err != nil {
			d.logger.Debug("currency cache write failed", zap.Error(err))
		}
	}

	return code
}

func cacheKey(clientIP string) string {
	ip := strings.TrimSpace(clientIP)
	if ip == "" {
		ip = "unknown"
	}
	return "currency:detected:" + ip
}
