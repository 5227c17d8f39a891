package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"evconduit/internal/currency"
	"evconduit/internal/models"
	"evconduit/internal/session"
)

type fakeStore struct {
	sessions map[string]*models.ChargingSession
	updated  *models.UpdateSessionData
}

func (f *fakeStore) GetByUser(_ context.Context, userID int64, _ int) ([]models.ChargingSession, error) {
	var out []models.ChargingSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, sessionID string, userID int64) (*models.ChargingSession, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, errNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) UpdateUserData(_ context.Context, sessionID string, userID int64, data models.UpdateSessionData) (*models.ChargingSession, error) {
	stored, ok := f.sessions[sessionID]
	if !ok || stored.UserID != userID {
		return nil, errNotFound
	}
	f.updated = &data

	copied := *stored
	costPerKWh := data.CostPerKWh
	totalCost := data.TotalCost
	if costPerKWh != nil && totalCost == nil {
		totalCost = session.DeriveTotalCost(*costPerKWh, stored.EnergyAddedKWh)
	} else if totalCost != nil && costPerKWh == nil {
		costPerKWh = session.DeriveCostPerKWh(*totalCost, stored.EnergyAddedKWh)
	}
	if costPerKWh != nil {
		copied.CostPerKWh = costPerKWh
	}
	if totalCost != nil {
		copied.TotalCost = totalCost
	}
	if data.Currency != "" {
		copied.Currency = &data.Currency
	}
	return &copied, nil
}

func (f *fakeStore) UserStats(context.Context, int64) (*models.UserStats, error) {
	kwh := 1250.0
	minutes := 6100.0
	return &models.UserStats{
		TotalSessions:       31,
		TotalKWhCharged:     &kwh,
		TotalMinutesCharged: &minutes,
	}, nil
}

func (f *fakeStore) GlobalStats(context.Context) (*models.GlobalStats, error) {
	kwh := 2_500_000.0
	return &models.GlobalStats{TotalSessions: 9000, TotalKWhCharged: &kwh}, nil
}

type staticDetector struct {
	code currency.Code
}

func (d staticDetector) Detect(context.Context, string) currency.Code {
	return d.code
}

type capturingPublisher struct {
	userID  int64
	session *models.ChargingSession
}

func (p *capturingPublisher) PublishSessionUpdate(userID int64, s *models.ChargingSession) {
	p.userID = userID
	p.session = s
}

var errNotFound = errors.New("not found")

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

func baseSession() *models.ChargingSession {
	return &models.ChargingSession{
		SessionID:       "a7c9",
		UserID:          7,
		VehicleID:       "veh-1",
		StartTime:       time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		EndTime:         time.Date(2026, 3, 1, 19, 5, 0, 0, time.UTC),
		EnergyAddedKWh:  floatPtr(40),
		DurationMinutes: floatPtr(65),
		CountryCode:     strPtr("SE"),
		DefaultCurrency: strPtr("SEK"),
	}
}

func TestSessionsForUserBuildsViews(t *testing.T) {
	store := &fakeStore{sessions: map[string]*models.ChargingSession{"a7c9": baseSession()}}
	svc := NewInsightsService(store, staticDetector{code: currency.GBP}, nil, nil)

	views, err := svc.SessionsForUser(context.Background(), 7, 50, "203.0.113.9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}

	v := views[0]
	if v.DisplayCurrency != "SEK" {
		t.Fatalf("location default must beat detection, got %q", v.DisplayCurrency)
	}
	if v.DurationDisplay != "1 hours 5 minutes" {
		t.Fatalf("duration display = %q", v.DurationDisplay)
	}
	if v.EnergyDisplay != "40.00 kWh" {
		t.Fatalf("energy display = %q", v.EnergyDisplay)
	}
	if v.CountryFlag != "\U0001F1F8\U0001F1EA" {
		t.Fatalf("flag = %q", v.CountryFlag)
	}
}

func TestSessionViewFallsBackToDetectedCurrency(t *testing.T) {
	s := baseSession()
	s.DefaultCurrency = nil
	store := &fakeStore{sessions: map[string]*models.ChargingSession{"a7c9": s}}
	svc := NewInsightsService(store, staticDetector{code: currency.GBP}, nil, nil)

	view, err := svc.SessionForUser(context.Background(), "a7c9", 7, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.DisplayCurrency != "GBP" {
		t.Fatalf("expected detected GBP, got %q", view.DisplayCurrency)
	}
}

func TestUpdateSessionUserDataPublishes(t *testing.T) {
	store := &fakeStore{sessions: map[string]*models.ChargingSession{"a7c9": baseSession()}}
	publisher := &capturingPublisher{}
	svc := NewInsightsService(store, staticDetector{code: currency.EUR}, publisher, nil)

	total := 100.0
	updated, err := svc.UpdateSessionUserData(context.Background(), "a7c9", 7, models.UpdateSessionData{
		TotalCost: &total,
		Currency:  "SEK",
	}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.CostPerKWh == nil || *updated.CostPerKWh != 2.5 {
		t.Fatalf("server must recompute per-kWh, got %v", updated.CostPerKWh)
	}
	if publisher.userID != 7 || publisher.session == nil {
		t.Fatalf("update must be published to the owner")
	}
	if store.updated.CostPerKWh != nil {
		t.Fatalf("payload per-kWh must arrive nil for recomputation")
	}
}

func TestUpdateFillsCurrencyFromDetection(t *testing.T) {
	store := &fakeStore{sessions: map[string]*models.ChargingSession{"a7c9": baseSession()}}
	svc := NewInsightsService(store, staticDetector{code: currency.AUD}, nil, nil)

	per := 0.55
	updated, err := svc.UpdateSessionUserData(context.Background(), "a7c9", 7, models.UpdateSessionData{
		CostPerKWh: &per,
	}, "198.51.100.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Currency == nil || *updated.Currency != "AUD" {
		t.Fatalf("empty currency must resolve via detection, got %v", updated.Currency)
	}
}

func TestStatsViewsRenderTotals(t *testing.T) {
	store := &fakeStore{}
	svc := NewInsightsService(store, staticDetector{code: currency.EUR}, nil, nil)

	userStats, err := svc.UserStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userStats.TotalEnergyDisplay != "1.25 MWh" {
		t.Fatalf("energy display = %q", userStats.TotalEnergyDisplay)
	}
	if userStats.TotalTimeDisplay != "4 days 5 hours 40 minutes" {
		t.Fatalf("time display = %q", userStats.TotalTimeDisplay)
	}

	globalStats, err := svc.GlobalStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if globalStats.TotalEnergyDisplay != "2.500 TWh" {
		t.Fatalf("global energy display = %q", globalStats.TotalEnergyDisplay)
	}
	if globalStats.TotalTimeDisplay != "N/A" {
		t.Fatalf("missing minutes must render N/A, got %q", globalStats.TotalTimeDisplay)
	}
}
