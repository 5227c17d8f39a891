package service

import (
	"context"

	"go.uber.org/zap"

	"evconduit/internal/currency"
	"evconduit/internal/format"
	"evconduit/internal/models"
	"evconduit/internal/session"
)

// SessionStore is the persistence surface the service needs.
type SessionStore interface {
	GetByUser(ctx context.Context, userID int64, limit int) ([]models.ChargingSession, error)
	GetByID(ctx context.Context, sessionID string, userID int64) (*models.ChargingSession, error)
	UpdateUserData(ctx context.Context, sessionID string, userID int64, data models.UpdateSessionData) (*models.ChargingSession, error)
	UserStats(ctx context.Context, userID int64) (*models.UserStats, error)
	GlobalStats(ctx context.Context) (*models.GlobalStats, error)
}

// UpdatePublisher pushes session changes to connected clients.
type UpdatePublisher interface {
	PublishSessionUpdate(userID int64, session *models.ChargingSession)
}

// CurrencyDetector resolves a client's currency from its IP.
type CurrencyDetector interface {
	Detect(ctx context.Context, clientIP string) currency.Code
}

// SessionView augments a stored session with presentation fields.
type SessionView struct {
	models.ChargingSession
	DisplayCurrency string `json:"display_currency"`
	DurationDisplay string `json:"duration_display"`
	EnergyDisplay   string `json:"energy_display"`
	CountryFlag     string `json:"country_flag"`
}

// UserStatsView pairs raw aggregates with their rendered form.
type UserStatsView struct {
	models.UserStats
	TotalEnergyDisplay string `json:"total_energy_display"`
	TotalTimeDisplay   string `json:"total_time_display"`
}

// GlobalStatsView pairs raw aggregates with their rendered form.
type GlobalStatsView struct {
	models.GlobalStats
	TotalEnergyDisplay string `json:"total_energy_display"`
	TotalTimeDisplay   string `json:"total_time_display"`
}

// InsightsService serves charging-session economics and statistics.
type InsightsService struct {
	store     SessionStore
	detector  CurrencyDetector
	publisher UpdatePublisher
	logger    *zap.Logger
}

// NewInsightsService builds service. The publisher may be nil.
func NewInsightsService(store SessionStore, detector CurrencyDetector, publisher UpdatePublisher, logger *zap.Logger) *InsightsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightsService{
		store:     store,
		detector:  detector,
		publisher: publisher,
		logger:    logger,
	}
}

// SessionsForUser returns the user's recent sessions with display fields resolved.
// The client IP feeds currency detection for sessions without a saved currency.
func (s *InsightsService) SessionsForUser(ctx context.Context, userID int64, limit int, clientIP string) ([]SessionView, error) {
	sessions, err := s.store.GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	detected := s.detectedCurrency(ctx, clientIP)
	views := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, buildSessionView(sessions[i], detected))
	}
	return views, nil
}

// SessionForUser returns one session with display fields resolved.
func (s *InsightsService) SessionForUser(ctx context.Context, sessionID string, userID int64, clientIP string) (*SessionView, error) {
	stored, err := s.store.GetByID(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	view := buildSessionView(*stored, s.detectedCurrency(ctx, clientIP))
	return &view, nil
}

// UpdateSessionUserData persists user-entered cost/currency/odometer fields and
// pushes the updated session to the owner's live connections. An empty currency
// resolves through the detection chain before the write.
func (s *InsightsService) UpdateSessionUserData(ctx context.Context, sessionID string, userID int64, data models.UpdateSessionData, clientIP string) (*models.ChargingSession, error) {
	if data.Currency == "" && s.detector != nil {
		data.Currency = string(s.detector.Detect(ctx, clientIP))
	}

	updated, err := s.store.UpdateUserData(ctx, sessionID, userID, data)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishSessionUpdate(userID, updated)
	}

	s.logger.Info("session user data updated",
		zap.String("session_id", sessionID),
		zap.Int64("user_id", userID),
		zap.String("currency", data.Currency),
	)
	return updated, nil
}

// UserStats returns the user's aggregates with rendered totals.
func (s *InsightsService) UserStats(ctx context.Context, userID int64) (*UserStatsView, error) {
	stats, err := s.store.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserStatsView{
		UserStats:          *stats,
		TotalEnergyDisplay: format.FormatKWh(stats.TotalKWhCharged),
		TotalTimeDisplay:   format.FormatMinutes(stats.TotalMinutesCharged),
	}, nil
}

// GlobalStats returns platform-wide aggregates with rendered totals.
func (s *InsightsService) GlobalStats(ctx context.Context) (*GlobalStatsView, error) {
	stats, err := s.store.GlobalStats(ctx)
	if err != nil {
		return nil, err
	}
	return &GlobalStatsView{
		GlobalStats:        *stats,
		TotalEnergyDisplay: format.FormatKWh(stats.TotalKWhCharged),
		TotalTimeDisplay:   format.FormatMinutes(stats.TotalMinutesCharged),
	}, nil
}

// DetectCurrency exposes the detection chain directly.
func (s *InsightsService) DetectCurrency(ctx context.Context, clientIP string) currency.Code {
	return s.detector.Detect(ctx, clientIP)
}

func (s *InsightsService) detectedCurrency(ctx context.Context, clientIP string) *string {
	if s.detector == nil {
		return nil
	}
	code := string(s.detector.Detect(ctx, clientIP))
	return &code
}

func buildSessionView(stored models.ChargingSession, detected *string) SessionView {
	view := SessionView{
		ChargingSession: stored,
		DisplayCurrency: session.ResolveDisplayCurrency(stored.Currency, stored.DefaultCurrency, detected),
		DurationDisplay: format.FormatMinutes(stored.DurationMinutes),
		EnergyDisplay:   format.FormatKWh(stored.EnergyAddedKWh),
	}
	if stored.CountryCode != nil {
		view.CountryFlag = format.CountryFlag(*stored.CountryCode)
	}
	return view
}
