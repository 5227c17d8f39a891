package repository

import (
	"context"
	"database/sql"
	"errors"

	"evconduit/internal/models"
	"evconduit/internal/session"
)

// ErrSessionNotFound indicates a missing or foreign session.
var ErrSessionNotFound = errors.New("session not found")

const sessionColumns = `
	session_id, user_id, vehicle_id, start_time, end_time,
	energy_added_kwh, duration_minutes, max_charge_rate_kw, average_charge_rate_kw,
	cost_per_kwh, total_cost, currency, default_currency,
	user_odometer_km, country_code, created_at, updated_at
`

// SessionRepository handles persistence of charging sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// GetByUser returns the user's most recent sessions.
func (r *SessionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]models.ChargingSession, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + sessionColumns + `
		FROM charging_sessions
		WHERE user_id = $1
		ORDER BY end_time DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.ChargingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetByID returns one session owned by the given user.
func (r *SessionRepository) GetByID(ctx context.Context, sessionID string, userID int64) (*models.ChargingSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM charging_sessions
		WHERE session_id = $1 AND user_id = $2
	`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, sessionID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateUserData writes the user-entered fields of a session. Whichever cost field
// arrived as nil is recomputed here from the other one and the session energy
// (2-decimal totals, 4-decimal unit prices); when the energy is unknown or zero the
// missing field is simply left alone. Nil fields never overwrite stored values.
func (r *SessionRepository) UpdateUserData(ctx context.Context, sessionID string, userID int64, data models.UpdateSessionData) (*models.ChargingSession, error) {
	existing, err := r.GetByID(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	costPerKWh := data.CostPerKWh
	totalCost := data.TotalCost
	if costPerKWh != nil && totalCost == nil {
		totalCost = session.DeriveTotalCost(*costPerKWh, existing.EnergyAddedKWh)
	} else if totalCost != nil && costPerKWh == nil {
		costPerKWh = session.DeriveCostPerKWh(*totalCost, existing.EnergyAddedKWh)
	}

	query := `
		UPDATE charging_sessions
		SET cost_per_kwh = COALESCE($3, cost_per_kwh),
		    total_cost = COALESCE($4, total_cost),
		    currency = COALESCE(NULLIF($5, ''), currency),
		    user_odometer_km = COALESCE($6, user_odometer_km),
		    updated_at = NOW()
		WHERE session_id = $1 AND user_id = $2
		RETURNING ` + sessionColumns + `
	`
	s, err := scanSession(r.db.QueryRowContext(ctx, query,
		sessionID,
		userID,
		costPerKWh,
		totalCost,
		data.Currency,
		data.UserOdometerKm,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UserStats aggregates the user's charging history.
func (r *SessionRepository) UserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	const query = `
		SELECT COUNT(*),
		       SUM(energy_added_kwh),
		       SUM(duration_minutes),
		       AVG(average_charge_rate_kw),
		       MAX(max_charge_rate_kw)
		FROM charging_sessions
		WHERE user_id = $1
	`
	var stats models.UserStats
	var totalKWh, totalMinutes, avgRate, maxRate sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalSessions,
		&totalKWh,
		&totalMinutes,
		&avgRate,
		&maxRate,
	)
	if err != nil {
		return nil, err
	}
	stats.TotalKWhCharged = nullableFloat(totalKWh)
	stats.TotalMinutesCharged = nullableFloat(totalMinutes)
	stats.AverageChargeRateKWhPerHour = nullableFloat(avgRate)
	stats.HighestMaxChargeRateKW = nullableFloat(maxRate)
	return &stats, nil
}

// GlobalStats aggregates across all users.
func (r *SessionRepository) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	const query = `
		SELECT COUNT(DISTINCT user_id),
		       COUNT(DISTINCT vehicle_id),
		       COUNT(*),
		       SUM(energy_added_kwh),
		       SUM(duration_minutes),
		       AVG(average_charge_rate_kw),
		       MAX(max_charge_rate_kw)
		FROM charging_sessions
	`
	var stats models.GlobalStats
	var totalKWh, totalMinutes, avgRate, maxRate sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.UniqueUsers,
		&stats.UniqueVehicles,
		&stats.TotalSessions,
		&totalKWh,
		&totalMinutes,
		&avgRate,
		&maxRate,
	)
	if err != nil {
		return nil, err
	}
	stats.TotalKWhCharged = nullableFloat(totalKWh)
	stats.TotalMinutesCharged = nullableFloat(totalMinutes)
	stats.AverageChargeRateKWhPerHour = nullableFloat(avgRate)
	stats.HighestMaxChargeRateKW = nullableFloat(maxRate)
	return &stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.ChargingSession, error) {
	var s models.ChargingSession
	err := row.Scan(
		&s.SessionID,
		&s.UserID,
		&s.VehicleID,
		&s.StartTime,
		&s.EndTime,
		&s.EnergyAddedKWh,
		&s.DurationMinutes,
		&s.MaxChargeRateKW,
		&s.AverageChargeRateKW,
		&s.CostPerKWh,
		&s.TotalCost,
		&s.Currency,
		&s.DefaultCurrency,
		&s.UserOdometerKm,
		&s.CountryCode,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	value := v.Float64
	return &value
}
