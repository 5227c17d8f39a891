package models

import "time"

// ChargingSession is a completed charging session as ingested from the vehicle
// aggregator. Energy and rate fields are fixed once the session closes; cost,
// currency and odometer are user-entered afterwards.
type ChargingSession struct {
	SessionID           string    `db:"session_id" json:"session_id"`
	UserID              int64     `db:"user_id" json:"user_id"`
	VehicleID           string    `db:"vehicle_id" json:"vehicle_id"`
	StartTime           time.Time `db:"start_time" json:"start_time"`
	EndTime             time.Time `db:"end_time" json:"end_time"`
	EnergyAddedKWh      *float64  `db:"energy_added_kwh" json:"energy_added_kwh"`
	DurationMinutes     *float64  `db:"duration_minutes" json:"duration_minutes"`
	MaxChargeRateKW     *float64  `db:"max_charge_rate_kw" json:"max_charge_rate_kw"`
	AverageChargeRateKW *float64  `db:"average_charge_rate_kw" json:"average_charge_rate_kw"`
	CostPerKWh          *float64  `db:"cost_per_kwh" json:"cost_per_kwh"`
	TotalCost           *float64  `db:"total_cost" json:"total_cost"`
	Currency            *string   `db:"currency" json:"currency"`
	DefaultCurrency     *string   `db:"default_currency" json:"default_currency"`
	UserOdometerKm      *float64  `db:"user_odometer_km" json:"user_odometer_km"`
	CountryCode         *string   `db:"country_code" json:"country_code"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateSessionData carries user-entered session fields to persistence. A nil cost
// field marshals as JSON null, which tells the server to recompute that field from
// the other one; both keys are always present on the wire.
type UpdateSessionData struct {
	CostPerKWh     *float64 `json:"cost_per_kwh"`
	TotalCost      *float64 `json:"total_cost"`
	Currency       string   `json:"currency"`
	UserOdometerKm *float64 `json:"user_odometer_km,omitempty"`
}

// UserStats aggregates one user's charging history.
type UserStats struct {
	TotalSessions               int64    `db:"total_sessions" json:"total_sessions"`
	TotalKWhCharged             *float64 `db:"total_kwh_charged" json:"total_kwh_charged"`
	TotalMinutesCharged         *float64 `db:"total_minutes_charged" json:"total_minutes_charged"`
	AverageChargeRateKWhPerHour *float64 `db:"average_charge_rate_kwh_per_hour" json:"average_charge_rate_kwh_per_hour"`
	HighestMaxChargeRateKW      *float64 `db:"highest_max_charge_rate_kw" json:"highest_max_charge_rate_kw"`
}

// GlobalStats aggregates across all users.
type GlobalStats struct {
	UniqueUsers                 int64    `db:"unique_users" json:"unique_users"`
	UniqueVehicles              int64    `db:"unique_vehicles" json:"unique_vehicles"`
	TotalSessions               int64    `db:"total_sessions" json:"total_sessions"`
	TotalKWhCharged             *float64 `db:"total_kwh_charged" json:"total_kwh_charged"`
	TotalMinutesCharged         *float64 `db:"total_minutes_charged" json:"total_minutes_charged"`
	AverageChargeRateKWhPerHour *float64 `db:"average_charge_rate_kwh_per_hour" json:"average_charge_rate_kwh_per_hour"`
	HighestMaxChargeRateKW      *float64 `db:"highest_max_charge_rate_kw" json:"highest_max_charge_rate_kw"`
}

// APIKey is a stored integration key. The plaintext key is shown once at creation;
// only the bcrypt hash and a lookup prefix are persisted.
type APIKey struct {
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	Name       string     `db:"name" json:"name"`
	Prefix     string     `db:"prefix" json:"prefix"`
	KeyHash    string     `db:"key_hash" json:"-"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at"`
}
