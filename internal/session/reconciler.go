package session

import (
	"math"
	"strconv"
	"strings"

	"evconduit/internal/models"
)

// CostMode identifies which cost field the user is actively editing. That field is
// authoritative; the other one is derived from it.
type CostMode string

// Cost modes.
const (
	CostModePerKWh CostMode = "per_kwh"
	CostModeTotal  CostMode = "total"
)

// DefaultCurrency is the final fallback when nothing else resolves.
const DefaultCurrency = "EUR"

// Reconciler keeps the per-kWh price and the session total consistent while the
// user edits either one. Totals round to 2 decimals, unit prices to 4 since a
// per-kWh price needs finer granularity.
type Reconciler struct {
	mode       CostMode
	costPerKWh *float64
	totalCost  *float64
}

// NewReconciler seeds state from stored session values. A session holding only a
// total cost starts in total mode; everything else starts in per-kWh mode.
func NewReconciler(costPerKWh, totalCost *float64) *Reconciler {
	r := &Reconciler{
		mode:       CostModePerKWh,
		costPerKWh: copyFloat(costPerKWh),
		totalCost:  copyFloat(totalCost),
	}
	if costPerKWh == nil && totalCost != nil {
		r.mode = CostModeTotal
	}
	return r
}

// Mode returns which field is currently authoritative.
func (r *Reconciler) Mode() CostMode {
	return r.mode
}

// CostPerKWh returns the current unit price, derived or authoritative.
func (r *Reconciler) CostPerKWh() *float64 {
	return copyFloat(r.costPerKWh)
}

// TotalCost returns the current session total, derived or authoritative.
func (r *Reconciler) TotalCost() *float64 {
	return copyFloat(r.totalCost)
}

// SetCostPerKWh records a user edit of the unit-price field and derives the total
// when both the input and the session energy are usable. Unparseable input leaves
// both fields at their prior values; missing or non-positive energy keeps the
// prior derived total rather than writing a zero.
func (r *Reconciler) SetCostPerKWh(raw string, energyAddedKWh *float64) {
	r.mode = CostModePerKWh

	value, ok := parseFinite(raw)
	if !ok {
		return
	}
	r.costPerKWh = &value

	if derived := DeriveTotalCost(value, energyAddedKWh); derived != nil {
		r.totalCost = derived
	}
}

// SetTotalCost is the symmetric edit of the total field.
func (r *Reconciler) SetTotalCost(raw string, energyAddedKWh *float64) {
	r.mode = CostModeTotal

	value, ok := parseFinite(raw)
	if !ok {
		return
	}
	r.totalCost = &value

	if derived := DeriveCostPerKWh(value, energyAddedKWh); derived != nil {
		r.costPerKWh = derived
	}
}

// SavePayload builds the update sent to the server. The field the user was not
// editing is nil, which marshals as JSON null and tells the server to recompute it
// from the authoritative one.
func (r *Reconciler) SavePayload(currency string, odometerKm *float64) models.UpdateSessionData {
	data := models.UpdateSessionData{
		Currency:       currency,
		UserOdometerKm: copyFloat(odometerKm),
	}

	switch r.mode {
	case CostModeTotal:
		data.TotalCost = copyFloat(r.totalCost)
	default:
		data.CostPerKWh = copyFloat(r.costPerKWh)
	}
	return data
}

// DeriveTotalCost computes the session total from a unit price, rounded to cents.
// Returns nil when the energy is unknown, non-positive or not finite.
func DeriveTotalCost(costPerKWh float64, energyAddedKWh *float64) *float64 {
	if !usableEnergy(energyAddedKWh) {
		return nil
	}
	v := Round2(costPerKWh * *energyAddedKWh)
	return &v
}

// DeriveCostPerKWh computes the unit price from a session total, rounded to four
// decimals. Returns nil when the energy is unknown, non-positive or not finite.
func DeriveCostPerKWh(totalCost float64, energyAddedKWh *float64) *float64 {
	if !usableEnergy(energyAddedKWh) {
		return nil
	}
	v := Round4(totalCost / *energyAddedKWh)
	return &v
}

// ResolveDisplayCurrency picks the currency to show for a session, first non-empty
// wins: the user's saved currency, the session's location-based default, the
// detected user currency, then EUR.
func ResolveDisplayCurrency(sessionCurrency, defaultCurrency, detected *string) string {
	for _, candidate := range []*string{sessionCurrency, defaultCurrency, detected} {
		if candidate != nil && strings.TrimSpace(*candidate) != "" {
			return *candidate
		}
	}
	return DefaultCurrency
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to four decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func parseFinite(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func usableEnergy(energy *float64) bool {
	return energy != nil && *energy > 0 && !math.IsNaN(*energy) && !math.IsInf(*energy, 0)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
