package session

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"testing"
)

func floatPtr(v float64) *float64 {
	return &v
}

func strPtr(s string) *string {
	return &s
}

func TestSetCostPerKWhDerivesTotal(t *testing.T) {
	r := NewReconciler(nil, nil)
	r.SetCostPerKWh("2.50", floatPtr(40))

	if r.Mode() != CostModePerKWh {
		t.Fatalf("expected per_kwh mode, got %s", r.Mode())
	}
	total := r.TotalCost()
	if total == nil || *total != 100 {
		t.Fatalf("expected total 100, got %v", total)
	}
}

func TestSetTotalCostDerivesPerKWh(t *testing.T) {
	r := NewReconciler(nil, nil)
	r.SetTotalCost("100", floatPtr(40))

	if r.Mode() != CostModeTotal {
		t.Fatalf("expected total mode, got %s", r.Mode())
	}
	perKWh := r.CostPerKWh()
	if perKWh == nil || *perKWh != 2.5 {
		t.Fatalf("expected per-kWh 2.5, got %v", perKWh)
	}
}

func TestPerKWhRoundTrip(t *testing.T) {
	energies := []float64{0.5, 7, 40, 63.2, 81.7}
	prices := []float64{0.12, 0.301, 2.5, 4.9999}

	for _, e := range energies {
		for _, p := range prices {
			r := NewReconciler(nil, nil)
			r.SetCostPerKWh(formatFloat(p), floatPtr(e))
			total := r.TotalCost()
			if total == nil {
				t.Fatalf("no total for price %v energy %v", p, e)
			}
			if math.Abs(*total/e-p) > 1e-2 {
				t.Fatalf("round trip drift: price %v energy %v total %v", p, e, *total)
			}
		}
	}
}

func TestSetCostPerKWhIdempotent(t *testing.T) {
	r := NewReconciler(nil, nil)
	r.SetCostPerKWh("1.234", floatPtr(33.3))
	first := r.TotalCost()
	r.SetCostPerKWh("1.234", floatPtr(33.3))
	second := r.TotalCost()

	if first == nil || second == nil || *first != *second {
		t.Fatalf("idempotence violated: %v vs %v", first, second)
	}
}

func TestSetCostPerKWhNilEnergyKeepsPriorTotal(t *testing.T) {
	r := NewReconciler(nil, floatPtr(55))
	r.SetCostPerKWh("2.50", nil)

	total := r.TotalCost()
	if total == nil || *total != 55 {
		t.Fatalf("nil energy must keep prior total, got %v", total)
	}

	fresh := NewReconciler(nil, nil)
	fresh.SetCostPerKWh("2.50", nil)
	if fresh.TotalCost() != nil {
		t.Fatalf("nil energy with no prior total must stay nil")
	}
}

func TestZeroEnergySkipsDerivation(t *testing.T) {
	r := NewReconciler(nil, nil)
	r.SetTotalCost("100", floatPtr(0))

	if r.CostPerKWh() != nil {
		t.Fatalf("zero energy must not derive a unit price")
	}
	total := r.TotalCost()
	if total == nil || *total != 100 {
		t.Fatalf("authoritative total must still be recorded, got %v", total)
	}
}

func TestUnparseableInputLeavesState(t *testing.T) {
	r := NewReconciler(floatPtr(2.5), floatPtr(100))
	r.SetCostPerKWh("not a number", floatPtr(40))

	perKWh := r.CostPerKWh()
	total := r.TotalCost()
	if perKWh == nil || *perKWh != 2.5 {
		t.Fatalf("unparseable input must not clobber the unit price, got %v", perKWh)
	}
	if total == nil || *total != 100 {
		t.Fatalf("unparseable input must not clobber the total, got %v", total)
	}
	if r.Mode() != CostModePerKWh {
		t.Fatalf("mode still tracks the edited field")
	}
}

func TestFourDecimalPrecisionForUnitPrice(t *testing.T) {
	r := NewReconciler(nil, nil)
	r.SetTotalCost("10", floatPtr(3))

	perKWh := r.CostPerKWh()
	if perKWh == nil || *perKWh != 3.3333 {
		t.Fatalf("expected 3.3333, got %v", perKWh)
	}
}

func TestSavePayloadNullsInactiveField(t *testing.T) {
	r := NewReconciler(nil, nil)
	r.SetTotalCost("100", floatPtr(40))

	payload := r.SavePayload("SEK", nil)
	if payload.CostPerKWh != nil {
		t.Fatalf("per-kWh must be nil in total mode")
	}
	if payload.TotalCost == nil || *payload.TotalCost != 100 {
		t.Fatalf("total must carry the authoritative value, got %v", payload.TotalCost)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, `"cost_per_kwh":null`) {
		t.Fatalf("wire format must carry a literal null for the inactive field: %s", body)
	}
	if !strings.Contains(body, `"total_cost":100`) {
		t.Fatalf("wire format must carry the total: %s", body)
	}
	if strings.Contains(body, "user_odometer_km") {
		t.Fatalf("odometer should be omitted when unset: %s", body)
	}
}

func TestSavePayloadPerKWhMode(t *testing.T) {
	r := NewReconciler(nil, nil)
	r.SetCostPerKWh("2.5", floatPtr(40))

	payload := r.SavePayload("EUR", floatPtr(42000))
	if payload.TotalCost != nil {
		t.Fatalf("total must be nil in per-kWh mode")
	}
	if payload.CostPerKWh == nil || *payload.CostPerKWh != 2.5 {
		t.Fatalf("per-kWh must carry the authoritative value, got %v", payload.CostPerKWh)
	}
	if payload.UserOdometerKm == nil || *payload.UserOdometerKm != 42000 {
		t.Fatalf("odometer lost: %v", payload.UserOdometerKm)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"total_cost":null`) {
		t.Fatalf("wire format must null the inactive field: %s", raw)
	}
}

func TestSeedModeFromStoredValues(t *testing.T) {
	if NewReconciler(floatPtr(1), nil).Mode() != CostModePerKWh {
		t.Fatalf("per-kWh value seeds per_kwh mode")
	}
	if NewReconciler(nil, floatPtr(9)).Mode() != CostModeTotal {
		t.Fatalf("total-only session seeds total mode")
	}
	if NewReconciler(floatPtr(1), floatPtr(9)).Mode() != CostModePerKWh {
		t.Fatalf("both values present defaults to per_kwh mode")
	}
}

func TestResolveDisplayCurrency(t *testing.T) {
	detected := strPtr("GBP")

	if got := ResolveDisplayCurrency(strPtr("NOK"), strPtr("SEK"), detected); got != "NOK" {
		t.Fatalf("saved currency wins, got %q", got)
	}
	if got := ResolveDisplayCurrency(nil, strPtr("SEK"), detected); got != "SEK" {
		t.Fatalf("location default is second, got %q", got)
	}
	if got := ResolveDisplayCurrency(nil, nil, detected); got != "GBP" {
		t.Fatalf("detected currency is third, got %q", got)
	}
	if got := ResolveDisplayCurrency(nil, nil, nil); got != "EUR" {
		t.Fatalf("EUR is the final fallback, got %q", got)
	}
	if got := ResolveDisplayCurrency(strPtr(""), strPtr("SEK"), nil); got != "SEK" {
		t.Fatalf("empty strings are skipped, got %q", got)
	}
}

func TestEndToEndTotalEntry(t *testing.T) {
	energy := floatPtr(40.0)
	r := NewReconciler(nil, nil)
	r.SetTotalCost("100", energy)

	perKWh := r.CostPerKWh()
	if perKWh == nil || math.Abs(*perKWh-2.5) > 1e-9 {
		t.Fatalf("expected derived per-kWh 2.5, got %v", perKWh)
	}

	resolved := ResolveDisplayCurrency(nil, strPtr("SEK"), nil)
	payload := r.SavePayload(resolved, nil)

	if payload.CostPerKWh != nil {
		t.Fatalf("per-kWh must be nulled for server recomputation")
	}
	if payload.TotalCost == nil || *payload.TotalCost != 100 {
		t.Fatalf("total must be 100, got %v", payload.TotalCost)
	}
	if payload.Currency != "SEK" {
		t.Fatalf("currency must resolve to SEK, got %q", payload.Currency)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
