package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"evconduit/internal/currency"
	"evconduit/internal/service"
)

// NewCurrenciesHandler returns GET /currencies handler listing the static table.
func NewCurrenciesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"currencies": currency.SupportedCurrencies(),
		})
	}
}

// NewCurrencyDetectHandler returns GET /currencies/detect handler. Detection never
// fails; the worst case is the EUR fallback.
func NewCurrencyDetectHandler(svc *service.InsightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := svc.DetectCurrency(r.Context(), clientIP(r))
		writeJSON(w, http.StatusOK, map[string]string{"currency": string(code)})
	}
}

// NewCurrencyConvertHandler returns GET /currencies/convert handler. It converts an
// EUR-denominated amount (plan prices, invoice totals) into the requested currency,
// or into the caller's detected one when the target is omitted. The minor flag marks
// cent-denominated amounts so they are never rendered 100x off.
func NewCurrencyConvertHandler(converter *currency.Converter, svc *service.InsightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		minor := r.URL.Query().Get("minor") == "true"

		target := currency.Code(strings.ToUpper(r.URL.Query().Get("to")))
		if target == "" {
			target = svc.DetectCurrency(r.Context(), clientIP(r))
		}

		converted := converter.Convert(amount, target, minor)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"amount":    converted,
			"currency":  string(target),
			"formatted": converter.Format(converted, target, minor),
		})
	}
}
