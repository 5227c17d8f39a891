package currency

import (
	"math"
	"strconv"

	"go.uber.org/zap"
	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Code is an ISO 4217 currency code.
type Code string

// Supported currencies. EUR is the base everything converts from.
const (
	EUR Code = "EUR"
	GBP Code = "GBP"
	AUD Code = "AUD"
)

// Config describes one supported currency.
type Config struct {
	Code        Code    `json:"code"`
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	RateFromEUR float64 `json:"rate_from_eur"`
}

// rates is the static conversion table, EUR as base = 1.0. Rates are approximate;
// adding a currency or refreshing a rate is a data change, not a code change.
var rates = map[Code]Config{
	EUR: {Code: EUR, Symbol: "€", Name: "Euro", RateFromEUR: 1.0},
	GBP: {Code: GBP, Symbol: "£", Name: "British Pound", RateFromEUR: 0.85},
	AUD: {Code: AUD, Symbol: "A$", Name: "Australian Dollar", RateFromEUR: 1.65},
}

// codeOrder keeps SupportedCurrencies deterministic.
var codeOrder = []Code{EUR, GBP, AUD}

// Amount carries a monetary value together with its currency and scale, so
// minor-unit (cent) values cannot be confused with whole-unit values at a call site.
type Amount struct {
	Value      float64 `json:"value"`
	Code       Code    `json:"code"`
	MinorUnits bool    `json:"minor_units"`
}

// Converter converts and formats amounts relative to EUR. Every operation degrades
// instead of failing: unknown codes convert as identity and format as a bare number.
type Converter struct {
	logger *zap.Logger
}

// NewConverter builds converter. A nil logger is replaced with a no-op one.
func NewConverter(logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{logger: logger}
}

// ConfigFor returns the static configuration for a currency.
func ConfigFor(code Code) (Config, bool) {
	cfg, ok := rates[code]
	return cfg, ok
}

// SupportedCurrencies lists the static currency table in a stable order.
func SupportedCurrencies() []Config {
	configs := make([]Config, 0, len(codeOrder))
	for _, code := range codeOrder {
		configs = append(configs, rates[code])
	}
	return configs
}

// Convert converts an EUR-denominated amount into the target currency. Minor-unit
// amounts round to the nearest whole cent, whole-unit amounts to two decimals.
// Unknown target codes log a warning and return the amount unchanged.
func (c *Converter) Convert(amountEUR float64, target Code, minorUnits bool) float64 {
	cfg, ok := rates[target]
	if !ok {
		c.logger.Warn("unknown currency, returning amount unchanged", zap.String("currency", string(target)))
		return amountEUR
	}

	converted := amountEUR * cfg.RateFromEUR
	if minorUnits {
		return math.Round(converted)
	}
	return math.Round(converted*100) / 100
}

// Format renders an amount as "{symbol}{value}" with two decimals, dividing by 100
// first when the amount is in minor units. Unknown codes render the bare number.
func (c *Converter) Format(amount float64, code Code, minorUnits bool) string {
	cfg, ok := rates[code]
	if !ok {
		return strconv.FormatFloat(amount, 'f', -1, 64)
	}

	value := amount
	if minorUnits {
		value = amount / 100
	}
	return cfg.Symbol + strconv.FormatFloat(value, 'f', 2, 64)
}

// ConvertAndFormat converts an EUR amount into the target currency and renders it.
func (c *Converter) ConvertAndFormat(amountEUR float64, target Code, minorUnits bool) string {
	return c.Format(c.Convert(amountEUR, target, minorUnits), target, minorUnits)
}

// FormatLocale renders an amount with locale-aware number formatting. Any failure
// to resolve the locale or the currency falls back to Format.
func (c *Converter) FormatLocale(amount float64, code Code, minorUnits bool, locale string) string {
	unit, err := xcurrency.ParseISO(string(code))
	if err != nil {
		return c.Format(amount, code, minorUnits)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return c.Format(amount, code, minorUnits)
	}

	value := amount
	if minorUnits {
		value = amount / 100
	}
	printer := message.NewPrinter(tag)
	return printer.Sprintf("%v", xcurrency.NarrowSymbol(unit.Amount(value)))
}

// ConvertAmount converts an EUR-denominated typed amount into the target currency,
// preserving scale. Amounts already in another currency are returned unchanged.
func (c *Converter) ConvertAmount(a Amount, target Code) Amount {
	if a.Code != EUR {
		c.logger.Warn("convert requires an EUR-denominated amount", zap.String("currency", string(a.Code)))
		return a
	}
	return Amount{
		Value:      c.Convert(a.Value, target, a.MinorUnits),
		Code:       target,
		MinorUnits: a.MinorUnits,
	}
}

// FormatAmount renders a typed amount.
func (c *Converter) FormatAmount(a Amount) string {
	return c.Format(a.Value, a.Code, a.MinorUnits)
}
