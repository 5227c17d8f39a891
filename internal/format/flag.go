package format

import "strings"

// regionalIndicatorOffset shifts 'A'..'Z' into the Unicode regional indicator block.
const regionalIndicatorOffset = 127397

// CountryFlag converts an ISO-3166 alpha-2 code into its flag emoji. Anything that
// is not exactly two characters degrades to an empty string.
func CountryFlag(countryCode string) string {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if len(code) != 2 {
		return ""
	}

	var b strings.Builder
	for _, ch := range code {
		b.WriteRune(ch + regionalIndicatorOffset)
	}
	return b.String()
}
