// internal/app/system/phone/phone.go
package phone

import "strings"

// Messaging-provider suffixes that may trail an inbound sender id.
var chatSuffixes = []string{"@c.us", "@s.whatsapp.net", "@g.us"}

// Normalize canonicalizes a phone number for comparison.
//
// Steps, in order:
//  1. strip a WhatsApp chat suffix ("972501234567@c.us" → "972501234567")
//  2. drop every non-digit (separators, "+", parentheses)
//  3. rewrite a leading national "0" to the given country calling code
//     ("0501234567" → "972501234567" for countryCode "972")
//
// The same function must be applied to both sides of any comparison: stored
// phones are free-form and inbound sender ids carry provider suffixes, so
// neither side is canonical on its own.
func Normalize(raw, countryCode string) string {
	s := strings.TrimSpace(raw)
	for _, suf := range chatSuffixes {
		if cut, ok := strings.CutSuffix(s, suf); ok {
			s = cut
			break
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if countryCode != "" && strings.HasPrefix(digits, "0") {
		digits = countryCode + digits[1:]
	}
	return digits
}

// Equal reports whether two free-form phone numbers normalize to the same
// canonical form.
func Equal(a, b, countryCode string) bool {
	na := Normalize(a, countryCode)
	return na != "" && na == Normalize(b, countryCode)
}
