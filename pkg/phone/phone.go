// Package phone normalizes North American phone numbers. Customer phones
// arrive in whatever format the cashier or signup form produced, so lookups
// must match against every common rendering of the same number.
package phone

import (
	"fmt"
	"strings"
)

// Format canonicalizes a raw phone string to E.164 (+1XXXXXXXXXX) for
// 10-digit North American numbers. Numbers that already carry a country
// code keep it; anything that doesn't look like a phone number is returned
// with digits only so it still round-trips consistently.
func Format(raw string) string {
	digits := onlyDigits(raw)
	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits
	case len(digits) > 0 && strings.HasPrefix(strings.TrimSpace(raw), "+"):
		return "+" + digits
	default:
		return digits
	}
}

// Variations returns the known renderings of a phone number that may exist
// in stored records: canonical E.164, bare 10 digits, 1-prefixed, and the
// two common human formats. The canonical form is always first.
func Variations(raw string) []string {
	canonical := Format(raw)
	digits := onlyDigits(canonical)

	if len(digits) != 11 || digits[0] != '1' {
		// Not a North American number; match canonical and raw digits only.
		return dedupe([]string{canonical, digits})
	}

	local := digits[1:]
	return dedupe([]string{
		canonical,
		local,
		digits,
		fmt.Sprintf("(%s) %s-%s", local[:3], local[3:6], local[6:]),
		fmt.Sprintf("%s-%s-%s", local[:3], local[3:6], local[6:]),
	})
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
