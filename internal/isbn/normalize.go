// Package isbn resolves a (title, author) pair to a 10-character book identifier.
package isbn

import "strings"

// Normalize turns a raw catalogue identifier into the 10-character form used
// by the dataset. Separators are removed; an ISBN-10 shape passes through and
// a 978-prefixed ISBN-13 keeps its nine body digits (prefix and check digit
// dropped, no check digit is recomputed). Anything else is rejected.
func Normalize(raw string) (string, bool) {
	v := strings.NewReplacer("-", "", " ", "", "　", "").Replace(strings.TrimSpace(raw))

	switch len(v) {
	case 10:
		if !allDigits(v[:9]) {
			return "", false
		}
		last := v[9]
		if last != 'X' && last != 'x' && (last < '0' || last > '9') {
			return "", false
		}
		return v, true
	case 13:
		if !allDigits(v) || !strings.HasPrefix(v, "978") {
			return "", false
		}
		return v[3:12], true
	}
	return "", false
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
