package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// Characters that customers habitually mix into the same shipping mark.
// "KOFI-21", "KOFI/21" and "KOFI 21" all label the same client.
const markPunct = "-_/\\.,#&+*()[]"

// NormalizeMark canonicalises a shipping mark for matching and grouping:
// uppercase, punctuation to spaces, whitespace runs collapsed to one space.
func NormalizeMark(mark string) string {
	mark = strings.ToUpper(strings.TrimSpace(mark))

	var b strings.Builder
	b.Grow(len(mark))
	for _, r := range mark {
		if strings.ContainsRune(markPunct, r) || unicode.IsSpace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// BaseMark strips the per-shipment numeric suffix from a normalized mark,
// so "KOFI 233" and "KOFI233" both group under "KOFI". A purely numeric
// mark keeps its normalized form.
func BaseMark(mark string) string {
	norm := NormalizeMark(mark)
	if norm == "" {
		return ""
	}

	fields := strings.Fields(norm)
	last := fields[len(fields)-1]

	if isDigits(last) {
		if len(fields) == 1 {
			return norm
		}
		return strings.Join(fields[:len(fields)-1], " ")
	}

	// Trailing digits glued to the last token: KOFI123 -> KOFI
	trimmed := strings.TrimRightFunc(last, unicode.IsDigit)
	if trimmed == "" || trimmed == last {
		return norm
	}
	fields[len(fields)-1] = trimmed
	return strings.Join(fields, " ")
}

// NormalizePhone reduces a phone number to the local Ghanaian form used
// for duplicate detection: digits only, leading +233/233/00233 folded to 0.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "00233"):
		return "0" + digits[5:]
	case strings.HasPrefix(digits, "233") && len(digits) == 12:
		return "0" + digits[3:]
	default:
		return digits
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
