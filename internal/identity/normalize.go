// Package identity handles the credential identifiers used across the
// system: Iranian national IDs, four-digit employee codes and mobile
// numbers. All of them may arrive in Persian or Arabic-Indic digits and
// must be normalized to ASCII before they are stored or compared.
package identity

import "strings"

// persianToASCII maps Persian and Arabic-Indic digit runes to ASCII digits.
var persianToASCII = map[rune]rune{
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
}

// NormalizeDigits converts Persian/Arabic-Indic digits to ASCII and drops
// whitespace. Other runes are preserved so formats like "123-456" survive
// for the validators to reject or accept.
func NormalizeDigits(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if mapped, ok := persianToASCII[r]; ok {
			b.WriteRune(mapped)
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeNationalID normalizes a national ID for storage or comparison.
func NormalizeNationalID(value string) string {
	return stripSeparators(NormalizeDigits(value))
}

// NormalizeEmployeeCode normalizes an employee code for storage or comparison.
func NormalizeEmployeeCode(value string) string {
	return stripSeparators(NormalizeDigits(value))
}

// stripSeparators removes common grouping separators so "111-111-1111"
// compares equal to "1111111111".
func stripSeparators(value string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || r == '.' {
			return -1
		}
		return r
	}, value)
}

// ToPersianDigits converts ASCII digits to Persian digits for display.
func ToPersianDigits(value string) string {
	var b strings.Builder
	b.Grow(len(value) * 2)
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(rune('۰') + (r - '0'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
