package validation

import "strings"

// NormalizeCPF strips everything but digits. Deduplication always uses the
// normalized form.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	b.Grow(11)
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF reports whether cpf is well formed and its two check digits match.
// Numbers made of a single repeated digit are rejected.
func ValidCPF(cpf string) bool {
	if !cpfFormat.MatchString(cpf) {
		return false
	}

	digits := NormalizeCPF(cpf)
	if strings.Count(digits, digits[:1]) == len(digits) {
		return false
	}

	return digits == WithCheckDigits(digits[:9])
}

// WithCheckDigits appends the two check digits to a 9 digit base.
func WithCheckDigits(base string) string {
	if len(base) != 9 {
		return ""
	}

	d1 := checkDigit(base, 10)
	d2 := checkDigit(base+string(rune('0'+d1)), 11)
	return base + string(rune('0'+d1)) + string(rune('0'+d2))
}

func checkDigit(digits string, weight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	r := (sum * 10) % 11
	if r == 10 {
		return 0
	}
	return r
}
