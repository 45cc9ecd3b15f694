package crypto

import (
	"strings"
	"unicode/utf8"
)

// MaxStrength is the highest score Strength returns.
const MaxStrength = 4

var commonWords = []string{"password", "12345", "qwerty", "admin", "letmein", "welcome", "abc123"}

// Strength rates a plaintext password from 0 (very weak) to 4 (very strong).
//
// Eight or more characters earn a point. Mixing character classes (lowercase,
// uppercase, digits, anything else) earns 1, 2 or 3 points for two, three or
// four classes. Containing a common word costs a point.
func Strength(password string) int {
	score := 0
	if utf8.RuneCountInString(password) >= 8 {
		score++
	}

	var lower, upper, digit, other bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}

	classes := 0
	for _, ok := range []bool{lower, upper, digit, other} {
		if ok {
			classes++
		}
	}
	switch {
	case classes >= 4:
		score += 3
	case classes == 3:
		score += 2
	case classes == 2:
		score++
	}

	folded := strings.ToLower(password)
	for _, w := range commonWords {
		if strings.Contains(folded, w) {
			score--
			break
		}
	}

	return max(0, min(score, MaxStrength))
}
