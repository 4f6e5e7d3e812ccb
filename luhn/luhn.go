// Package luhn implements the Luhn checksum used to validate card numbers
// against transcription errors.
package luhn

import (
	"fmt"
	"strings"
	"unicode"
)

// CheckDigit returns the digit that, appended to the given digit string,
// makes the full number pass Validate.
func CheckDigit(digits string) (int, error) {
	sum, err := luhnSum(digits)
	if err != nil {
		return 0, err
	}
	return (10 - sum%10) % 10, nil
}

// Validate reports whether the given number passes the Luhn check.
// Whitespace is ignored; anything shorter than two digits is invalid.
func Validate(number string) bool {
	cleaned := stripSpace(number)
	if len(cleaned) < 2 {
		return false
	}
	check, err := CheckDigit(cleaned[:len(cleaned)-1])
	if err != nil {
		return false
	}
	return cleaned[len(cleaned)-1] == byte('0'+check)
}

// luhnSum doubles every second digit starting from the rightmost one,
// subtracts 9 from any result above 9, and sums everything up.
func luhnSum(digits string) (int, error) {
	sum := 0
	n := len(digits)
	for i := 0; i < n; i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid digit %q in %q", c, digits)
		}
		d := int(c - '0')
		if (n-i)%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
