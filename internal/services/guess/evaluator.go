// Package guess holds the pure guess-evaluation logic: validating secret
// numbers and scoring a guess against a secret.
package guess

import (
	"github.com/mcoot/numberduel-go/internal/model"
)

// ValidateNumber checks that s is a valid secret number or guess:
// exactly 4 characters, all digits, all distinct.
func ValidateNumber(s string) error {
	if len(s) != model.SecretLength {
		return model.ErrInvalidNumber
	}
	var seen [10]bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return model.ErrInvalidNumber
		}
		d := c - '0'
		if seen[d] {
			return model.ErrInvalidNumber
		}
		seen[d] = true
	}
	return nil
}

// Evaluate scores a guess against a secret. It returns the number of digit
// values shared between the two strings and the number of positions where
// they hold the same digit.
//
// Both inputs are expected to be valid 4-distinct-digit strings; they are
// re-validated defensively and ErrInvalidInput is returned otherwise.
func Evaluate(secret, guess string) (correctDigits, correctPositions int, err error) {
	if ValidateNumber(secret) != nil || ValidateNumber(guess) != nil {
		return 0, 0, model.ErrInvalidInput
	}

	var inSecret [10]bool
	for i := 0; i < len(secret); i++ {
		inSecret[secret[i]-'0'] = true
	}

	for i := 0; i < len(guess); i++ {
		if inSecret[guess[i]-'0'] {
			correctDigits++
		}
		if guess[i] == secret[i] {
			correctPositions++
		}
	}
	return correctDigits, correctPositions, nil
}
