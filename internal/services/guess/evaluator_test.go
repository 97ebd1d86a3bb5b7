package guess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/numberduel-go/internal/model"
)

func TestValidateNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{name: "valid distinct digits", number: "1234", valid: true},
		{name: "valid with leading zero", number: "0123", valid: true},
		{name: "valid high digits", number: "9876", valid: true},
		{name: "too short", number: "123", valid: false},
		{name: "too long", number: "12345", valid: false},
		{name: "empty", number: "", valid: false},
		{name: "repeated digit", number: "1123", valid: false},
		{name: "all same digit", number: "7777", valid: false},
		{name: "non-digit character", number: "12a4", valid: false},
		{name: "negative sign", number: "-123", valid: false},
		{name: "unicode digits", number: "１２３４", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNumber(tt.number)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, model.ErrInvalidNumber)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		guess     string
		digits    int
		positions int
	}{
		{name: "exact match", secret: "5678", guess: "5678", digits: 4, positions: 4},
		{name: "no overlap", secret: "1234", guess: "5678", digits: 0, positions: 0},
		{name: "shared digits wrong positions", secret: "5678", guess: "1567", digits: 3, positions: 0},
		{name: "all digits shuffled", secret: "1234", guess: "4321", digits: 4, positions: 0},
		{name: "three in place", secret: "1234", guess: "1254", digits: 3, positions: 3},
		{name: "one in place", secret: "0123", guess: "0456", digits: 1, positions: 1},
		{name: "partial swap", secret: "1234", guess: "2134", digits: 4, positions: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digits, positions, err := Evaluate(tt.secret, tt.guess)
			require.NoError(t, err)
			assert.Equal(t, tt.digits, digits, "correct digits")
			assert.Equal(t, tt.positions, positions, "correct positions")
		})
	}
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	_, _, err := Evaluate("1234", "112")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, _, err = Evaluate("11x4", "1234")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

// For any valid pair, positions <= digits <= 4, and 4 positions implies the
// strings are equal.
func TestEvaluateBounds(t *testing.T) {
	secrets := []string{"0123", "9876", "4057", "1234"}
	guesses := []string{"0123", "3210", "5678", "4321", "9087"}

	for _, secret := range secrets {
		for _, g := range guesses {
			digits, positions, err := Evaluate(secret, g)
			require.NoError(t, err)
			assert.LessOrEqual(t, positions, digits)
			assert.LessOrEqual(t, digits, 4)
			if positions == 4 {
				assert.Equal(t, secret, g)
			}
			if secret == g {
				assert.Equal(t, 4, positions)
			}
		}
	}
}
