package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"whole number", 100, 100},
		{"already two places", 12.34, 12.34},
		{"rounds down", 12.344, 12.34},
		{"rounds half up", 12.345, 12.35},
		{"rounds up", 12.346, 12.35},
		{"float artifact", 0.1 + 0.2, 0.3},
		{"ten percent of 333", 333 * 0.10, 33.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round2(tt.in), 1e-9)
		})
	}
}

func TestRound2_LoanTerms(t *testing.T) {
	principal := 100.0
	interest := Round2(principal * 0.10)
	total := Round2(principal + interest)

	assert.Equal(t, 10.0, interest)
	assert.Equal(t, 110.0, total)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "GHS 110.00", Format(110))
	assert.Equal(t, "GHS 33.30", Format(33.3))
	assert.Equal(t, "GHS 0.00", Format(0))
}
