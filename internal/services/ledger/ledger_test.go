package ledger

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/teamboard/internal/model"
)

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		op       Operation
		amount   int64
		expected int64
	}{
		{"set replaces", 40, OpSet, 15, 15},
		{"set clamps negative", 40, OpSet, -10, 0},
		{"set zero", 40, OpSet, 0, 0},
		{"add", 10, OpAdd, 5, 15},
		{"add is unbounded", 0, OpAdd, 1000000, 1000000},
		{"add saturates instead of wrapping", math.MaxInt64 - 1, OpAdd, 10, math.MaxInt64},
		{"add missing amount", 7, OpAdd, 0, 7},
		{"add negative magnitude counts as zero", 7, OpAdd, -3, 7},
		{"subtract", 10, OpSubtract, 4, 6},
		{"subtract floors at zero", 5, OpSubtract, 100, 0},
		{"subtract exact", 5, OpSubtract, 5, 0},
		{"subtract negative magnitude counts as zero", 5, OpSubtract, -3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyDelta(tt.current, tt.op, tt.amount))
		})
	}
}

func TestApplyDeltaNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	ops := []Operation{OpSet, OpAdd, OpSubtract}

	points := int64(0)
	for range 10000 {
		op := ops[rng.IntN(len(ops))]
		amount := rng.Int64N(2000) - 1000
		points = ApplyDelta(points, op, amount)
		require.GreaterOrEqual(t, points, int64(0), "op=%s amount=%d", op, amount)
	}
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		input    string
		expected Operation
	}{
		{"set", OpSet},
		{"", OpSet},
		{"add", OpAdd},
		{"subtract", OpSubtract},
	}
	for _, tt := range tests {
		op, err := ParseOperation(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, op)
	}

	for _, input := range []string{"multiply", "ADD", " add ", "Set"} {
		_, err := ParseOperation(input)
		assert.True(t, model.IsValidation(err), input)
	}
}
