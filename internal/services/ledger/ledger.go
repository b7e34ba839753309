// Package ledger defines what it means to set, add or subtract team points.
package ledger

import (
	"math"

	"github.com/mcoot/teamboard/internal/model"
)

// Operation is the direction of a points change
type Operation string

const (
	OpSet      Operation = "set"
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
)

// ParseOperation maps a wire value to an Operation. Values match exactly;
// an empty value means set.
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case "", OpSet:
		return OpSet, nil
	case OpAdd:
		return OpAdd, nil
	case OpSubtract:
		return OpSubtract, nil
	}
	return "", model.NewValidationError("operation", "operation must be one of set, add, subtract")
}

// ApplyDelta returns the points a team holds after applying op with amount to current.
// The result is never negative. amount is a magnitude: the operation decides the direction,
// and a negative amount counts as zero for add and subtract.
func ApplyDelta(current int64, op Operation, amount int64) int64 {
	switch op {
	case OpAdd:
		a := floor(amount)
		if current > math.MaxInt64-a {
			return math.MaxInt64
		}
		return floor(current + a)
	case OpSubtract:
		return floor(current - floor(amount))
	default:
		return floor(amount)
	}
}

func floor(v int64) int64 {
	return max(v, 0)
}
