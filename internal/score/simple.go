package score

import (
	"cmp"
	"fmt"
	"strconv"
)

// Simple is a single-level score.
type Simple struct {
	Value int64
}

var _ Score = Simple{}

func (s Simple) Kind() Kind { return KindSimple }

func (s Simple) Add(other Score) Score {
	o, ok := other.(Simple)
	if !ok {
		panic(mismatch("add", s, other))
	}
	return Simple{Value: s.Value + o.Value}
}

// Divide rounds toward negative infinity.
func (s Simple) Divide(divisor int) Score {
	return Simple{Value: floorDiv(s.Value, divisor)}
}

func (s Simple) Compare(other Score) int {
	o, ok := other.(Simple)
	if !ok {
		panic(mismatch("compare", s, other))
	}
	return cmp.Compare(s.Value, o.Value)
}

func (s Simple) IsCompatibleArithmeticArgument(other Score) bool {
	_, ok := other.(Simple)
	return ok
}

func (s Simple) IsFeasible() bool { return true }

func (s Simple) String() string { return strconv.FormatInt(s.Value, 10) }

func parseSimple(text string) (Score, error) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: simple score %q", ErrMalformed, text)
	}
	return Simple{Value: v}, nil
}
