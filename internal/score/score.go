// Package score defines the opaque solution quality values produced by solvers.
//
// The aggregation core never computes a score. It only adds, divides and
// compares them, and checks whether two scores share an arithmetic domain
// before combining them.
package score

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

// Kind names a score definition. Scores of different kinds are never
// arithmetically compatible.
type Kind string

const (
	KindSimple   Kind = "simple"
	KindHardSoft Kind = "hard_soft"
)

// ErrUnknownKind is returned when parsing a score of an unregistered kind.
var ErrUnknownKind = errors.New("unknown score kind")

// ErrMalformed is returned when a score string cannot be parsed.
var ErrMalformed = errors.New("malformed score")

// Score is a solution quality value. Higher is better.
//
// Add, Divide and Compare panic when given an argument for which
// IsCompatibleArithmeticArgument reports false; callers check first.
type Score interface {
	Kind() Kind
	Add(other Score) Score
	Divide(divisor int) Score
	Compare(other Score) int
	IsCompatibleArithmeticArgument(other Score) bool
	IsFeasible() bool
	String() string
}

// Compare orders two possibly nil or incompatible scores. A nil score sorts
// below any score; incompatible scores are ordered by kind so the result is
// still a total order.
func Compare(a, b Score) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case !a.IsCompatibleArithmeticArgument(b):
		return cmp.Compare(a.Kind(), b.Kind())
	default:
		return a.Compare(b)
	}
}

// Parse reads a score of the given kind from its String form.
func Parse(kind Kind, text string) (Score, error) {
	text = strings.TrimSpace(text)
	switch kind {
	case KindSimple:
		return parseSimple(text)
	case KindHardSoft:
		return parseHardSoft(text)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// ParseAny detects the kind from the text itself.
func ParseAny(text string) (Score, error) {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "hard/") {
		return parseHardSoft(text)
	}
	return parseSimple(text)
}

func floorDiv(v int64, divisor int) int64 {
	d := int64(divisor)
	q := v / d
	if (v%d != 0) && ((v < 0) != (d < 0)) {
		q--
	}
	return q
}

func mismatch(op string, a, b Score) string {
	return fmt.Sprintf("score: %s of incompatible scores %s (%s) and %v", op, a, a.Kind(), b)
}
