package score

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

const (
	hardLabel = "hard"
	softLabel = "soft"
)

// HardSoft is a two-level score. A negative hard level marks an infeasible
// solution; the soft level only breaks ties between equal hard levels.
type HardSoft struct {
	Hard int64
	Soft int64
}

var _ Score = HardSoft{}

func (s HardSoft) Kind() Kind { return KindHardSoft }

func (s HardSoft) Add(other Score) Score {
	o, ok := other.(HardSoft)
	if !ok {
		panic(mismatch("add", s, other))
	}
	return HardSoft{Hard: s.Hard + o.Hard, Soft: s.Soft + o.Soft}
}

// Divide rounds each level toward negative infinity.
func (s HardSoft) Divide(divisor int) Score {
	return HardSoft{Hard: floorDiv(s.Hard, divisor), Soft: floorDiv(s.Soft, divisor)}
}

func (s HardSoft) Compare(other Score) int {
	o, ok := other.(HardSoft)
	if !ok {
		panic(mismatch("compare", s, other))
	}
	if c := cmp.Compare(s.Hard, o.Hard); c != 0 {
		return c
	}
	return cmp.Compare(s.Soft, o.Soft)
}

func (s HardSoft) IsCompatibleArithmeticArgument(other Score) bool {
	_, ok := other.(HardSoft)
	return ok
}

func (s HardSoft) IsFeasible() bool { return s.Hard >= 0 }

func (s HardSoft) String() string {
	return fmt.Sprintf("%d%s/%d%s", s.Hard, hardLabel, s.Soft, softLabel)
}

func parseHardSoft(text string) (Score, error) {
	hardText, softText, ok := strings.Cut(text, "/")
	if !ok || !strings.HasSuffix(hardText, hardLabel) || !strings.HasSuffix(softText, softLabel) {
		return nil, fmt.Errorf("%w: hard/soft score %q", ErrMalformed, text)
	}
	hard, err := strconv.ParseInt(strings.TrimSuffix(hardText, hardLabel), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: hard level of %q", ErrMalformed, text)
	}
	soft, err := strconv.ParseInt(strings.TrimSuffix(softText, softLabel), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: soft level of %q", ErrMalformed, text)
	}
	return HardSoft{Hard: hard, Soft: soft}, nil
}
