package config

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

func positive(name string, v float64) error {
	if !(v > 0) {
		return errors.Errorf("%s must be positive, got %v", name, v)
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if !(v >= 0) {
		return errors.Errorf("%s must be non-negative, got %v", name, v)
	}
	return nil
}

func atLeastOne(name string, v int) error {
	if v < 1 {
		return errors.Errorf("%s must be at least 1, got %d", name, v)
	}
	return nil
}

func fraction(name string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return errors.Errorf("%s must be between 0 and 1, got %v", name, v)
	}
	return nil
}

func positiveDuration(name string, d time.Duration) error {
	if d <= 0 {
		return errors.Errorf("%s must be positive, got %s", name, d)
	}
	return nil
}

func validTable(name string, table []Breakpoint) error {
	if len(table) == 0 {
		return errors.Errorf("%s needs at least one breakpoint", name)
	}
	if !sort.SliceIsSorted(table, func(i, j int) bool { return table[i].Input < table[j].Input }) {
		return errors.Errorf("%s breakpoints must be sorted by input", name)
	}
	for i := 1; i < len(table); i++ {
		if table[i].Input == table[i-1].Input {
			return errors.Errorf("%s has duplicate breakpoint input %v", name, table[i].Input)
		}
	}
	return nil
}
