package control

import (
	"go.viam.com/sslmotion/config"
)

// Table is a piecewise-linear function over breakpoints sorted by input. Inputs outside the
// breakpoints are clamped to the first or last output.
type Table struct {
	points []config.Breakpoint
}

// NewTable wraps breakpoints already validated as sorted with unique inputs.
func NewTable(points []config.Breakpoint) Table {
	return Table{points: points}
}

// At evaluates the table at x. An empty table returns 1.
func (t Table) At(x float64) float64 {
	n := len(t.points)
	if n == 0 {
		return 1
	}
	if x <= t.points[0].Input {
		return t.points[0].Output
	}
	if x >= t.points[n-1].Input {
		return t.points[n-1].Output
	}
	for i := 1; i < n; i++ {
		hi := t.points[i]
		if x > hi.Input {
			continue
		}
		lo := t.points[i-1]
		frac := (x - lo.Input) / (hi.Input - lo.Input)
		return lo.Output + (hi.Output-lo.Output)*frac
	}
	return t.points[n-1].Output
}
