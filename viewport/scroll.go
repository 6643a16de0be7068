package viewport

import (
	"fmt"
	"strconv"
	"strings"
)

// WheelStep is how far one wheel click scrolls: Rows rows of text, or
// Percent of the viewport height when Percent is set.
type WheelStep struct {
	Rows    int
	Percent float64
}

// DefaultWheelStep scrolls one row per click.
var DefaultWheelStep = WheelStep{Rows: 1}

// ParseWheelStep reads a step written as a row count, "3", or as a share of
// the viewport, "50%". Shares above 100% scroll one viewport. The empty
// string is DefaultWheelStep.
func ParseWheelStep(s string) (WheelStep, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultWheelStep, nil
	}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		p, err := strconv.ParseFloat(pct, 64)
		if err != nil || p <= 0 {
			return WheelStep{}, fmt.Errorf("wheel step %q: want a positive percentage", s)
		}
		return WheelStep{Percent: min(p, 100)}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return WheelStep{}, fmt.Errorf("wheel step %q: want a positive row count", s)
	}
	return WheelStep{Rows: n}, nil
}

// Pixels returns the distance of one click over a viewport height pixels
// tall whose rows are lineHeight pixels. It is never less than one row.
func (s WheelStep) Pixels(height, lineHeight int) int {
	lineHeight = max(lineHeight, 1)
	px := s.Rows * lineHeight
	if s.Percent > 0 {
		px = int(s.Percent * float64(height) / 100)
	}
	return max(px, lineHeight)
}
