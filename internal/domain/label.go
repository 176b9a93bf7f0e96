package domain

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
)

var ErrInvalidLabel = errors.New("invalid seat label")

var labelRe = regexp.MustCompile(`^[A-Z][1-9][0-9]*$`)

// ValidLabel reports whether label is a row letter followed by a 1-based
// column number, e.g. "A1" or "J10".
func ValidLabel(label string) bool {
	return labelRe.MatchString(label)
}

// FormatLabel renders zero-based row and column indexes as a label.
func FormatLabel(row, col int) string {
	return fmt.Sprintf("%c%d", rune('A'+row), col+1)
}

// ParseLabel is the inverse of FormatLabel.
func ParseLabel(label string) (row, col int, err error) {
	if !ValidLabel(label) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	n, err := strconv.Atoi(label[1:])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	return int(label[0] - 'A'), n - 1, nil
}

// GridLabels lists every label of a rows x cols grid, row by row.
func GridLabels(rows, cols int) []string {
	out := make([]string, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, FormatLabel(r, c))
		}
	}
	return out
}

// NormalizeLabels validates labels, drops duplicates and sorts them
// ascending so that overlapping batches always touch seats in one order.
func NormalizeLabels(labels []string) ([]string, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no seats selected", ErrInvalidLabel)
	}

	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if !ValidLabel(l) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLabel, l)
		}
		out = append(out, l)
	}

	slices.Sort(out)
	return slices.Compact(out), nil
}
