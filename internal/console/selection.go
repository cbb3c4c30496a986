package console

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSelection reads a --select value: "all", or comma separated row
// numbers and ranges counted from 1 ("1,3-4"). It returns zero-based rows.
func ParseSelection(input string, rows int) (all bool, picked []int, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, nil, nil
	}
	if strings.EqualFold(input, "all") {
		return true, nil, nil
	}

	seen := map[int]bool{}
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi := part, part
		if i := strings.Index(part, "-"); i > 0 {
			lo, hi = part[:i], part[i+1:]
		}
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return false, nil, fmt.Errorf("invalid row %q", part)
		}
		to, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return false, nil, fmt.Errorf("invalid row %q", part)
		}
		if from < 1 || to > rows || from > to {
			return false, nil, fmt.Errorf("row %q out of range 1-%d", part, rows)
		}

		for n := from; n <= to; n++ {
			if !seen[n] {
				seen[n] = true
				picked = append(picked, n-1)
			}
		}
	}
	return false, picked, nil
}
