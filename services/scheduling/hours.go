package scheduling

import (
	"fmt"
	"strconv"
	"strings"

	"clipbook/models"
)

// ParseBusinessHours turns the configured start/end strings into ordered
// time blocks. Each string may carry several semicolon-separated "HH:MM"
// entries for split schedules; the counts must match pairwise. Blocks must
// be well-formed (start before end), in chronological order and disjoint —
// downstream code derives the calendar read window from the first block's
// start and the last block's end, so an out-of-order configuration would
// silently hide busy intervals.
func ParseBusinessHours(startCfg, endCfg string) ([]models.TimeBlock, error) {
	starts := strings.Split(startCfg, ";")
	ends := strings.Split(endCfg, ";")
	if len(starts) != len(ends) {
		return nil, fmt.Errorf("mismatched business hours configuration: %d start blocks, %d end blocks", len(starts), len(ends))
	}

	blocks := make([]models.TimeBlock, 0, len(starts))
	for i := range starts {
		start, err := parseClock(starts[i])
		if err != nil {
			return nil, fmt.Errorf("invalid business hours start %q: %w", starts[i], err)
		}
		end, err := parseClock(ends[i])
		if err != nil {
			return nil, fmt.Errorf("invalid business hours end %q: %w", ends[i], err)
		}
		if start >= end {
			return nil, fmt.Errorf("business hours block %d is empty or inverted: %s-%s",
				i+1, strings.TrimSpace(starts[i]), strings.TrimSpace(ends[i]))
		}
		if i > 0 && start < blocks[i-1].End {
			return nil, fmt.Errorf("business hours block %d starts at %s, before block %d ends: blocks must be ordered and disjoint",
				i+1, strings.TrimSpace(starts[i]), i)
		}
		blocks = append(blocks, models.TimeBlock{Start: start, End: end})
	}
	return blocks, nil
}

// parseClock parses "HH:MM" into minutes from midnight.
func parseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad hour: %w", err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad minute: %w", err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("out of range")
	}
	return hour*60 + minute, nil
}
