// File: services/scheduling/slots.go
package scheduling

import (
	"time"

	"clipbook/models"
)

// GenerateSlots expands a day's business-hour blocks into candidate
// fixed-duration slots. day must be midnight in the configured timezone.
// For each block, slots step from the block start while the full duration
// still fits; a zero-length or inverted block contributes nothing. Blocks
// are processed in configured order and same-day blocks are disjoint, so
// the output is already chronological.
func GenerateSlots(day time.Time, blocks []models.TimeBlock, duration time.Duration) []models.Slot {
	if duration <= 0 {
		return nil
	}

	var slots []models.Slot
	for _, block := range blocks {
		if block.Start >= block.End {
			continue
		}
		blockStart := day.Add(time.Duration(block.Start) * time.Minute)
		blockEnd := day.Add(time.Duration(block.End) * time.Minute)

		for cur := blockStart; !cur.Add(duration).After(blockEnd); cur = cur.Add(duration) {
			slots = append(slots, models.Slot{Start: cur, Duration: duration})
		}
	}
	return slots
}

// FilterConflicts keeps only the slots that clear every busy interval.
// Half-open intersection: [s, s+d) overlaps [b0, b1) iff s < b1 && s+d > b0,
// so touching endpoints do not count as a conflict.
func FilterConflicts(slots []models.Slot, busy []models.BusyInterval) []models.Slot {
	if len(busy) == 0 {
		return slots
	}

	kept := make([]models.Slot, 0, len(slots))
	for _, slot := range slots {
		end := slot.End()
		conflict := false
		for _, b := range busy {
			if slot.Start.Before(b.End) && end.After(b.Start) {
				conflict = true
				break
			}
		}
		if !conflict {
			kept = append(kept, slot)
		}
	}
	return kept
}
