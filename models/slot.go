package models

import "time"

// TimeBlock is one contiguous stretch of business hours, expressed in
// minutes from midnight, half-open [Start, End). A day may carry several
// disjoint blocks for split schedules (e.g. morning + evening).
type TimeBlock struct {
	Start int `json:"start"` // minutes from midnight (e.g., 540 for 9:00 AM)
	End   int `json:"end"`   // minutes from midnight (e.g., 1080 for 6:00 PM)
}

// Slot is a single bookable start-time/duration pair derived from business
// hours. Slots are never persisted; the start instant is their identity.
type Slot struct {
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
}

// End returns the slot's exclusive end instant.
func (s Slot) End() time.Time {
	return s.Start.Add(s.Duration)
}

// BusyInterval is a half-open [Start, End) range already occupied on the
// calendar. Intervals arrive as the backend reports them, with no alignment
// guarantee against slot boundaries.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
