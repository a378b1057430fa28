// File: services/scheduling/availability.go
package scheduling

import (
	"context"
	"fmt"
	"time"

	calendarSvc "clipbook/services/calendar"

	"clipbook/models"
	"clipbook/utils"

	"go.uber.org/zap"
)

// AvailabilityService computes bookable slots across a multi-day window.
type AvailabilityService interface {
	// AvailableSlots returns every open slot in [fromDate, fromDate+numDays),
	// chronological. A day whose calendar read fails contributes an empty
	// set rather than failing the whole window.
	AvailableSlots(ctx context.Context, fromDate time.Time, numDays int) []models.Slot

	// PresentableSlots is AvailableSlots truncated to the presentation
	// limit. Display policy only; re-validation never uses this view.
	PresentableSlots(ctx context.Context, fromDate time.Time, numDays int) []models.Slot

	// DaySlots returns one day's open slots and, unlike AvailableSlots,
	// propagates the calendar read error so booking re-validation can tell
	// a backend failure apart from a genuinely full day.
	DaySlots(ctx context.Context, day time.Time) ([]models.Slot, error)
}

// DefaultAvailabilityService implements AvailabilityService on top of the
// slot generator, the conflict filter and the remote calendar.
type DefaultAvailabilityService struct {
	Calendar calendarSvc.CalendarService
	Blocks   []models.TimeBlock
	Duration time.Duration
	Limit    int // presentation truncation count
	Location *time.Location

	// Now is the clock; tests override it. Defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultAvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now().In(s.Location)
	}
	return time.Now().In(s.Location)
}

// midnight truncates t to the start of its day in the configured timezone.
func (s *DefaultAvailabilityService) midnight(t time.Time) time.Time {
	t = t.In(s.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.Location)
}

func (s *DefaultAvailabilityService) AvailableSlots(ctx context.Context, fromDate time.Time, numDays int) []models.Slot {
	logger := utils.GetLogger()
	var all []models.Slot

	for offset := 0; offset < numDays; offset++ {
		day := s.midnight(fromDate).AddDate(0, 0, offset)
		slots, err := s.DaySlots(ctx, day)
		if err != nil {
			// Fail open: an unreachable backend means no availability for
			// the day, never a crashed window.
			logger.Warn("availability read failed, treating day as fully booked",
				zap.String("day", day.Format("2006-01-02")), zap.Error(err))
			continue
		}
		all = append(all, slots...)
	}
	return all
}

func (s *DefaultAvailabilityService) PresentableSlots(ctx context.Context, fromDate time.Time, numDays int) []models.Slot {
	slots := s.AvailableSlots(ctx, fromDate, numDays)
	if s.Limit > 0 && len(slots) > s.Limit {
		slots = slots[:s.Limit]
	}
	return slots
}

func (s *DefaultAvailabilityService) DaySlots(ctx context.Context, day time.Time) ([]models.Slot, error) {
	now := s.now()
	day = s.midnight(day)

	// Never offer past days.
	if day.Before(s.midnight(now)) {
		return nil, nil
	}
	if len(s.Blocks) == 0 {
		return nil, fmt.Errorf("no business hour blocks configured")
	}

	rangeStart := day.Add(time.Duration(s.Blocks[0].Start) * time.Minute)
	rangeEnd := day.Add(time.Duration(s.Blocks[len(s.Blocks)-1].End) * time.Minute)

	busy, err := s.Calendar.BusyIntervals(ctx, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("fetch busy intervals: %w", err)
	}

	slots := FilterConflicts(GenerateSlots(day, s.Blocks, s.Duration), busy)

	// Drop sub-day slots already past; only strictly future starts survive.
	open := slots[:0]
	for _, slot := range slots {
		if slot.Start.After(now) {
			open = append(open, slot)
		}
	}
	return open, nil
}
