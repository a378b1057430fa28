// File: services/scheduling/booking.go
package scheduling

import (
	"context"
	"sync"
	"time"

	recordsRepo "clipbook/database/repository/records"
	calendarSvc "clipbook/services/calendar"

	"clipbook/models"
	"clipbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReminderScheduler queues a reminder DM ahead of a committed appointment.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, rec models.BookingRecord) error
}

// BookingCoordinator validates that a requested slot is still free at
// confirmation time and commits it exactly once, serialized per subject.
type BookingCoordinator interface {
	Book(ctx context.Context, subjectID string, requested time.Time, customerName, serviceType string) (*models.BookingRecord, error)
	Cancel(ctx context.Context, eventID string) error

	// UpcomingBooking finds the subject's next future appointment in the
	// record log, for cancellations arriving after the dialogue that booked
	// it was forgotten. Returns nil with no error when nothing is found.
	UpcomingBooking(ctx context.Context, subjectID string) (*models.BookingRecord, error)
}

// DefaultBookingCoordinator implements BookingCoordinator.
type DefaultBookingCoordinator struct {
	Availability AvailabilityService
	Calendar     calendarSvc.CalendarService
	Records      recordsRepo.BookingRecordRepository // optional record log
	Reminders    ReminderScheduler                   // optional reminder queue
	Duration     time.Duration
	Tolerance    time.Duration // same-slot matching tolerance

	// Now is the clock; tests override it. Defaults to time.Now.
	Now func() time.Time

	locks sync.Map // subject id -> *sync.Mutex
}

func (c *DefaultBookingCoordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *DefaultBookingCoordinator) subjectLock(subjectID string) *sync.Mutex {
	mu, _ := c.locks.LoadOrStore(subjectID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Book re-validates the requested start against a fresh busy-interval
// snapshot and, if an offered slot still matches within the configured
// tolerance, issues exactly one create-event call. Attempts for the same
// subject are serialized so re-validation and commit are atomic with
// respect to each other.
func (c *DefaultBookingCoordinator) Book(ctx context.Context, subjectID string, requested time.Time, customerName, serviceType string) (*models.BookingRecord, error) {
	logger := utils.GetLogger()

	mu := c.subjectLock(subjectID)
	mu.Lock()
	defer mu.Unlock()

	// Step 1: re-validate through the same path discovery used. Slots from
	// earlier turns are never trusted.
	slots, err := c.Availability.DaySlots(ctx, requested)
	if err != nil {
		return nil, NewCalendarError("could not re-check availability", err)
	}

	matched, ok := c.matchSlot(slots, requested)
	if !ok {
		logger.Warn("requested time no longer available",
			zap.String("subjectID", subjectID), zap.Time("requested", requested))
		return nil, NewTimeNotAvailableError("that time slot is no longer available")
	}

	// Step 2: commit. The slot's exact start wins over the requested time,
	// which may carry rounding drift from the text round-trip.
	eventID, err := c.Calendar.CreateEvent(ctx, calendarSvc.EventRequest{
		CustomerName:    customerName,
		CustomerContact: subjectID,
		Start:           matched.Start,
		Duration:        c.Duration,
		ServiceType:     serviceType,
	})
	if err != nil {
		return nil, NewCalendarError("could not create the appointment", err)
	}

	rec := models.BookingRecord{
		ID:           uuid.New().String(),
		SubjectID:    subjectID,
		CustomerName: customerName,
		Start:        matched.Start,
		Duration:     c.Duration,
		ServiceType:  serviceType,
		EventID:      eventID,
		CreatedAt:    c.now(),
	}

	// The calendar is the system of record; the local log and the reminder
	// queue are best effort.
	if c.Records != nil {
		if err := c.Records.Insert(ctx, rec); err != nil {
			logger.Warn("failed to persist booking record", zap.String("eventID", eventID), zap.Error(err))
		}
	}
	if c.Reminders != nil {
		if err := c.Reminders.ScheduleReminder(ctx, rec); err != nil {
			logger.Warn("failed to schedule reminder", zap.String("eventID", eventID), zap.Error(err))
		}
	}

	logger.Info("booking committed",
		zap.String("subjectID", subjectID),
		zap.String("eventID", eventID),
		zap.Time("start", matched.Start))
	return &rec, nil
}

// matchSlot accepts the requested start when some open slot differs by less
// than the tolerance. The tolerance absorbs formatting drift from text
// round-trips, not genuine scheduling ambiguity.
func (c *DefaultBookingCoordinator) matchSlot(slots []models.Slot, requested time.Time) (models.Slot, bool) {
	for _, slot := range slots {
		diff := slot.Start.Sub(requested)
		if diff < 0 {
			diff = -diff
		}
		if diff < c.Tolerance {
			return slot, true
		}
	}
	return models.Slot{}, false
}

// Cancel deletes the remote event and drops the local record echo. The
// record log stays best effort; a failed delete there leaves only a stale
// echo that UpcomingBooking prunes on its next pass.
func (c *DefaultBookingCoordinator) Cancel(ctx context.Context, eventID string) error {
	if err := c.Calendar.DeleteEvent(ctx, eventID); err != nil {
		return NewCalendarError("could not cancel the appointment", err)
	}
	if c.Records != nil {
		if err := c.Records.DeleteByEventID(ctx, eventID); err != nil && err != recordsRepo.ErrNotFound {
			utils.GetLogger().Warn("failed to drop booking record", zap.String("eventID", eventID), zap.Error(err))
		}
	}
	return nil
}

// UpcomingBooking returns the subject's soonest future booking whose remote
// event still exists. Echoes whose event is gone from the calendar are
// pruned along the way.
func (c *DefaultBookingCoordinator) UpcomingBooking(ctx context.Context, subjectID string) (*models.BookingRecord, error) {
	if c.Records == nil {
		return nil, nil
	}
	recs, err := c.Records.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	now := c.now()
	var upcoming *models.BookingRecord
	for i := range recs {
		rec := recs[i]
		if !rec.Start.After(now) {
			continue
		}
		if _, err := c.Calendar.GetEvent(ctx, rec.EventID); err != nil {
			utils.GetLogger().Debug("pruning booking record without remote event",
				zap.String("eventID", rec.EventID), zap.Error(err))
			if err := c.Records.DeleteByEventID(ctx, rec.EventID); err != nil && err != recordsRepo.ErrNotFound {
				utils.GetLogger().Warn("failed to prune stale booking record",
					zap.String("eventID", rec.EventID), zap.Error(err))
			}
			continue
		}
		if upcoming == nil || rec.Start.Before(upcoming.Start) {
			upcoming = &rec
		}
	}
	return upcoming, nil
}
