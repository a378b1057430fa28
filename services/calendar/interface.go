package calendar

import (
	"context"
	"time"

	"clipbook/models"
)

// EventRequest describes the appointment to place on the calendar.
type EventRequest struct {
	CustomerName    string
	CustomerContact string
	Start           time.Time
	Duration        time.Duration
	ServiceType     string
}

// CalendarService is the remote calendar collaborator: a source of busy
// intervals and an event-ID-returning append log.
type CalendarService interface {
	// BusyIntervals returns occupied ranges inside [rangeStart, rangeEnd),
	// ordered by start. Backend unavailability yields an empty list and an
	// error; callers fail open to "no availability".
	BusyIntervals(ctx context.Context, rangeStart, rangeEnd time.Time) ([]models.BusyInterval, error)

	// CreateEvent writes the appointment and returns the remote event id.
	CreateEvent(ctx context.Context, req EventRequest) (string, error)

	// DeleteEvent removes a previously created event.
	DeleteEvent(ctx context.Context, eventID string) error

	// GetEvent fetches one event's busy range, for cancellation lookups.
	GetEvent(ctx context.Context, eventID string) (*models.BusyInterval, error)
}
