// File: services/calendar/google.go
package calendar

import (
	"context"
	"fmt"
	"time"

	"clipbook/config"
	"clipbook/models"
	"clipbook/utils"

	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendarService talks to the Google Calendar API with service
// account credentials. A missing credentials file disables the backend
// instead of failing startup; reads then report no availability and writes
// report a calendar error.
type GoogleCalendarService struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
}

func NewGoogleCalendarService() *GoogleCalendarService {
	logger := utils.GetLogger()
	g := &GoogleCalendarService{
		calendarID: config.AppConfig.GoogleCalendarID,
		timezone:   config.AppConfig.TimeZone,
	}

	ctx := context.Background()
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(config.AppConfig.GoogleCredentialsPath),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		logger.Warn("Google Calendar service not initialized, calendar features disabled",
			zap.String("credentialsPath", config.AppConfig.GoogleCredentialsPath),
			zap.Error(err))
		return g
	}

	g.svc = svc
	logger.Info("Google Calendar service initialized", zap.String("calendarID", g.calendarID))
	return g
}

func (g *GoogleCalendarService) BusyIntervals(ctx context.Context, rangeStart, rangeEnd time.Time) ([]models.BusyInterval, error) {
	logger := utils.GetLogger()
	if g.svc == nil {
		logger.Warn("calendar backend not initialized, returning no busy intervals")
		return nil, nil
	}

	res, err := g.svc.Events.List(g.calendarID).
		TimeMin(rangeStart.Format(time.RFC3339)).
		TimeMax(rangeEnd.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		logger.Error("failed to list calendar events", zap.Error(err))
		return nil, fmt.Errorf("list events: %w", err)
	}

	intervals := make([]models.BusyInterval, 0, len(res.Items))
	for _, ev := range res.Items {
		start, okStart := g.parseEventTime(ev.Start)
		end, okEnd := g.parseEventTime(ev.End)
		if !okStart || !okEnd {
			logger.Warn("skipping calendar event with unparseable times", zap.String("eventID", ev.Id))
			continue
		}
		intervals = append(intervals, models.BusyInterval{Start: start, End: end})
	}
	return intervals, nil
}

func (g *GoogleCalendarService) CreateEvent(ctx context.Context, req EventRequest) (string, error) {
	logger := utils.GetLogger()
	if g.svc == nil {
		return "", fmt.Errorf("calendar backend not initialized")
	}

	end := req.Start.Add(req.Duration)
	event := &gcal.Event{
		Summary:     fmt.Sprintf("%s - %s", req.ServiceType, req.CustomerName),
		Description: fmt.Sprintf("Customer: %s\nContact: @%s\nService: %s", req.CustomerName, req.CustomerContact, req.ServiceType),
		Start: &gcal.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "popup", Minutes: 60},
				{Method: "popup", Minutes: 30},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		logger.Error("failed to create calendar event", zap.Error(err))
		return "", fmt.Errorf("insert event: %w", err)
	}

	logger.Info("appointment created", zap.String("eventID", created.Id), zap.String("link", created.HtmlLink))
	return created.Id, nil
}

func (g *GoogleCalendarService) DeleteEvent(ctx context.Context, eventID string) error {
	logger := utils.GetLogger()
	if g.svc == nil {
		return fmt.Errorf("calendar backend not initialized")
	}

	if err := g.svc.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		logger.Error("failed to delete calendar event", zap.String("eventID", eventID), zap.Error(err))
		return fmt.Errorf("delete event: %w", err)
	}
	logger.Info("appointment cancelled", zap.String("eventID", eventID))
	return nil
}

func (g *GoogleCalendarService) GetEvent(ctx context.Context, eventID string) (*models.BusyInterval, error) {
	if g.svc == nil {
		return nil, fmt.Errorf("calendar backend not initialized")
	}

	ev, err := g.svc.Events.Get(g.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	start, okStart := g.parseEventTime(ev.Start)
	end, okEnd := g.parseEventTime(ev.End)
	if !okStart || !okEnd {
		return nil, fmt.Errorf("event %s has unparseable times", eventID)
	}
	return &models.BusyInterval{Start: start, End: end}, nil
}

// parseEventTime handles both timed events (DateTime) and all-day events
// (Date), which block the whole day.
func (g *GoogleCalendarService) parseEventTime(edt *gcal.EventDateTime) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	if edt.Date != "" {
		loc, err := time.LoadLocation(g.timezone)
		if err != nil {
			loc = time.UTC
		}
		t, err := time.ParseInLocation("2006-01-02", edt.Date, loc)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}
