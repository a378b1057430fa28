package models

import "time"

// ReminderPayload is the task body queued for pre-appointment reminder DMs.
type ReminderPayload struct {
	SubjectID    string    `json:"subjectId"`
	CustomerName string    `json:"customerName"`
	Start        time.Time `json:"start"`
	EventID      string    `json:"eventId"`
}
