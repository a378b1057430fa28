package models

import "time"

// BookingRecord is the local echo of a committed appointment. The remote
// calendar is the system of record; this exists to render replies and to
// feed the optional record log.
type BookingRecord struct {
	ID           string        `bson:"id" json:"id"`
	SubjectID    string        `bson:"subjectId" json:"subjectId"`
	CustomerName string        `bson:"customerName" json:"customerName"`
	Start        time.Time     `bson:"start" json:"start"`
	Duration     time.Duration `bson:"duration" json:"duration"`
	ServiceType  string        `bson:"serviceType" json:"serviceType"`
	EventID      string        `bson:"eventId" json:"eventId"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
}
