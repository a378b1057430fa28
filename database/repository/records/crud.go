package recordsRepo

import (
	"context"
	"errors"
	"time"

	"clipbook/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Insert stores the booking echo.
func (r *mongoRecordRepo) Insert(ctx context.Context, rec models.BookingRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.coll.InsertOne(ctx, rec)
	return err
}

// GetByEventID returns the record for a remote calendar event id, or
// ErrNotFound when the booking was cancelled (the cancel path deletes the
// echo).
func (r *mongoRecordRepo) GetByEventID(ctx context.Context, eventID string) (*models.BookingRecord, error) {
	var rec models.BookingRecord
	err := r.coll.FindOne(ctx, bson.M{"eventId": eventID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListBySubject fetches a subject's bookings, most recent first.
func (r *mongoRecordRepo) ListBySubject(ctx context.Context, subjectID string) ([]models.BookingRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"subjectId": subjectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recs []models.BookingRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// DeleteByEventID removes the record after a cancellation.
func (r *mongoRecordRepo) DeleteByEventID(ctx context.Context, eventID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"eventId": eventID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ErrNotFound reports a missing record.
var ErrNotFound = errors.New("booking record not found")
