package recordsRepo

import (
	"context"

	"clipbook/database"
	"clipbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRecordRepository is the local log of committed bookings. The
// remote calendar remains the system of record; this log only backs reply
// rendering and bookkeeping queries.
type BookingRecordRepository interface {
	Insert(ctx context.Context, rec models.BookingRecord) error
	GetByEventID(ctx context.Context, eventID string) (*models.BookingRecord, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.BookingRecord, error)
	DeleteByEventID(ctx context.Context, eventID string) error
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a BookingRecordRepository backed by MongoDB,
// or nil when the Mongo client is not initialized.
func NewMongoRecordRepo() BookingRecordRepository {
	if database.MongoClient == nil {
		return nil
	}
	db := database.MongoClient.Database("clipbook")
	return &mongoRecordRepo{
		coll: db.Collection("booking_records"),
	}
}
