package bookinglogRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"slotify/database"
	"slotify/models"
)

// BookingLogRepository archives completed bookings. The archive is an audit
// trail, not the source of truth; the calendar event is.
type BookingLogRepository interface {
	Save(ctx context.Context, rec models.BookingRecord) error
	Recent(ctx context.Context, limit int) ([]models.BookingRecord, error)
}

type mongoBookingLogRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingLogRepo constructs a MongoDB-backed BookingLogRepository.
func NewMongoBookingLogRepo() BookingLogRepository {
	db := database.MongoClient.Database("slotify")
	return &mongoBookingLogRepo{
		coll: db.Collection("bookings"),
	}
}
