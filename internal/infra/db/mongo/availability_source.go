package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "rentcar/internal/domain/availability"
	"rentcar/internal/domain/shared/daterange"
)

const bookingCollection = "agg_booking"

// blockingStatuses lists the booking states that keep a vehicle off the road.
// Cancelled and completed bookings never leave this collection through the source.
var blockingStatuses = []string{
	string(domainavailability.StatusPending),
	string(domainavailability.StatusConfirmed),
	string(domainavailability.StatusActive),
}

// AvailabilitySource reads existing bookings straight from the booking aggregate
// collection. Each call runs a fresh query.
type AvailabilitySource struct {
	col *mongo.Collection
}

func NewAvailabilitySource(db *mongo.Database) *AvailabilitySource {
	return &AvailabilitySource{col: db.Collection(bookingCollection)}
}

// EnsureIndexes creates the listing/status index the availability query relies on.
func (s *AvailabilitySource) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "status", Value: 1}}}
	_, err := s.col.Indexes().CreateOne(ctx, idx)
	return err
}

func (s *AvailabilitySource) UnavailableDates(ctx context.Context, listingID string) ([]domainavailability.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.start", Value: 1}})
	cur, err := s.col.Find(ctx, unavailableFilter(listingID), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find bookings of %s: %w", listingID, err)
	}
	defer cur.Close(ctx)

	var bookings []domainavailability.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		bookings = append(bookings, doc.toBooking())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// Save upserts a booking document. It is used to seed local fixtures.
func (s *AvailabilitySource) Save(ctx context.Context, id, listingID string, b domainavailability.Booking) error {
	if id == "" || listingID == "" {
		return errors.New("mongo: booking id and listing id are required")
	}
	doc := newBookingDocument(id, listingID, b)
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func unavailableFilter(listingID string) bson.M {
	return bson.M{
		"listing_id": listingID,
		"status":     bson.M{"$in": blockingStatuses},
	}
}

type bookingDocument struct {
	ID        string        `bson:"_id"`
	ListingID string        `bson:"listing_id"`
	Range     rangeDocument `bson:"range"`
	Status    string        `bson:"status"`
	UpdatedAt int64         `bson:"updated_at"`
}

// rangeDocument holds both ends as UTC midnight in unix millis, end included.
type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newBookingDocument(id, listingID string, b domainavailability.Booking) bookingDocument {
	return bookingDocument{
		ID:        id,
		ListingID: listingID,
		Range: rangeDocument{
			Start: daterange.Day(b.StartDate).UnixMilli(),
			End:   daterange.Day(b.EndDate).UnixMilli(),
		},
		Status:    strings.ToUpper(string(b.Status)),
		UpdatedAt: time.Now().UTC().UnixMilli(),
	}
}

func (d bookingDocument) toBooking() domainavailability.Booking {
	return domainavailability.Booking{
		StartDate: timestampToDay(d.Range.Start),
		EndDate:   timestampToDay(d.Range.End),
		Status:    domainavailability.Status(d.Status),
	}
}

func timestampToDay(ms int64) time.Time {
	return daterange.Day(time.UnixMilli(ms).UTC())
}

var _ domainavailability.Source = (*AvailabilitySource)(nil)
