package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingserrors "lilo/internal/bookings/errors"
	"lilo/pkg/config"
	mongotx "lilo/pkg/db/mongo"
	"lilo/pkg/model"
)

const (
	CollectionName           = "Bookings"
	SlotClaimsCollectionName = "Slot_claims"
)

type BookingRepository interface {
	// Create stores booking and its slot claim in one transaction.
	// It fails with ErrSlotTaken when a live booking holds the slot.
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	FindOccupiedTimes(ctx context.Context, date string) ([]string, error)
	// UpdateStatus writes booking's status fields only if the stored status is still from.
	// Moving to cancelled releases the slot claim in the same transaction.
	UpdateStatus(ctx context.Context, booking *model.Booking, from model.BookingStatus) error
	// Delete purges the booking and releases its slot claim.
	Delete(ctx context.Context, id string) (*model.Booking, error)
	CountByStatus(ctx context.Context) ([]model.StatusCount, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	claims     *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		claims:     db.Collection(SlotClaimsCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return oid, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.ID = ""
	booking.CreatedAt = now
	booking.UpdatedAt = now

	var inserted string
	err := r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := r.collection.InsertOne(sessCtx, booking)
		if err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		oid, ok := result.InsertedID.(primitive.ObjectID)
		if !ok {
			return fmt.Errorf("unexpected booking id type %T", result.InsertedID)
		}

		claim := model.SlotClaim{
			ID:        model.SlotKey(booking.RequestedDate, booking.RequestedTime),
			BookingID: oid.Hex(),
			Date:      booking.RequestedDate,
			Time:      booking.RequestedTime,
			CreatedAt: now,
		}
		if _, err := r.claims.InsertOne(sessCtx, claim); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return bookingserrors.ErrSlotTaken
			}
			return fmt.Errorf("failed to claim slot: %w", err)
		}

		inserted = oid.Hex()
		return nil
	})
	if err != nil {
		return err
	}

	booking.ID = inserted
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var booking model.Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func buildFilter(filter model.BookingFilter) bson.M {
	f := bson.M{}
	if filter.Status != "" {
		f["status"] = filter.Status
	}
	if filter.Date != "" {
		f["requested_date"] = filter.Date
	}
	return f
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) FindOccupiedTimes(ctx context.Context, date string) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"requested_date": date,
		"status":         bson.M{"$ne": model.StatusCancelled},
	}
	values, err := r.collection.Distinct(ctx, "requested_time", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupied times: %w", err)
	}

	times := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			times = append(times, s)
		}
	}
	return times, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, booking *model.Booking, from model.BookingStatus) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(booking.ID)
	if err != nil {
		return err
	}

	booking.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"status":              booking.Status,
			"admin_notes":         booking.AdminNotes,
			"cancellation_reason": booking.CancellationReason,
			"confirmed_at":        booking.ConfirmedAt,
			"completed_at":        booking.CompletedAt,
			"cancelled_at":        booking.CancelledAt,
			"updated_at":          booking.UpdatedAt,
		},
	}

	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := r.collection.UpdateOne(sessCtx, bson.M{"_id": oid, "status": from}, update)
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		if result.MatchedCount == 0 {
			n, err := r.collection.CountDocuments(sessCtx, bson.M{"_id": oid})
			if err != nil {
				return fmt.Errorf("failed to update booking status: %w", err)
			}
			if n == 0 {
				return bookingserrors.ErrNotFound
			}
			return bookingserrors.ErrStatusChanged
		}

		if booking.Status.Occupies() {
			return nil
		}
		return r.releaseClaim(sessCtx, booking)
	})
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var deleted model.Booking
	err = r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := r.collection.FindOneAndDelete(sessCtx, bson.M{"_id": oid}).Decode(&deleted); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return bookingserrors.ErrNotFound
			}
			return fmt.Errorf("failed to delete booking: %w", err)
		}
		return r.releaseClaim(sessCtx, &deleted)
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// releaseClaim only removes the claim if it still belongs to booking.
func (r *mongoBookingRepository) releaseClaim(ctx context.Context, booking *model.Booking) error {
	filter := bson.M{
		"_id":        model.SlotKey(booking.RequestedDate, booking.RequestedTime),
		"booking_id": booking.ID,
	}
	if _, err := r.claims.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to release slot claim: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) CountByStatus(ctx context.Context) ([]model.StatusCount, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking statuses: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []model.StatusCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}
	return counts, nil
}
