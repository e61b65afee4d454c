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

	availabilityerrors "lilo/internal/availability/errors"
	"lilo/pkg/config"
	mongotx "lilo/pkg/db/mongo"
	"lilo/pkg/model"
)

const BlockedDatesCollectionName = "Blocked_dates"

type BlockedDateRepository interface {
	// Create fails with ErrDateAlreadyBlocked when the date already has a row.
	Create(ctx context.Context, blocked *model.BlockedDate) error
	FindByID(ctx context.Context, id string) (*model.BlockedDate, error)
	// FindFrom lists blocked dates on or after from (YYYY-MM-DD), ascending. Empty from lists all.
	FindFrom(ctx context.Context, from string) ([]*model.BlockedDate, error)
	IsBlocked(ctx context.Context, date string) (bool, error)
	Delete(ctx context.Context, id string) (*model.BlockedDate, error)
}

type mongoBlockedDateRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBlockedDateRepository(cfg *config.Config) BlockedDateRepository {
	return &mongoBlockedDateRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(BlockedDatesCollectionName),
	}
}

func (r *mongoBlockedDateRepository) Create(ctx context.Context, blocked *model.BlockedDate) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	blocked.ID = ""
	blocked.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, blocked)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return availabilityerrors.ErrDateAlreadyBlocked
		}
		return fmt.Errorf("failed to block date: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		blocked.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBlockedDateRepository) FindByID(ctx context.Context, id string) (*model.BlockedDate, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var blocked model.BlockedDate
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&blocked); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availabilityerrors.ErrBlockedDateNotFound
		}
		return nil, fmt.Errorf("failed to find blocked date: %w", err)
	}
	return &blocked, nil
}

func (r *mongoBlockedDateRepository) FindFrom(ctx context.Context, from string) ([]*model.BlockedDate, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if from != "" {
		// YYYY-MM-DD sorts lexically in calendar order.
		filter["date"] = bson.M{"$gte": from}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked dates: %w", err)
	}
	defer cursor.Close(ctx)

	dates := []*model.BlockedDate{}
	if err := cursor.All(ctx, &dates); err != nil {
		return nil, fmt.Errorf("failed to decode blocked dates: %w", err)
	}
	return dates, nil
}

func (r *mongoBlockedDateRepository) IsBlocked(ctx context.Context, date string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"date": date}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check blocked date: %w", err)
	}
	return n > 0, nil
}

func (r *mongoBlockedDateRepository) Delete(ctx context.Context, id string) (*model.BlockedDate, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var removed model.BlockedDate
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&removed); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availabilityerrors.ErrBlockedDateNotFound
		}
		return nil, fmt.Errorf("failed to unblock date: %w", err)
	}
	return &removed, nil
}
