package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lilo/pkg/config"
	mongotx "lilo/pkg/db/mongo"
	"lilo/pkg/model"
)

const CollectionName = "Email_logs"

type EmailLogRepository interface {
	Create(ctx context.Context, entry *model.EmailLog) error
	// WasSent reports whether emailType already went out successfully for eventID.
	WasSent(ctx context.Context, eventID, emailType string) (bool, error)
}

type mongoEmailLogRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEmailLogRepository(cfg *config.Config) EmailLogRepository {
	return &mongoEmailLogRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoEmailLogRepository) Create(ctx context.Context, entry *model.EmailLog) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	entry.ID = ""
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create email log: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoEmailLogRepository) WasSent(ctx context.Context, eventID, emailType string) (bool, error) {
	if eventID == "" {
		return false, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"event_id":   eventID,
		"email_type": emailType,
		"status":     model.EmailStatusSent,
	}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check email log: %w", err)
	}
	return n > 0, nil
}
