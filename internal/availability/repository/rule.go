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

const RulesCollectionName = "Availability_rules"

type RuleRepository interface {
	Create(ctx context.Context, rule *model.AvailabilityRule) error
	FindByID(ctx context.Context, id string) (*model.AvailabilityRule, error)
	FindAll(ctx context.Context) ([]*model.AvailabilityRule, error)
	// FindAvailableByWeekday returns only is_available rules for day.
	FindAvailableByWeekday(ctx context.Context, day model.Weekday) ([]*model.AvailabilityRule, error)
	Update(ctx context.Context, rule *model.AvailabilityRule) error
	Delete(ctx context.Context, id string) error
}

type mongoRuleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRuleRepository(cfg *config.Config) RuleRepository {
	return &mongoRuleRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(RulesCollectionName),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return oid, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoRuleRepository) Create(ctx context.Context, rule *model.AvailabilityRule) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	rule.ID = ""
	rule.CreatedAt = now
	rule.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return fmt.Errorf("failed to create availability rule: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rule.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRuleRepository) FindByID(ctx context.Context, id string) (*model.AvailabilityRule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var rule model.AvailabilityRule
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&rule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availabilityerrors.ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to find availability rule: %w", err)
	}
	return &rule, nil
}

func (r *mongoRuleRepository) FindAll(ctx context.Context) ([]*model.AvailabilityRule, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoRuleRepository) FindAvailableByWeekday(ctx context.Context, day model.Weekday) ([]*model.AvailabilityRule, error) {
	return r.find(ctx, bson.M{"day_of_week": day, "is_available": true})
}

func (r *mongoRuleRepository) find(ctx context.Context, filter bson.M) ([]*model.AvailabilityRule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "day_of_week", Value: 1}, {Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find availability rules: %w", err)
	}
	defer cursor.Close(ctx)

	rules := []*model.AvailabilityRule{}
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode availability rules: %w", err)
	}
	return rules, nil
}

func (r *mongoRuleRepository) Update(ctx context.Context, rule *model.AvailabilityRule) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(rule.ID)
	if err != nil {
		return err
	}

	rule.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"day_of_week":  rule.DayOfWeek,
		"start_time":   rule.StartTime,
		"end_time":     rule.EndTime,
		"is_available": rule.IsAvailable,
		"updated_at":   rule.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if rule.SlotDurationMinutes != nil {
		set["slot_duration_minutes"] = *rule.SlotDurationMinutes
	} else {
		update["$unset"] = bson.M{"slot_duration_minutes": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update availability rule: %w", err)
	}
	if result.MatchedCount == 0 {
		return availabilityerrors.ErrRuleNotFound
	}
	return nil
}

func (r *mongoRuleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete availability rule: %w", err)
	}
	if result.DeletedCount == 0 {
		return availabilityerrors.ErrRuleNotFound
	}
	return nil
}
