package repository

import (
	"context"
	"errors"
	"time"

	"investmate-backend/internal/database"
	"investmate-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type StartupRepo struct {
	collection *mongo.Collection
}

func NewStartupRepo() *StartupRepo {
	return &StartupRepo{
		collection: database.GetCollection("startups"),
	}
}

func (r *StartupRepo) Create(ctx context.Context, startup *models.Startup) error {
	startup.CreatedAt = time.Now()
	startup.UpdatedAt = startup.CreatedAt
	result, err := r.collection.InsertOne(ctx, startup)
	if err != nil {
		return wrapWriteErr(err)
	}
	startup.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *StartupRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Startup, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *StartupRepo) FindByUserID(ctx context.Context, userID bson.ObjectID) (*models.Startup, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

func (r *StartupRepo) findOne(ctx context.Context, filter bson.M) (*models.Startup, error) {
	var startup models.Startup
	err := r.collection.FindOne(ctx, filter).Decode(&startup)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &startup, nil
}

// UpdateByUserID applies a partial $set to the user's startup and returns the
// document after the update, or nil if the user has no startup.
func (r *StartupRepo) UpdateByUserID(ctx context.Context, userID bson.ObjectID, fields bson.M) (*models.Startup, error) {
	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	var startup models.Startup
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&startup)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &startup, nil
}

// List returns startups matching filter, newest first, with the owning user
// joined in. Startups whose user no longer exists are dropped by the $unwind.
func (r *StartupRepo) List(ctx context.Context, filter StartupFilter) ([]models.StartupListing, error) {
	cursor, err := r.collection.Aggregate(ctx, startupListPipeline(filter))
	if err != nil {
		return nil, err
	}
	listings := []models.StartupListing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// FindByIndustries returns up to limit startups whose industry equals one of
// industries, ignoring case.
func (r *StartupRepo) FindByIndustries(ctx context.Context, industries []string, limit int64) ([]models.Startup, error) {
	patterns := anyOfFold(industries)
	if len(patterns) == 0 {
		return []models.Startup{}, nil
	}
	return r.find(ctx, bson.M{"industry": bson.M{"$in": patterns}}, limit)
}

// FindAny returns up to limit startups, newest first.
func (r *StartupRepo) FindAny(ctx context.Context, limit int64) ([]models.Startup, error) {
	return r.find(ctx, bson.M{}, limit)
}

func (r *StartupRepo) find(ctx context.Context, filter bson.M, limit int64) ([]models.Startup, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	startups := []models.Startup{}
	if err := cursor.All(ctx, &startups); err != nil {
		return nil, err
	}
	return startups, nil
}

// EnsureIndexes creates necessary indexes for the startups collection
func (r *StartupRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "industry", Value: 1}, {Key: "stage", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
