package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"investmate-backend/internal/database"
	"investmate-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type InvestorRepo struct {
	collection *mongo.Collection
}

func NewInvestorRepo() *InvestorRepo {
	return &InvestorRepo{
		collection: database.GetCollection("investors"),
	}
}

func (r *InvestorRepo) Create(ctx context.Context, investor *models.Investor) error {
	investor.CreatedAt = time.Now()
	investor.UpdatedAt = investor.CreatedAt
	result, err := r.collection.InsertOne(ctx, investor)
	if err != nil {
		return wrapWriteErr(err)
	}
	investor.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *InvestorRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Investor, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *InvestorRepo) FindByUserID(ctx context.Context, userID bson.ObjectID) (*models.Investor, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

func (r *InvestorRepo) findOne(ctx context.Context, filter bson.M) (*models.Investor, error) {
	var investor models.Investor
	err := r.collection.FindOne(ctx, filter).Decode(&investor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &investor, nil
}

func (r *InvestorRepo) UpdateByUserID(ctx context.Context, userID bson.ObjectID, fields bson.M) (*models.Investor, error) {
	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	var investor models.Investor
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&investor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &investor, nil
}

// FindBySector returns up to limit investors with sector appearing inside
// any of their preferred or declared sectors, ignoring case.
func (r *InvestorRepo) FindBySector(ctx context.Context, sector string, limit int64) ([]models.Investor, error) {
	sector = strings.TrimSpace(sector)
	if sector == "" {
		return []models.Investor{}, nil
	}
	re := bson.Regex{Pattern: regexp.QuoteMeta(sector), Options: "i"}
	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{"preferredSectors": re},
		bson.M{"sectors": re},
	}}, limit)
}

func (r *InvestorRepo) FindAny(ctx context.Context, limit int64) ([]models.Investor, error) {
	return r.find(ctx, bson.M{}, limit)
}

func (r *InvestorRepo) find(ctx context.Context, filter bson.M, limit int64) ([]models.Investor, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	investors := []models.Investor{}
	if err := cursor.All(ctx, &investors); err != nil {
		return nil, err
	}
	return investors, nil
}

// EnsureIndexes creates necessary indexes for the investors collection
func (r *InvestorRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "preferredSectors", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
