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

type ConnectionRepo struct {
	collection *mongo.Collection
}

func NewConnectionRepo() *ConnectionRepo {
	return &ConnectionRepo{
		collection: database.GetCollection("connections"),
	}
}

// Create inserts a connection. A second connection between the same investor
// and startup yields ErrDuplicate.
func (r *ConnectionRepo) Create(ctx context.Context, conn *models.Connection) error {
	conn.CreatedAt = time.Now()
	conn.UpdatedAt = conn.CreatedAt
	result, err := r.collection.InsertOne(ctx, conn)
	if err != nil {
		return wrapWriteErr(err)
	}
	conn.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *ConnectionRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Connection, error) {
	var conn models.Connection
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// UpdateStatus moves a connection from fromStatus to toStatus. The status is
// part of the filter, so a concurrent transition makes this return nil.
func (r *ConnectionRepo) UpdateStatus(ctx context.Context, id bson.ObjectID, fromStatus, toStatus string) (*models.Connection, error) {
	var conn models.Connection
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": fromStatus},
		bson.M{"$set": bson.M{"status": toStatus, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&conn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// ListForInvestor returns the investor's connections with the startup populated.
func (r *ConnectionRepo) ListForInvestor(ctx context.Context, investorID bson.ObjectID) ([]models.ConnectionView, error) {
	return r.list(ctx, investorConnectionsPipeline(investorID))
}

// ListForStartup returns connections made to the startup with the investor
// and the investor's user populated.
func (r *ConnectionRepo) ListForStartup(ctx context.Context, startupID bson.ObjectID) ([]models.ConnectionView, error) {
	return r.list(ctx, startupConnectionsPipeline(startupID))
}

func (r *ConnectionRepo) list(ctx context.Context, pipeline mongo.Pipeline) ([]models.ConnectionView, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	views := []models.ConnectionView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// EnsureIndexes creates necessary indexes for the connections collection
func (r *ConnectionRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "investorId", Value: 1}, {Key: "startupId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "startupId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
