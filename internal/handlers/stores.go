package handlers

import (
	"context"

	"investmate-backend/internal/models"
	"investmate-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// The handlers depend on these narrow views of the repositories so tests can
// run against in-memory stores.

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id bson.ObjectID, hash string) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

type StartupStore interface {
	Create(ctx context.Context, startup *models.Startup) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Startup, error)
	FindByUserID(ctx context.Context, userID bson.ObjectID) (*models.Startup, error)
	UpdateByUserID(ctx context.Context, userID bson.ObjectID, fields bson.M) (*models.Startup, error)
	List(ctx context.Context, filter repository.StartupFilter) ([]models.StartupListing, error)
}

type InvestorStore interface {
	Create(ctx context.Context, investor *models.Investor) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Investor, error)
	FindByUserID(ctx context.Context, userID bson.ObjectID) (*models.Investor, error)
	UpdateByUserID(ctx context.Context, userID bson.ObjectID, fields bson.M) (*models.Investor, error)
}

type ConnectionStore interface {
	Create(ctx context.Context, conn *models.Connection) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Connection, error)
	UpdateStatus(ctx context.Context, id bson.ObjectID, fromStatus, toStatus string) (*models.Connection, error)
	ListForInvestor(ctx context.Context, investorID bson.ObjectID) ([]models.ConnectionView, error)
	ListForStartup(ctx context.Context, startupID bson.ObjectID) ([]models.ConnectionView, error)
}

var (
	_ UserStore       = (*repository.UserRepo)(nil)
	_ StartupStore    = (*repository.StartupRepo)(nil)
	_ InvestorStore   = (*repository.InvestorRepo)(nil)
	_ ConnectionStore = (*repository.ConnectionRepo)(nil)
)
