package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionRejected = "rejected"
)

// Connection is an investor's expressed interest in a startup.
// Both ids point at profile documents, not users.
type Connection struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	InvestorID bson.ObjectID `bson:"investorId" json:"investorId"`
	StartupID  bson.ObjectID `bson:"startupId" json:"startupId"`
	Status     string        `bson:"status" json:"status"`
	Message    string        `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// CanTransitionTo reports whether the startup side may move the connection to status.
func (c *Connection) CanTransitionTo(status string) bool {
	if c.Status != ConnectionPending {
		return false
	}
	return status == ConnectionAccepted || status == ConnectionRejected
}

// ConnectionView is a connection with the counterpart profile populated.
// Exactly one of Startup / Investor is set, depending on who is asking.
type ConnectionView struct {
	ID        bson.ObjectID    `bson:"_id" json:"_id"`
	Status    string           `bson:"status" json:"status"`
	Message   string           `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time        `bson:"updatedAt" json:"updatedAt"`
	Startup   *StartupSummary  `bson:"startup,omitempty" json:"startupId,omitempty"`
	Investor  *InvestorSummary `bson:"investor,omitempty" json:"investorId,omitempty"`
}
