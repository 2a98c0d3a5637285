package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Investor struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID           bson.ObjectID `bson:"userId" json:"userId"`
	FullName         string        `bson:"fullName" json:"fullName"`
	Firm             string        `bson:"firm,omitempty" json:"firm,omitempty"`
	Sectors          []string      `bson:"sectors,omitempty" json:"sectors,omitempty"`
	PreferredSectors []string      `bson:"preferredSectors,omitempty" json:"preferredSectors,omitempty"`
	TicketSize       string        `bson:"ticketSize,omitempty" json:"ticketSize,omitempty"`
	Bio              string        `bson:"bio,omitempty" json:"bio,omitempty"`
	Location         string        `bson:"location,omitempty" json:"location,omitempty"`
	Website          string        `bson:"website,omitempty" json:"website,omitempty"`
	Phone            string        `bson:"phone,omitempty" json:"phone,omitempty"`
	SocialLinks      SocialLinks   `bson:"socialLinks" json:"socialLinks"`
	ProfilePicture   string        `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	CoverImage       string        `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// FocusSectors returns preferredSectors, falling back to sectors.
func (i *Investor) FocusSectors() []string {
	if len(i.PreferredSectors) > 0 {
		return i.PreferredSectors
	}
	return i.Sectors
}

// InvestorSummary is the projection embedded into a startup's connection
// views. The owning user carries the contact e-mail.
type InvestorSummary struct {
	ID               bson.ObjectID `bson:"_id" json:"_id"`
	FullName         string        `bson:"fullName" json:"fullName"`
	Firm             string        `bson:"firm,omitempty" json:"firm,omitempty"`
	Sectors          []string      `bson:"sectors,omitempty" json:"sectors,omitempty"`
	PreferredSectors []string      `bson:"preferredSectors,omitempty" json:"preferredSectors,omitempty"`
	Bio              string        `bson:"bio,omitempty" json:"bio,omitempty"`
	Location         string        `bson:"location,omitempty" json:"location,omitempty"`
	ProfilePicture   string        `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	User             *UserSummary  `bson:"user,omitempty" json:"userId,omitempty"`
}
