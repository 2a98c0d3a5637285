package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const DefaultAvatar = "/default-avatar.png"

type SocialLinks struct {
	LinkedIn string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Twitter  string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Other    string `bson:"other,omitempty" json:"other,omitempty"`
}

type Startup struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID         bson.ObjectID `bson:"userId" json:"userId"`
	StartupName    string        `bson:"startupName" json:"startupName"`
	Tagline        string        `bson:"tagline" json:"tagline"`
	FounderName    string        `bson:"founderName" json:"founderName"`
	Industry       string        `bson:"industry,omitempty" json:"industry,omitempty"`
	Stage          string        `bson:"stage,omitempty" json:"stage,omitempty"`
	Location       string        `bson:"location,omitempty" json:"location,omitempty"`
	Problem        string        `bson:"problem" json:"problem"`
	Solution       string        `bson:"solution" json:"solution"`
	Traction       string        `bson:"traction,omitempty" json:"traction,omitempty"`
	Funding        string        `bson:"funding,omitempty" json:"funding,omitempty"`
	FundingNeeded  string        `bson:"fundingNeeded,omitempty" json:"fundingNeeded,omitempty"`
	FundUsage      string        `bson:"fundUsage,omitempty" json:"fundUsage,omitempty"`
	PrevFunding    string        `bson:"prevFunding,omitempty" json:"prevFunding,omitempty"`
	TechStack      string        `bson:"techStack,omitempty" json:"techStack,omitempty"`
	ValueProp      string        `bson:"valueProp,omitempty" json:"valueProp,omitempty"`
	Market         string        `bson:"market,omitempty" json:"market,omitempty"`
	RevenueModel   string        `bson:"revenueModel,omitempty" json:"revenueModel,omitempty"`
	Website        string        `bson:"website,omitempty" json:"website,omitempty"`
	Phone          string        `bson:"phone,omitempty" json:"phone,omitempty"`
	TeamSize       string        `bson:"teamSize,omitempty" json:"teamSize,omitempty"`
	SocialLinks    SocialLinks   `bson:"socialLinks" json:"socialLinks"`
	ProfilePicture string        `bson:"profilePicture,omitempty" json:"profilePicture"`
	CoverImage     string        `bson:"coverImage,omitempty" json:"coverImage"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// StartupListing is a startup row with its owning user joined in.
// The user replaces the bare userId in the JSON form.
type StartupListing struct {
	Startup `bson:",inline"`
	User    *UserSummary `bson:"user" json:"userId"`
}

// ApplyListingDefaults fills the image fields the dashboard expects to be set.
func (s *StartupListing) ApplyListingDefaults() {
	if s.ProfilePicture == "" {
		s.ProfilePicture = DefaultAvatar
	}
}

// StartupSummary is the projection embedded into connection views.
type StartupSummary struct {
	ID             bson.ObjectID `bson:"_id" json:"_id"`
	StartupName    string        `bson:"startupName" json:"startupName"`
	Tagline        string        `bson:"tagline" json:"tagline"`
	Industry       string        `bson:"industry,omitempty" json:"industry,omitempty"`
	Stage          string        `bson:"stage,omitempty" json:"stage,omitempty"`
	Location       string        `bson:"location,omitempty" json:"location,omitempty"`
	ProfilePicture string        `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
}
