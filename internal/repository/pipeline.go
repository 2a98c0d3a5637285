package repository

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// privateUserFields are dropped from every joined user document.
var privateUserFields = []string{"password", "role", "createdAt", "updatedAt"}

var newestFirst = bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}}

func lookup(from, localField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: as},
	}}}
}

// hideUserFields projects the private fields out of the user joined at path.
func hideUserFields(path string) bson.D {
	project := bson.D{}
	for _, f := range privateUserFields {
		project = append(project, bson.E{Key: path + "." + f, Value: 0})
	}
	return bson.D{{Key: "$project", Value: project}}
}

// startupListPipeline matches, sorts newest first and joins the owning user.
// The plain $unwind drops startups whose user no longer exists.
func startupListPipeline(f StartupFilter) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: BuildStartupFilter(f)}},
		newestFirst,
		lookup("users", "userId", "user"),
		{{Key: "$unwind", Value: "$user"}},
		hideUserFields("user"),
	}
}

// investorConnectionsPipeline lists an investor's connections with the
// startup populated. A deleted startup leaves the connection with no startup.
func investorConnectionsPipeline(investorID bson.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"investorId": investorID}}},
		newestFirst,
		lookup("startups", "startupId", "startup"),
		keepUnmatched("$startup"),
	}
}

// startupConnectionsPipeline lists connections made to a startup with the
// investor populated, and the investor's user joined inside it.
func startupConnectionsPipeline(startupID bson.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"startupId": startupID}}},
		newestFirst,
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "investors"},
			{Key: "localField", Value: "investorId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: mongo.Pipeline{
				lookup("users", "userId", "user"),
				keepUnmatched("$user"),
				hideUserFields("user"),
			}},
			{Key: "as", Value: "investor"},
		}}},
		keepUnmatched("$investor"),
	}
}

func keepUnmatched(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: path},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}}
}
