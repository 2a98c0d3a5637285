package repository

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// StartupFilter holds the listing query-string filters.
type StartupFilter struct {
	Industry string
	Stage    string
	Location string
	Search   string
}

// BuildStartupFilter turns the listing filters into a conjunctive Mongo
// filter. Industry and stage match exactly and "all" disables them; location
// and search are case-insensitive substring matches on quoted input.
func BuildStartupFilter(f StartupFilter) bson.M {
	filter := bson.M{}
	if v := strings.TrimSpace(f.Industry); v != "" && v != "all" {
		filter["industry"] = v
	}
	if v := strings.TrimSpace(f.Stage); v != "" && v != "all" {
		filter["stage"] = v
	}
	if v := strings.TrimSpace(f.Location); v != "" {
		filter["location"] = containsFold(v)
	}
	if v := strings.TrimSpace(f.Search); v != "" {
		re := containsFold(v)
		filter["$or"] = bson.A{
			bson.M{"startupName": re},
			bson.M{"tagline": re},
			bson.M{"problem": re},
		}
	}
	return filter
}

func containsFold(s string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// anyOfFold matches a field against any of values, ignoring case.
func anyOfFold(values []string) bson.A {
	out := bson.A{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, bson.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"})
		}
	}
	return out
}
