package models

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type fieldKind int

const (
	stringField fieldKind = iota
	listField
	linksField
)

var startupFields = map[string]fieldKind{
	"startupName":   stringField,
	"tagline":       stringField,
	"founderName":   stringField,
	"industry":      stringField,
	"stage":         stringField,
	"location":      stringField,
	"problem":       stringField,
	"solution":      stringField,
	"traction":      stringField,
	"funding":       stringField,
	"fundingNeeded": stringField,
	"fundUsage":     stringField,
	"prevFunding":   stringField,
	"techStack":     stringField,
	"valueProp":     stringField,
	"market":        stringField,
	"revenueModel":  stringField,
	"website":       stringField,
	"phone":         stringField,
	"teamSize":      stringField,
	"socialLinks":   linksField,
}

var investorFields = map[string]fieldKind{
	"fullName":         stringField,
	"firm":             stringField,
	"sectors":          listField,
	"preferredSectors": listField,
	"ticketSize":       stringField,
	"bio":              stringField,
	"location":         stringField,
	"website":          stringField,
	"phone":            stringField,
	"socialLinks":      linksField,
}

// identityFields are never writable through a profile payload.
var identityFields = []string{"_id", "id", "userId", "createdAt", "updatedAt"}

// SanitizeProfileUpdate strips identity fields from raw, drops keys that are not
// part of the role's profile, and coerces the remaining values to their stored
// types. Dropped keys are returned for logging.
func SanitizeProfileUpdate(role string, raw map[string]any) (bson.M, []string, error) {
	var allowed map[string]fieldKind
	switch role {
	case RoleStartup:
		allowed = startupFields
	case RoleInvestor:
		allowed = investorFields
	default:
		return nil, nil, fmt.Errorf("unknown role %q", role)
	}

	for _, k := range identityFields {
		delete(raw, k)
	}

	set := bson.M{}
	var dropped []string
	for key, value := range raw {
		kind, ok := allowed[key]
		if !ok {
			dropped = append(dropped, key)
			continue
		}
		v, err := coerce(kind, value)
		if err != nil {
			return nil, dropped, fmt.Errorf("field %s: %w", key, err)
		}
		set[key] = v
	}
	return set, dropped, nil
}

func coerce(kind fieldKind, value any) (any, error) {
	switch kind {
	case stringField:
		return coerceString(value)
	case listField:
		return coerceList(value)
	case linksField:
		return coerceLinks(value)
	}
	return nil, fmt.Errorf("unsupported field kind %d", kind)
}

func coerceString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("expected string, got %T", value)
	}
}

// coerceList accepts a JSON array of strings or a comma-separated string.
func coerceList(value any) ([]string, error) {
	out := []string{}
	switch v := value.(type) {
	case nil:
		return out, nil
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected list of strings, got element %T", item)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []string:
		return coerceList(toAnySlice(v))
	default:
		return nil, fmt.Errorf("expected list, got %T", value)
	}
}

func coerceLinks(value any) (bson.M, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", value)
	}
	links := bson.M{}
	for _, key := range []string{"linkedin", "twitter", "other"} {
		if raw, present := m[key]; present {
			s, err := coerceString(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			links[key] = s
		}
	}
	return links, nil
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// DecodeFields builds a profile document (a *Startup or *Investor) from
// sanitized fields.
func DecodeFields(fields bson.M, dst any) error {
	data, err := bson.Marshal(fields)
	if err != nil {
		return err
	}
	return bson.Unmarshal(data, dst)
}
