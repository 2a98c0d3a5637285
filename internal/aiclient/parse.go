package aiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind discriminates a Result.
type Kind int

const (
	KindObject Kind = iota + 1
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Result is a normalised AI response: either a single JSON object or a list.
type Result struct {
	Kind   Kind
	Object map[string]any
	List   []any
}

// Value returns the payload as a plain JSON value.
func (r *Result) Value() any {
	if r.Kind == KindList {
		return r.List
	}
	return r.Object
}

// Items returns the object elements of a list result; anything else is empty.
func (r *Result) Items() []map[string]any {
	if r == nil || r.Kind != KindList {
		return nil
	}
	items := make([]map[string]any, 0, len(r.List))
	for _, v := range r.List {
		if m, ok := v.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

var ErrUnexpectedShape = errors.New("unexpected ai response shape")

// listKeys are wrapper keys under which the service has returned its list.
var listKeys = []string{"value", "matches", "results", "data", "recommendations"}

// ParseResponse normalises a raw response body. It accepts:
//   - a top-level array
//   - an object wrapping an array under one of listKeys
//   - an object whose "raw" string holds JSON, fenced in markdown or bare
//   - any other object, taken as is
func ParseResponse(body []byte) (*Result, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode ai response: %w", err)
	}
	return normalize(v, 0)
}

func normalize(v any, depth int) (*Result, error) {
	switch t := v.(type) {
	case []any:
		return &Result{Kind: KindList, List: t}, nil
	case map[string]any:
		for _, key := range listKeys {
			if list, ok := t[key].([]any); ok {
				return &Result{Kind: KindList, List: list}, nil
			}
		}
		if raw, ok := t["raw"].(string); ok && depth < 2 {
			if extracted := ExtractJSON(raw); extracted != "" {
				var inner any
				if err := json.Unmarshal([]byte(extracted), &inner); err == nil {
					if res, err := normalize(inner, depth+1); err == nil {
						return res, nil
					}
				}
			}
		}
		return &Result{Kind: KindObject, Object: t}, nil
	default:
		return nil, ErrUnexpectedShape
	}
}

var (
	// fencedPattern matches the body of a ``` or ```json code block.
	fencedPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\s*```")
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON pulls a JSON object or array out of model output. A fenced
// block wins; otherwise the span from the first opening bracket to the last
// matching closing bracket is used. Returns "" when nothing looks like JSON.
func ExtractJSON(content string) string {
	if m := fencedPattern.FindStringSubmatch(content); len(m) > 1 {
		if inner := strings.TrimSpace(m[1]); strings.HasPrefix(inner, "{") || strings.HasPrefix(inner, "[") {
			return cleanJSON(inner)
		}
	}

	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return ""
	}
	closer := "}"
	if content[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(content, closer)
	if end <= start {
		return ""
	}
	return cleanJSON(content[start : end+1])
}

func cleanJSON(raw string) string {
	return trailingCommaPattern.ReplaceAllString(raw, "$1")
}
