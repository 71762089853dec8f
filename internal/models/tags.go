package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// TrailTags is the closed vocabulary a trail's tags are drawn from.
var TrailTags = []string{
	"linear_route", "scenic", "geological_highlights", "fauna", "healthy_climate",
	"round_trip", "cultural_historical_interest", "flora", "out_and_back",
	"refreshment_stops_available", "family_friendly", "multi_stage_route",
	"summit_route", "exposed_sections", "insider_tip", "ridge",
	"cableway_ascent_descent", "suitable_for_strollers", "secured_passages",
	"dog_friendly", "accessibility", "scrambling_required",
}

var knownTags = func() map[string]struct{} {
	m := make(map[string]struct{}, len(TrailTags))
	for _, t := range TrailTags {
		m[t] = struct{}{}
	}
	return m
}()

func IsKnownTag(tag string) bool {
	_, ok := knownTags[tag]
	return ok
}

// UnknownTagError names the first tag outside the vocabulary.
type UnknownTagError struct {
	Tag string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("%q is not a valid tag", e.Tag)
}

// NormalizeTags trims, drops empty entries and duplicates, keeping the first
// occurrence order. Any value outside the vocabulary fails the whole set.
func NormalizeTags(raw []string) (TagSet, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make(TagSet, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		if !IsKnownTag(t) {
			return nil, &UnknownTagError{Tag: t}
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// TagSet is stored as a single delimited column (",a,b,") so that a
// containment filter is a plain LIKE on ",tag,".
type TagSet []string

func (s TagSet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "", nil
	}
	return "," + strings.Join(s, ",") + ",", nil
}

func (s *TagSet) Scan(value any) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*s = TagSet{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("models: cannot scan %T into TagSet", value)
	}

	parts := strings.Split(strings.Trim(raw, ","), ",")
	out := make(TagSet, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	*s = out
	return nil
}

func (s TagSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Contains reports whether tag is in the set.
func (s TagSet) Contains(tag string) bool {
	for _, t := range s {
		if t == tag {
			return true
		}
	}
	return false
}
