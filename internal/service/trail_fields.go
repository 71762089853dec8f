package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Baaaki/trail-catalog/internal/geo"
	"github.com/Baaaki/trail-catalog/internal/models"
	"gorm.io/datatypes"
)

// TrailInput is a raw trail write payload: a decoded JSON body or the values
// of a multipart form. Structured fields (duration, coordinates, tags) may be
// native values or JSON-encoded strings; numbers may be numeric strings.
type TrailInput map[string]any

// Fields a client may never set on update. The spatial point is derived
// from coordinates.DD and timestamps are managed by storage.
var trailUpdateForbidden = []string{"idAdmin", "location", "createdAt", "updatedAt"}

// On create the owning admin may be named explicitly.
var trailCreateForbidden = []string{"location", "createdAt", "updatedAt"}

var trailMutableFields = []string{
	"title", "description", "region", "valley", "difficulty", "lengthKm",
	"duration", "roadbook", "directions", "parking", "ascentM", "descentM",
	"highestPointM", "lowestPointM", "tags", "coordinates",
}

func (in TrailInput) has(key string) bool {
	_, ok := in[key]
	return ok
}

// firstForbidden returns the first key of forbidden present in the input.
func (in TrailInput) firstForbidden(forbidden []string) (string, bool) {
	for _, key := range forbidden {
		if in.has(key) {
			return key, true
		}
	}
	return "", false
}

type fieldErrors map[string]string

// add keeps the first cause recorded for a field.
func (f fieldErrors) add(field, cause string) {
	if _, exists := f[field]; !exists {
		f[field] = cause
	}
}

// applyTrailInput copies every allow-listed key of in onto trail. Unknown
// keys are ignored. Decoding failures are recorded per field.
func applyTrailInput(trail *models.Trail, in TrailInput, errs fieldErrors) {
	for _, key := range trailMutableFields {
		v, ok := in[key]
		if !ok {
			continue
		}

		var err error
		switch key {
		case "title":
			trail.Title, err = asString(v)
		case "description":
			trail.Description, err = asString(v)
		case "region":
			trail.Region, err = asString(v)
		case "valley":
			trail.Valley, err = asString(v)
		case "roadbook":
			trail.Roadbook, err = asString(v)
		case "directions":
			trail.Directions, err = asString(v)
		case "parking":
			trail.Parking, err = asString(v)
		case "difficulty":
			var s string
			s, err = asString(v)
			trail.Difficulty = models.Difficulty(strings.TrimSpace(s))
		case "lengthKm":
			trail.LengthKm, err = asFloat(v)
		case "ascentM":
			trail.AscentM, err = asFloat(v)
		case "descentM":
			trail.DescentM, err = asFloat(v)
		case "highestPointM":
			trail.HighestPointM, err = asFloat(v)
		case "lowestPointM":
			trail.LowestPointM, err = asFloat(v)
		case "duration":
			if d, ok := decodeDuration(v, errs); ok {
				trail.Duration = d
			}
		case "tags":
			var tags []string
			if tags, err = decodeTags(v); err == nil {
				trail.Tags = models.TagSet(tags)
			}
		case "coordinates":
			if c, ok := decodeCoordinates(v, errs); ok {
				trail.Coordinates = datatypes.NewJSONType(c)
			}
		}
		if err != nil {
			errs.add(key, err.Error())
		}
	}
}

// normalizeTrail validates the trail and derives its spatial point from
// coordinates.DD. It is the only writer of trail.Location.
func normalizeTrail(trail *models.Trail, errs fieldErrors) {
	trail.Title = strings.TrimSpace(trail.Title)
	if trail.Title == "" {
		errs.add("title", "is required")
	}

	if trail.Difficulty == "" {
		trail.Difficulty = models.DifficultyEasy
	}
	if !trail.Difficulty.IsValid() {
		errs.add("difficulty", "must be one of Easy, Medium, Difficult")
	}

	nonNegative := map[string]float64{
		"lengthKm":      trail.LengthKm,
		"highestPointM": trail.HighestPointM,
		"lowestPointM":  trail.LowestPointM,
	}
	for field, v := range nonNegative {
		if v < 0 {
			errs.add(field, "must be greater than or equal to 0")
		}
	}
	trail.AscentM = math.Abs(trail.AscentM)
	trail.DescentM = math.Abs(trail.DescentM)

	if trail.Duration.Hours < 0 {
		errs.add("duration.hours", "must be greater than or equal to 0")
	}
	if trail.Duration.Minutes < 0 || trail.Duration.Minutes > 59 {
		errs.add("duration.minutes", "must be between 0 and 59")
	}

	tags, err := models.NormalizeTags(trail.Tags)
	if err != nil {
		errs.add("tags", err.Error())
	} else {
		trail.Tags = tags
	}

	coords := trail.Coordinates.Data()
	point, err := geo.Normalize(coords.DD.Lat, coords.DD.Lon)
	if err != nil {
		var rangeErr *geo.RangeError
		if errors.As(err, &rangeErr) {
			errs.add("coordinates.DD."+rangeErr.Field, rangeErr.Error())
		} else {
			errs.add("coordinates.DD", err.Error())
		}
	} else {
		trail.Location = point
	}
	if coords.UTM != nil {
		if coords.UTM.Easting != nil && *coords.UTM.Easting < 0 {
			errs.add("coordinates.UTM.easting", "must be greater than or equal to 0")
		}
		if coords.UTM.Northing != nil && *coords.UTM.Northing < 0 {
			errs.add("coordinates.UTM.northing", "must be greater than or equal to 0")
		}
	}
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	}
	return "", errors.New("must be a string")
}

func asFloat(v any) (float64, error) {
	var f float64
	var err error
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, errors.New("must be a number")
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return 0, errors.New("must be a number")
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("must be a number")
	}
	return f, nil
}

func asInt(v any) (int, error) {
	f, err := asFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, errors.New("must be a whole number")
	}
	return int(f), nil
}

// asObject accepts a JSON object or a string holding one.
func asObject(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case string:
		var obj map[string]any
		dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(t))))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil || obj == nil {
			return nil, errors.New("must be an object or a JSON-encoded object")
		}
		return obj, nil
	}
	return nil, errors.New("must be an object or a JSON-encoded object")
}

func decodeDuration(v any, errs fieldErrors) (models.Duration, bool) {
	obj, err := asObject(v)
	if err != nil {
		errs.add("duration", err.Error())
		return models.Duration{}, false
	}

	var d models.Duration
	ok := true
	if raw, present := obj["hours"]; present && raw != nil {
		if d.Hours, err = asInt(raw); err != nil {
			errs.add("duration.hours", err.Error())
			ok = false
		}
	}
	if raw, present := obj["minutes"]; present && raw != nil {
		if d.Minutes, err = asInt(raw); err != nil {
			errs.add("duration.minutes", err.Error())
			ok = false
		}
	}
	return d, ok
}

// decodeTags accepts a list, a JSON-encoded list or a comma separated string.
func decodeTags(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return t, nil
	case []any:
		return tagStrings(t)
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "[") {
			var items []any
			if err := json.Unmarshal([]byte(s), &items); err != nil {
				return nil, errors.New("must be a list of strings")
			}
			return tagStrings(items)
		}
		if s == "" {
			return nil, nil
		}
		return strings.Split(s, ","), nil
	}
	return nil, errors.New("must be a list of strings")
}

// tagStrings drops falsy entries (null, false, 0, "") and rejects any other
// value that is not a string.
func tagStrings(items []any) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
		case bool:
			if v {
				return nil, errors.New("must be a list of strings")
			}
		case float64:
			if v != 0 {
				return nil, errors.New("must be a list of strings")
			}
		default:
			return nil, errors.New("must be a list of strings")
		}
	}
	return out, nil
}

func decodeCoordinates(v any, errs fieldErrors) (models.Coordinates, bool) {
	var c models.Coordinates

	obj, err := asObject(v)
	if err != nil {
		errs.add("coordinates", err.Error())
		return c, false
	}

	ok := true
	dd, err := asObject(obj["DD"])
	if obj["DD"] == nil || err != nil {
		errs.add("coordinates.DD", "is required")
		ok = false
	} else {
		for _, axis := range []string{"lat", "lon"} {
			raw, present := dd[axis]
			if !present || raw == nil {
				errs.add("coordinates.DD."+axis, "is required")
				ok = false
				continue
			}
			f, err := asFloat(raw)
			if err != nil {
				errs.add("coordinates.DD."+axis, err.Error())
				ok = false
				continue
			}
			if axis == "lat" {
				c.DD.Lat = f
			} else {
				c.DD.Lon = f
			}
		}
	}

	if raw, present := obj["DMS"]; present && raw != nil {
		dms, err := asObject(raw)
		if err != nil {
			errs.add("coordinates.DMS", err.Error())
			ok = false
		} else {
			lat, _ := asString(dms["lat"])
			lon, _ := asString(dms["lon"])
			c.DMS = &models.DMS{Lat: strings.TrimSpace(lat), Lon: strings.TrimSpace(lon)}
		}
	}

	if raw, present := obj["UTM"]; present && raw != nil {
		utm, err := asObject(raw)
		if err != nil {
			errs.add("coordinates.UTM", err.Error())
			ok = false
		} else {
			c.UTM = &models.UTM{}
			c.UTM.Zone, _ = asString(utm["zone"])
			for _, axis := range []string{"easting", "northing"} {
				raw, present := utm[axis]
				if !present || raw == nil {
					continue
				}
				f, err := asFloat(raw)
				if err != nil {
					errs.add(fmt.Sprintf("coordinates.UTM.%s", axis), err.Error())
					ok = false
					continue
				}
				if axis == "easting" {
					c.UTM.Easting = &f
				} else {
					c.UTM.Northing = &f
				}
			}
		}
	}

	return c, ok
}
