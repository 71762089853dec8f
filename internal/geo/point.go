// Package geo holds the coordinate normalizer and the spherical helpers used
// by the nearby-trails search.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Point is a position in the canonical [longitude, latitude] order. It
// serializes as a GeoJSON Point.
type Point struct {
	Lon float64
	Lat float64
}

// RangeError reports a coordinate that is not finite or out of its range.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return fmt.Sprintf("%s must be a finite number", e.Field)
	}
	return fmt.Sprintf("%s must be between %g and %g, got %g", e.Field, e.Min, e.Max, e.Value)
}

// Normalize validates a decimal-degree pair and returns the canonical point.
// Both values are checked; the latitude error wins when both are invalid.
func Normalize(lat, lon float64) (Point, error) {
	if err := checkRange("lat", lat, -90, 90); err != nil {
		return Point{}, err
	}
	if err := checkRange("lon", lon, -180, 180); err != nil {
		return Point{}, err
	}
	return Point{Lon: lon, Lat: lat}, nil
}

func checkRange(field string, v, min, max float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < min || v > max {
		return &RangeError{Field: field, Value: v, Min: min, Max: max}
	}
	return nil
}

type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{Type: "Point", Coordinates: []float64{p.Lon, p.Lat}})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var raw geoJSONPoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != "Point" || len(raw.Coordinates) != 2 {
		return errors.New("geo: expected a GeoJSON Point with two coordinates")
	}
	p.Lon, p.Lat = raw.Coordinates[0], raw.Coordinates[1]
	return nil
}
