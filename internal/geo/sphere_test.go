package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	d := HaversineKm(-6.2, 106.816, -6.9175, 107.6191)
	assert.InDelta(t, 117, d, 10)

	assert.Zero(t, HaversineKm(46.4, 11.7, 46.4, 11.7))
}

func TestInCap(t *testing.T) {
	center := Point{Lon: 11.7, Lat: 46.4}

	assert.True(t, InCap(center, center, 5))
	assert.True(t, InCap(Point{Lon: 11.72, Lat: 46.41}, center, 5))
	// roughly 100 km north
	assert.False(t, InCap(Point{Lon: 11.7, Lat: 47.3}, center, 5))
	assert.True(t, InCap(Point{Lon: 11.7, Lat: 47.3}, center, 150))
}

func TestBoundingBox_Regular(t *testing.T) {
	center := Point{Lon: 11.7, Lat: 46.4}
	box := BoundingBox(center, 10)

	assert.False(t, box.AllLon)
	assert.Less(t, box.MinLat, center.Lat)
	assert.Greater(t, box.MaxLat, center.Lat)
	assert.Less(t, box.MinLon, center.Lon)
	assert.Greater(t, box.MaxLon, center.Lon)

	// every point on the cap edge must fall inside the box
	edgeNorth := Point{Lon: center.Lon, Lat: center.Lat + 10/EarthRadiusKm*180/3.141592653589793}
	assert.LessOrEqual(t, edgeNorth.Lat, box.MaxLat+1e-9)
}

func TestBoundingBox_NearPole(t *testing.T) {
	box := BoundingBox(Point{Lon: 0, Lat: 89.99}, 50)
	assert.True(t, box.AllLon)
	assert.Equal(t, 90.0, box.MaxLat)
}

func TestBoundingBox_Antimeridian(t *testing.T) {
	box := BoundingBox(Point{Lon: 179.99, Lat: 0}, 20)
	assert.True(t, box.AllLon)
	assert.Equal(t, -180.0, box.MinLon)
	assert.Equal(t, 180.0, box.MaxLon)
}
