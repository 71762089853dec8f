package geo

import "math"

// EarthRadiusKm is the mean Earth radius used to turn distances into angles.
const EarthRadiusKm = 6371.0

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// AngularRadius converts a surface distance in kilometers to radians.
func AngularRadius(km float64) float64 {
	return km / EarthRadiusKm
}

// CentralAngle returns the great-circle angle between a and b in radians
// (haversine formulation).
func CentralAngle(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Asin(math.Min(1, math.Sqrt(h)))
}

// HaversineKm returns the great-circle distance between two lat/lon pairs.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return CentralAngle(Point{Lon: lon1, Lat: lat1}, Point{Lon: lon2, Lat: lat2}) * EarthRadiusKm
}

// InCap reports whether p lies inside the spherical cap around center.
func InCap(p, center Point, radiusKm float64) bool {
	return CentralAngle(p, center) <= AngularRadius(radiusKm)
}

// Box is a lat/lon rectangle enclosing a spherical cap. When AllLon is set the
// cap touches a pole or crosses the antimeridian and only the latitude bounds
// are meaningful.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	AllLon         bool
}

// BoundingBox returns the rectangle enclosing the cap of radiusKm around center.
func BoundingBox(center Point, radiusKm float64) Box {
	r := AngularRadius(radiusKm)
	box := Box{
		MinLat: center.Lat - toDeg(r),
		MaxLat: center.Lat + toDeg(r),
		MinLon: -180,
		MaxLon: 180,
	}

	if box.MinLat <= -90 || box.MaxLat >= 90 {
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		box.AllLon = true
		return box
	}

	ratio := math.Sin(r) / math.Cos(toRad(center.Lat))
	if ratio >= 1 {
		box.AllLon = true
		return box
	}

	dLon := toDeg(math.Asin(ratio))
	box.MinLon = center.Lon - dLon
	box.MaxLon = center.Lon + dLon
	if box.MinLon < -180 || box.MaxLon > 180 {
		box.MinLon, box.MaxLon = -180, 180
		box.AllLon = true
	}
	return box
}
