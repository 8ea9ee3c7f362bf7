package services

import "math"

// haversineKm returns the great-circle distance between two points in km.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// EstimateETAMinutes computes minutes to destination at the current speed.
// Returns -1 when the vehicle is not moving.
func EstimateETAMinutes(curLat, curLng, destLat, destLng, speedKmh float64) int {
	if speedKmh == 0 {
		return -1
	}
	distance := haversineKm(curLat, curLng, destLat, destLng)
	return int(math.Round(distance / speedKmh * 60))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// cityZone is a named circle, radius in coordinate degrees.
type cityZone struct {
	name   string
	lat    float64
	lng    float64
	radius float64
}

// abidjanZones covers the communes the fleet serves.
var abidjanZones = []cityZone{
	{"Cocody", 5.3473, -3.9875, 0.03},
	{"Yopougon", 5.3365, -4.0872, 0.03},
	{"Abobo", 5.4235, -4.0196, 0.03},
	{"Adjamé", 5.3567, -4.0239, 0.03},
	{"Plateau", 5.3223, -4.0415, 0.03},
	{"Treichville", 5.2947, -4.0093, 0.03},
	{"Marcory", 5.2886, -3.9863, 0.03},
	{"Koumassi", 5.2975, -3.9489, 0.03},
}

// ZoneOf names the commune containing the coordinates, or "En transit" when
// the position falls outside every known zone.
func ZoneOf(lat, lng float64) string {
	for _, z := range abidjanZones {
		if math.Hypot(lat-z.lat, lng-z.lng) <= z.radius {
			return z.name
		}
	}
	return "En transit"
}
