package scoring

import (
	"fmt"
	"math"

	"github.com/branchmove/branch-service/internal/branch"
)

// HaversineKm calculates the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0 // Earth radius km
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Annotated is a branch with its distance from the request's reference branch.
type Annotated struct {
	branch.Location
	DistanceKm float64 `json:"distanceKm"`
}

// Distance returns the annotated distance in kilometers.
func (a Annotated) Distance() float64 {
	return a.DistanceKm
}

// Annotate computes the distance from ref to every location.
func Annotate(ref branch.Location, locs []branch.Location) []Annotated {
	out := make([]Annotated, len(locs))
	for i, loc := range locs {
		out[i] = Annotated{
			Location: loc,
			DistanceKm: HaversineKm(
				ref.Coordinate.Lat, ref.Coordinate.Lon,
				loc.Coordinate.Lat, loc.Coordinate.Lon,
			),
		}
	}
	return out
}

// Nearest returns the item with the smallest distance. Ties keep the first
// occurrence. ok is false for an empty slice.
func Nearest[T interface{ Distance() float64 }](items []T) (nearest T, ok bool) {
	for i, it := range items {
		if i == 0 || it.Distance() < nearest.Distance() {
			nearest = it
		}
		ok = true
	}
	return nearest, ok
}

// FormatDistance renders a distance for people: meters below one kilometer,
// one decimal kilometer otherwise.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}
