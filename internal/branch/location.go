// Package branch holds the branch reference model and the pure selection
// stages that run before scoring: criteria matching, geographic filtering
// and the candidate funnel.
package branch

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrLocationNotFound is returned by location stores when a name lookup misses.
var ErrLocationNotFound = errors.New("location not found")

// Density is the customer traffic level reported for a branch.
type Density string

const (
	DensityLow    Density = "low"
	DensityMedium Density = "medium"
	DensityHigh   Density = "high"
)

// Valid reports whether d is one of the known density levels.
func (d Density) Valid() bool {
	switch d {
	case DensityLow, DensityMedium, DensityHigh:
		return true
	}
	return false
}

// ServiceType is a banking segment served by a branch.
type ServiceType string

const (
	ServiceIndividual ServiceType = "Individual"
	ServiceCorporate  ServiceType = "Corporate"
	ServiceSME        ServiceType = "SME"
)

// Coordinate is a point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is an immutable branch reference record.
type Location struct {
	ID                    int           `json:"id"`
	Name                  string        `json:"name"`
	Region                string        `json:"region"`
	SubRegion             string        `json:"subRegion"`
	Type                  string        `json:"type"`
	Coordinate            Coordinate    `json:"coordinate"`
	ServesAdjacentRegions bool          `json:"servesAdjacentRegions"`
	ATMCount              int           `json:"atmCount"`
	Density               Density       `json:"density"`
	Accessible            bool          `json:"accessible"`
	Parking               bool          `json:"parking"`
	ExtendedHours         bool          `json:"extendedHours"`
	EasyAccess            bool          `json:"easyAccess"`
	ServiceTypes          []ServiceType `json:"serviceTypes"`
}

// HasService reports whether the branch serves the given segment.
func (l Location) HasService(s ServiceType) bool {
	for _, st := range l.ServiceTypes {
		if st == s {
			return true
		}
	}
	return false
}

// ServiceNames returns the service types as plain strings.
func (l Location) ServiceNames() []string {
	names := make([]string, len(l.ServiceTypes))
	for i, st := range l.ServiceTypes {
		names[i] = string(st)
	}
	return names
}

// NormalizeName trims s and converts it to NFC so that precomposed and
// decomposed spellings of the same branch name compare equal.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Validate checks the fields every downstream stage relies on.
func (l Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(l.Region) == "" {
		return fmt.Errorf("%s: region is required", l.Name)
	}
	if l.Coordinate.Lat < -90 || l.Coordinate.Lat > 90 || l.Coordinate.Lon < -180 || l.Coordinate.Lon > 180 {
		return fmt.Errorf("%s: coordinate out of range (%g, %g)", l.Name, l.Coordinate.Lat, l.Coordinate.Lon)
	}
	if l.ATMCount < 0 {
		return fmt.Errorf("%s: negative atm count", l.Name)
	}
	if !l.Density.Valid() {
		return fmt.Errorf("%s: unknown density %q", l.Name, l.Density)
	}
	return nil
}
