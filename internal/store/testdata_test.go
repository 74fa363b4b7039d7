package store

import "github.com/branchmove/branch-service/internal/branch"

func fixtureLocations() []branch.Location {
	return []branch.Location{
		{
			ID: 1, Name: "Harbor Branch", Region: "Istanbul", SubRegion: "Kadikoy", Type: "Standard",
			Coordinate: branch.Coordinate{Lat: 40.99, Lon: 29.03}, ATMCount: 2, Density: branch.DensityLow,
			Accessible: true, Parking: true,
			ServiceTypes: []branch.ServiceType{branch.ServiceIndividual, branch.ServiceSME},
		},
		{
			ID: 2, Name: "Plaza Branch", Region: "Istanbul", SubRegion: "Sisli", Type: "Corporate",
			Coordinate: branch.Coordinate{Lat: 41.06, Lon: 28.99}, ATMCount: 6, Density: branch.DensityHigh,
			ExtendedHours: true,
			ServiceTypes:  []branch.ServiceType{branch.ServiceCorporate},
		},
		{
			ID: 3, Name: "Capital Branch", Region: "Ankara", Type: "Standard",
			Coordinate: branch.Coordinate{Lat: 39.92, Lon: 32.85}, ATMCount: 4, Density: branch.DensityMedium,
			ServesAdjacentRegions: true, EasyAccess: true,
			ServiceTypes: []branch.ServiceType{branch.ServiceIndividual},
		},
	}
}
