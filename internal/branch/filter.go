package branch

// Eligible returns the branches located in targetRegion or serving adjacent
// regions, excluding the customer's current branch. Input order is kept.
func Eligible(all []Location, targetRegion, currentName string) []Location {
	out := make([]Location, 0, len(all))
	for _, loc := range all {
		if loc.Name == currentName {
			continue
		}
		if loc.Region == targetRegion || loc.ServesAdjacentRegions {
			out = append(out, loc)
		}
	}
	return out
}

// InRegion returns the branches whose region equals region.
func InRegion(all []Location, region string) []Location {
	out := make([]Location, 0)
	for _, loc := range all {
		if loc.Region == region {
			out = append(out, loc)
		}
	}
	return out
}
