package branch

// Criterion is the wire name of a customer preference.
type Criterion string

const (
	LowATMDensity     Criterion = "Low ATM Density"
	Accessibility     Criterion = "Accessibility"
	LowBranchDensity  Criterion = "Low Branch Density"
	ParkingAvailable  Criterion = "Parking Available"
	ExtendedHours     Criterion = "Extended Hours"
	EasyAccess        Criterion = "Easy Access"
	IndividualBanking Criterion = "Individual Banking"
	CorporateBanking  Criterion = "Corporate Banking"
	SMEBanking        Criterion = "SME Banking"
)

// LowATMThreshold is the highest ATM count that still counts as low ATM density.
const LowATMThreshold = 3

type predicate func(Location) bool

type criterionDef struct {
	name  Criterion
	match predicate
}

// registry keeps criteria in display order.
var registry = []criterionDef{
	{LowATMDensity, func(l Location) bool { return l.ATMCount <= LowATMThreshold }},
	{Accessibility, func(l Location) bool { return l.Accessible }},
	{LowBranchDensity, func(l Location) bool { return l.Density == DensityLow }},
	{ParkingAvailable, func(l Location) bool { return l.Parking }},
	{ExtendedHours, func(l Location) bool { return l.ExtendedHours }},
	{EasyAccess, func(l Location) bool { return l.EasyAccess }},
	{IndividualBanking, func(l Location) bool { return l.HasService(ServiceIndividual) }},
	{CorporateBanking, func(l Location) bool { return l.HasService(ServiceCorporate) }},
	{SMEBanking, func(l Location) bool { return l.HasService(ServiceSME) }},
}

var predicates = func() map[Criterion]predicate {
	m := make(map[Criterion]predicate, len(registry))
	for _, def := range registry {
		m[def.name] = def.match
	}
	return m
}()

// KnownCriteria returns every supported criterion in display order.
func KnownCriteria() []Criterion {
	out := make([]Criterion, len(registry))
	for i, def := range registry {
		out[i] = def.name
	}
	return out
}

// IsKnown reports whether name is a supported criterion.
func IsKnown(name string) bool {
	_, ok := predicates[Criterion(name)]
	return ok
}

// Evaluate returns whether loc satisfies c and whether c is a known criterion.
func (c Criterion) Evaluate(loc Location) (matched, known bool) {
	p, ok := predicates[c]
	if !ok {
		return false, false
	}
	return p(loc), true
}

// MatchesAll reports whether loc satisfies every criterion. An empty list
// matches. Unknown criteria are treated as satisfied.
func MatchesAll(loc Location, criteria []Criterion) bool {
	for _, c := range criteria {
		matched, known := c.Evaluate(loc)
		if known && !matched {
			return false
		}
	}
	return true
}

// MatchesAny reports whether loc satisfies at least one criterion. An empty
// list matches. Unknown criteria are treated as unsatisfied.
func MatchesAny(loc Location, criteria []Criterion) bool {
	if len(criteria) == 0 {
		return true
	}
	for _, c := range criteria {
		if matched, _ := c.Evaluate(loc); matched {
			return true
		}
	}
	return false
}

// CountMatches returns how many criteria loc satisfies. Unknown criteria never count.
func CountMatches(loc Location, criteria []Criterion) int {
	n := 0
	for _, c := range criteria {
		if matched, _ := c.Evaluate(loc); matched {
			n++
		}
	}
	return n
}

// MatchedCriteria returns the satisfied criteria in priority order.
func MatchedCriteria(loc Location, criteria []Criterion) []Criterion {
	out := make([]Criterion, 0, len(criteria))
	for _, c := range criteria {
		if matched, _ := c.Evaluate(loc); matched {
			out = append(out, c)
		}
	}
	return out
}

// UnmatchedCriteria returns the criteria loc does not satisfy, unknown ones
// included, in priority order.
func UnmatchedCriteria(loc Location, criteria []Criterion) []Criterion {
	out := make([]Criterion, 0, len(criteria))
	for _, c := range criteria {
		if matched, _ := c.Evaluate(loc); !matched {
			out = append(out, c)
		}
	}
	return out
}
