// Package domain holds the shared types of the fund engine: risk
// profiles, assets, return observations and weight mappings.
package domain

import "fmt"

// Profile identifies one of the three managed risk profiles. The set is
// closed: every profile maps to a fixed column of the deals table
// through dealColumns, and SQL involving a profile is never built from
// caller-supplied strings.
type Profile string

const (
	ProfileLowRisk     Profile = "low_risk"
	ProfileLowTurnover Profile = "low_turnover"
	ProfileHighYield   Profile = "high_yield_equity_only"
)

// AllProfiles lists every managed profile in rebalancing order.
var AllProfiles = []Profile{
	ProfileLowRisk,
	ProfileLowTurnover,
	ProfileHighYield,
}

var dealColumns = map[Profile]string{
	ProfileLowRisk:     "low_risk",
	ProfileLowTurnover: "low_turnover",
	ProfileHighYield:   "high_yield_equity_only",
}

// ParseProfile validates a profile tag coming from the outside
// (HTTP path, CLI flag, database row).
func ParseProfile(s string) (Profile, error) {
	p := Profile(s)
	if _, ok := dealColumns[p]; !ok {
		return "", fmt.Errorf("unknown risk profile %q", s)
	}
	return p, nil
}

// DealColumn returns the deals-table column holding this profile's
// trade deltas.
func (p Profile) DealColumn() (string, error) {
	col, ok := dealColumns[p]
	if !ok {
		return "", fmt.Errorf("unknown risk profile %q", string(p))
	}
	return col, nil
}

func (p Profile) String() string {
	return string(p)
}
