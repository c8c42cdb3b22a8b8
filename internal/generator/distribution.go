package generator

import (
	"strings"

	"bloomforge/internal/domain"
)

// Policy names a Bloom distribution.
type Policy string

const (
	Balanced     Policy = "balanced"
	Foundational Policy = "foundational"
	Advanced     Policy = "advanced"
)

// Percentages per level, REMEMBER..CREATE. Ceilings are taken in integer
// arithmetic.
var policyPercents = map[Policy][6]int{
	Balanced:     {20, 20, 20, 15, 15, 10},
	Foundational: {30, 25, 20, 15, 5, 5},
	Advanced:     {10, 15, 20, 20, 20, 15},
}

// ParsePolicy maps unknown or empty names to Balanced.
func ParsePolicy(name string) Policy {
	p := Policy(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := policyPercents[p]; ok {
		return p
	}
	return Balanced
}

// Fractions returns the policy's per-level share of the total.
func Fractions(p Policy) map[domain.BloomLevel]float64 {
	pct := policyPercents[ParsePolicy(string(p))]
	out := make(map[domain.BloomLevel]float64, len(domain.BloomLevels))
	for i, l := range domain.BloomLevels {
		out[l] = float64(pct[i]) / 100
	}
	return out
}

// Distribution returns ceil(total * fraction) for every level. Each level is
// rounded up independently, so the counts may sum to more than total; callers
// that need an exact count truncate afterwards.
func Distribution(policy string, total int) map[domain.BloomLevel]int {
	pct := policyPercents[ParsePolicy(policy)]
	out := make(map[domain.BloomLevel]int, len(domain.BloomLevels))
	if total <= 0 {
		for _, l := range domain.BloomLevels {
			out[l] = 0
		}
		return out
	}
	for i, l := range domain.BloomLevels {
		out[l] = (total*pct[i] + 99) / 100
	}
	return out
}

// DistributionTotal sums the per-level counts.
func DistributionTotal(dist map[domain.BloomLevel]int) int {
	n := 0
	for _, c := range dist {
		n += c
	}
	return n
}
