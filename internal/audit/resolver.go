package audit

import (
	"strconv"
	"strings"

	"github.com/freightlens/auditor/internal/domain"
)

// FindContractRate resolves the rate line that applies to a route and
// weight. Route matching is a case-insensitive exact string match on
// origin/destination — two differently-spelled city names will not match.
//
// Among lines covering the route, a line whose weight slab contains the
// weight (inclusive on both bounds) wins; when several slabs contain it,
// the narrowest slab wins, then list order. A line without a slab acts as
// an always-matching fallback. Returns nil when no line covers the route
// at all, which callers treat differently from "route known, slab missed".
func FindContractRate(rateCard []domain.RateLine, origin, destination string, weight float64) *domain.RateLine {
	var slabMatch *domain.RateLine
	var slabWidth float64
	var unconstrained *domain.RateLine

	for i := range rateCard {
		rl := &rateCard[i]
		if !strings.EqualFold(rl.Origin, origin) || !strings.EqualFold(rl.Destination, destination) {
			continue
		}

		min, max, ok := parseWeightSlab(rl.WeightSlab)
		if !ok {
			// No slab, or a slab we cannot parse: one bad data row must
			// degrade to "unconstrained", not fail the whole audit.
			if unconstrained == nil {
				unconstrained = rl
			}
			continue
		}
		if weight < min || weight > max {
			continue
		}
		if slabMatch == nil || max-min < slabWidth {
			slabMatch = rl
			slabWidth = max - min
		}
	}

	if slabMatch != nil {
		return slabMatch
	}
	return unconstrained
}

// parseWeightSlab parses a textual range like "100-500 kg" into its bounds.
// The trailing unit is ignored. ok is false for empty or malformed slabs.
func parseWeightSlab(slab string) (min, max float64, ok bool) {
	s := strings.ToLower(strings.TrimSpace(slab))
	if s == "" {
		return 0, 0, false
	}

	for _, unit := range []string{"kgs", "kg", "tons", "ton", "mt"} {
		s = strings.TrimSpace(strings.TrimSuffix(s, unit))
	}

	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	min, errMin := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	max, errMax := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errMin != nil || errMax != nil || max < min {
		return 0, 0, false
	}
	return min, max, true
}
