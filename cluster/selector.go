package cluster

import (
	"math"
	"time"

	"github.com/10gen/mongo-go-driver/server"
)

// CompositeSelector combines multiple selectors into a single selector that
// applies each in turn, narrowing the candidate list at each step.
func CompositeSelector(selectors []ServerSelector) ServerSelector {
	return func(c *Desc, candidates []*server.Desc) ([]*server.Desc, error) {
		var err error
		for _, sel := range selectors {
			candidates, err = sel(c, candidates)
			if err != nil {
				return nil, err
			}
		}
		return candidates, nil
	}
}

// LatencySelector creates a ServerSelector which selects servers whose
// average RTT falls within the given window of the lowest RTT among the
// candidates. When at least one candidate has an RTT measurement, those
// without one are excluded; when none has one, when there are fewer than
// two candidates, or when latency is negative, the candidates are
// returned unchanged.
func LatencySelector(latency time.Duration) ServerSelector {
	return func(c *Desc, candidates []*server.Desc) ([]*server.Desc, error) {
		return selectServersByLatency(latency, candidates), nil
	}
}

func selectServersByLatency(latency time.Duration, candidates []*server.Desc) []*server.Desc {
	if latency < 0 {
		return candidates
	}

	switch len(candidates) {
	case 0, 1:
		return candidates
	}

	min := time.Duration(math.MaxInt64)
	for _, candidate := range candidates {
		if candidate.AverageRTTSet && candidate.AverageRTT < min {
			min = candidate.AverageRTT
		}
	}

	if min == math.MaxInt64 {
		return candidates
	}

	max := min + latency

	var result []*server.Desc
	for _, candidate := range candidates {
		if candidate.AverageRTTSet && candidate.AverageRTT <= max {
			result = append(result, candidate)
		}
	}

	return result
}

// WriteSelector selects all the writable servers: any server in a Single
// topology (direct connections are always usable), or mongos/RSPrimary/
// standalone members otherwise.
func WriteSelector() ServerSelector {
	return func(c *Desc, candidates []*server.Desc) ([]*server.Desc, error) {
		switch c.Type {
		case Single:
			return candidates, nil
		default:
			var result []*server.Desc
			for _, candidate := range candidates {
				switch candidate.Type {
				case server.Mongos, server.RSPrimary, server.Standalone:
					result = append(result, candidate)
				}
			}
			return result, nil
		}
	}
}
