package cluster

import (
	"fmt"
	"time"

	"github.com/10gen/mongo-go-driver/internal/feature"
	"github.com/10gen/mongo-go-driver/readpref"
	"github.com/10gen/mongo-go-driver/server"
)

// ReadPrefSelector selects servers based on the provided read preference.
func ReadPrefSelector(rp *readpref.ReadPref) ServerSelector {
	return func(c *Desc, candidates []*server.Desc) ([]*server.Desc, error) {
		if _, set := rp.MaxStaleness(); set {
			for _, s := range candidates {
				if s.Type != server.Unknown {
					if err := feature.MaxStaleness(s.Version); err != nil {
						return nil, err
					}
				}
			}
		}

		switch c.Type {
		case Single, Sharded:
			return candidates, nil
		default:
			return selectForReplicaSet(rp, c, candidates)
		}
	}
}

func selectForReplicaSet(rp *readpref.ReadPref, c *Desc, candidates []*server.Desc) ([]*server.Desc, error) {
	if err := verifyMaxStaleness(rp, candidates); err != nil {
		return nil, err
	}

	switch rp.Mode() {
	case readpref.PrimaryMode:
		return selectByType(candidates, server.RSPrimary), nil
	case readpref.PrimaryPreferredMode:
		selected := selectByType(candidates, server.RSPrimary)
		if len(selected) == 0 {
			selected = selectSecondaries(rp, candidates)
			return selectByTagSet(selected, rp.TagSets()), nil
		}
		return selected, nil
	case readpref.SecondaryPreferredMode:
		selected := selectByTagSet(selectSecondaries(rp, candidates), rp.TagSets())
		if len(selected) > 0 {
			return selected, nil
		}
		return selectByType(candidates, server.RSPrimary), nil
	case readpref.SecondaryMode:
		selected := selectSecondaries(rp, candidates)
		return selectByTagSet(selected, rp.TagSets()), nil
	case readpref.NearestMode:
		selected := selectByType(candidates, server.RSPrimary)
		selected = append(selected, selectSecondaries(rp, candidates)...)
		return selectByTagSet(selected, rp.TagSets()), nil
	}

	return nil, fmt.Errorf("unsupported read preference mode: %d", rp.Mode())
}

func selectSecondaries(rp *readpref.ReadPref, candidates []*server.Desc) []*server.Desc {
	secondaries := selectByType(candidates, server.RSSecondary)
	if len(secondaries) == 0 {
		return secondaries
	}

	maxStaleness, set := rp.MaxStaleness()
	if !set {
		return secondaries
	}

	primaries := selectByType(candidates, server.RSPrimary)
	if len(primaries) == 0 {
		baseTime := secondaries[0].LastWriteTime
		for i := 1; i < len(secondaries); i++ {
			if secondaries[i].LastWriteTime.After(baseTime) {
				baseTime = secondaries[i].LastWriteTime
			}
		}

		var selected []*server.Desc
		for _, secondary := range secondaries {
			estimatedStaleness := baseTime.Sub(secondary.LastWriteTime) + secondary.HeartbeatInterval
			if estimatedStaleness <= maxStaleness {
				selected = append(selected, secondary)
			}
		}
		return selected
	}

	primary := primaries[0]

	var selected []*server.Desc
	for _, secondary := range secondaries {
		estimatedStaleness := secondary.LastUpdateTime.Sub(secondary.LastWriteTime) -
			primary.LastUpdateTime.Sub(primary.LastWriteTime) + secondary.HeartbeatInterval
		if estimatedStaleness <= maxStaleness {
			selected = append(selected, secondary)
		}
	}
	return selected
}

func selectByTagSet(candidates []*server.Desc, tagSets []server.TagSet) []*server.Desc {
	if len(tagSets) == 0 {
		return candidates
	}

	for _, ts := range tagSets {
		var results []*server.Desc
		for _, s := range candidates {
			if len(s.Tags) > 0 && s.Tags.ContainsAll(ts) {
				results = append(results, s)
			}
		}
		if len(results) > 0 {
			return results
		}
	}

	return nil
}

func selectByType(candidates []*server.Desc, t server.Type) []*server.Desc {
	var result []*server.Desc
	for _, s := range candidates {
		if s.Type == t {
			result = append(result, s)
		}
	}
	return result
}

func verifyMaxStaleness(rp *readpref.ReadPref, candidates []*server.Desc) error {
	maxStaleness, set := rp.MaxStaleness()
	if !set {
		return nil
	}

	if maxStaleness < 90*time.Second {
		return fmt.Errorf("max staleness (%s) must be greater than or equal to 90s", maxStaleness)
	}

	if len(candidates) < 1 {
		return nil
	}

	// all candidates share the same heartbeat interval.
	s := candidates[0]
	idleWritePeriod := 10 * time.Second

	if maxStaleness < s.HeartbeatInterval+idleWritePeriod {
		return fmt.Errorf(
			"max staleness (%s) must be greater than or equal to the heartbeat interval (%s) plus idle write period (%s)",
			maxStaleness, s.HeartbeatInterval, idleWritePeriod,
		)
	}

	return nil
}
