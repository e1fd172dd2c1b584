// Package gap compares submitted staff counts against the requirement table.
// Everything here is a pure function of its arguments.
package gap

import (
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/submission"
)

// RankGap is the staffing position of one academic rank.
type RankGap struct {
	Rank       submission.AcademicRank `json:"rank"`
	Required   int                     `json:"required"`
	Current    int                     `json:"current"`
	Gap        int                     `json:"gap"`
	PercentGap float64                 `json:"percent_gap"`
}

func newRankGap(rank submission.AcademicRank, required, current int) RankGap {
	g := RankGap{Rank: rank, Required: required, Current: current}
	g.Gap = shortfall(required, current)
	g.PercentGap = percent(g.Gap, required)
	return g
}

func shortfall(required, current int) int {
	if d := required - current; d > 0 {
		return d
	}
	return 0
}

// percent returns part/whole*100, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// ComputeGap reports every academic rank, most senior first, for one submission.
func ComputeGap(sub submission.Submission, reqs policy.Requirements) []RankGap {
	gaps := make([]RankGap, 0, len(submission.AllRanks))
	for _, rank := range submission.AllRanks {
		gaps = append(gaps, newRankGap(rank, reqs[rank], sub.Data.Count(rank)))
	}
	return gaps
}

// Compliance is the percentage of required ranks whose headcount meets the requirement.
// A table with no required rank is fully met; a missing submission meets nothing.
func Compliance(sub *submission.Submission, reqs policy.Requirements) float64 {
	if sub == nil {
		return 0
	}
	ranks := reqs.Ranks()
	if len(ranks) == 0 {
		return 100
	}
	var met int
	for _, rank := range ranks {
		if sub.Data.Count(rank) >= reqs[rank] {
			met++
		}
	}
	return percent(met, len(ranks))
}

// BucketGap is the staffing position of a rank bucket.
type BucketGap struct {
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	Required   int     `json:"required"`
	Current    int     `json:"current"`
	Gap        int     `json:"gap"`
	PercentGap float64 `json:"percent_gap"`
}

// ComputeBuckets sums a submission's ranks per bucket. A nil submission counts as empty.
func ComputeBuckets(sub *submission.Submission, buckets []policy.Bucket) []BucketGap {
	gaps := make([]BucketGap, 0, len(buckets))
	for _, b := range buckets {
		var current int
		if sub != nil {
			for _, rank := range b.Ranks {
				current += sub.Data.Count(rank)
			}
		}
		g := BucketGap{Key: b.Key, Name: b.Name, Required: b.Required, Current: current}
		g.Gap = shortfall(b.Required, current)
		g.PercentGap = percent(g.Gap, b.Required)
		gaps = append(gaps, g)
	}
	return gaps
}
