package dataprocessing

import (
	"math"
	"sort"

	"trackpulse/pkg/contracts/domain"
)

// Aggregate computes the dataset-wide statistics and back-assigns each
// record's performance category from the quartile thresholds. It is the final
// pipeline stage: after it returns the Dataset is complete.
func Aggregate(ds *domain.Dataset) {
	var engagementSum float64
	finiteRatios := make([]float64, 0, len(ds.Records))

	for _, rec := range ds.Records {
		ds.Totals.Plays += rec.Plays
		ds.Totals.Likes += rec.Likes
		ds.Totals.Reposts += rec.Reposts
		ds.Totals.Comments += rec.Comments
		engagementSum += rec.EngagementRatePct

		if rec.PlayLikeRatio.IsFinite() {
			finiteRatios = append(finiteRatios, rec.PlayLikeRatio.Value)
		}
	}

	if n := len(ds.Records); n > 0 {
		ds.AvgEngagementPct = engagementSum / float64(n)
	}

	if len(finiteRatios) > 0 {
		sort.Float64s(finiteRatios)
		ds.Thresholds = &domain.Thresholds{
			Q1: percentileValue(finiteRatios, 0.25),
			Q2: percentileValue(finiteRatios, 0.50),
			Q3: percentileValue(finiteRatios, 0.75),
		}
		m := median(finiteRatios)
		ds.MedianPlayLikeRatio = &m
	}

	for i := range ds.Records {
		ds.Records[i].Category = categorize(ds.Records[i], ds.Thresholds)
	}
}

// categorize assigns the performance bucket for a single record.
//
// Priority: a non-finite ratio is always Poor; zero likes is always Poor
// (unconditional even though it is only reachable alongside zero plays);
// without dataset thresholds everything else is Average; otherwise the
// finite ratio is bucketed against Q1/Q2/Q3, lower being better.
func categorize(rec domain.TrackRecord, th *domain.Thresholds) domain.Category {
	if !rec.PlayLikeRatio.IsFinite() {
		return domain.CategoryPoor
	}
	if rec.Likes == 0 {
		return domain.CategoryPoor
	}
	if th == nil {
		return domain.CategoryAverage
	}

	ratio := rec.PlayLikeRatio.Value
	switch {
	case ratio <= th.Q1:
		return domain.CategoryExcellent
	case ratio <= th.Q2:
		return domain.CategoryGood
	case ratio <= th.Q3:
		return domain.CategoryAverage
	default:
		return domain.CategoryPoor
	}
}

// percentileValue calculates the value at a given percentile of an
// ascending-sorted slice using linear interpolation between the floor and
// ceil indices of p*(n-1).
func percentileValue(sorted []float64, percentile float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if percentile <= 0 {
		return sorted[0]
	}
	if percentile >= 1 {
		return sorted[n-1]
	}

	index := percentile * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// median computes the standard median of an ascending-sorted slice: the
// middle value, or the mean of the two middle values for even counts.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
