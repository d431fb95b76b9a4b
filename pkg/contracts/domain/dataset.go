package domain

// Totals holds the dataset-wide arithmetic sums
type Totals struct {
	Plays    int64 `json:"plays"`
	Likes    int64 `json:"likes"`
	Reposts  int64 `json:"reposts"`
	Comments int64 `json:"comments"`
}

// Thresholds holds the quartile breakpoints over finite play/like ratios.
// A Dataset carries a nil *Thresholds when no finite ratio exists.
type Thresholds struct {
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
	Q3 float64 `json:"q3"`
}

// Dataset is the finished output of one pipeline invocation over one CSV
// text blob. It is immutable once produced: re-parsing with different options
// yields an entirely new Dataset, never an incremental update.
type Dataset struct {
	Records []TrackRecord `json:"records"`
	Totals  Totals        `json:"totals"`

	AvgEngagementPct float64 `json:"avg_engagement_pct"`

	// MedianPlayLikeRatio is nil when no record has a finite ratio.
	MedianPlayLikeRatio *float64 `json:"median_play_like_ratio,omitempty"`

	// Thresholds is nil when no record has a finite ratio.
	Thresholds *Thresholds `json:"thresholds,omitempty"`
}

// Len returns the number of records in the dataset
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
