package domain

import (
	"encoding/json"
	"fmt"
)

// Category buckets a track's performance relative to the rest of its dataset.
// Lower play/like ratios place a track in a better bucket.
type Category string

const (
	CategoryExcellent Category = "Excellent"
	CategoryGood      Category = "Good"
	CategoryAverage   Category = "Average"
	CategoryPoor      Category = "Poor"
)

// Rank returns the ordinal position of the category, Excellent being best (0).
func (c Category) Rank() int {
	switch c {
	case CategoryExcellent:
		return 0
	case CategoryGood:
		return 1
	case CategoryAverage:
		return 2
	case CategoryPoor:
		return 3
	default:
		return 4
	}
}

// IsValid checks if the category is one of the four known buckets
func (c Category) IsValid() bool {
	return c.Rank() < 4
}

// RatioState distinguishes the three shapes a play/like ratio can take.
type RatioState int

const (
	// RatioUndefined means the ratio could not be formed (likes and plays both zero)
	RatioUndefined RatioState = iota
	// RatioFinite means the ratio is a plain number
	RatioFinite
	// RatioInfinite means plays exist but likes are zero
	RatioInfinite
)

// PlayLikeRatio is a tagged play/like ratio value. A tagged representation is
// used instead of floating-point infinity so the sentinel can never leak into
// sums or means by accident.
type PlayLikeRatio struct {
	Value float64
	State RatioState
}

// FiniteRatio returns a finite play/like ratio
func FiniteRatio(v float64) PlayLikeRatio {
	return PlayLikeRatio{Value: v, State: RatioFinite}
}

// InfiniteRatio returns the positive-infinity sentinel (plays > 0, likes = 0)
func InfiniteRatio() PlayLikeRatio {
	return PlayLikeRatio{State: RatioInfinite}
}

// UndefinedRatio returns the absent ratio (plays = 0, likes = 0)
func UndefinedRatio() PlayLikeRatio {
	return PlayLikeRatio{State: RatioUndefined}
}

// IsFinite reports whether the ratio is a plain number
func (r PlayLikeRatio) IsFinite() bool {
	return r.State == RatioFinite
}

// MarshalJSON renders finite ratios as numbers, the infinity sentinel as the
// string "Infinity" (JSON has no infinity literal) and the undefined ratio as
// null.
func (r PlayLikeRatio) MarshalJSON() ([]byte, error) {
	switch r.State {
	case RatioFinite:
		return json.Marshal(r.Value)
	case RatioInfinite:
		return json.Marshal("Infinity")
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the three shapes produced by MarshalJSON
func (r *PlayLikeRatio) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*r = UndefinedRatio()
		return nil
	}
	if s == `"Infinity"` {
		*r = InfiniteRatio()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid play/like ratio %q: %w", s, err)
	}
	*r = FiniteRatio(v)
	return nil
}

// QualityFlags records which input fields were coerced or defaulted for a
// record, so the caller can surface data-quality markers next to the row.
type QualityFlags struct {
	InvalidFields []string `json:"invalid_fields,omitempty"`
}

// Flag appends a field name once, preserving first-seen order
func (q *QualityFlags) Flag(field string) {
	for _, f := range q.InvalidFields {
		if f == field {
			return
		}
	}
	q.InvalidFields = append(q.InvalidFields, field)
}

// HasIssues reports whether any field on the record was coerced
func (q QualityFlags) HasIssues() bool {
	return len(q.InvalidFields) > 0
}

// TrackRecord is one normalized row of the track statistics export together
// with its derived engagement metrics. It is a flat, self-contained value;
// Category is only meaningful once the whole dataset has been aggregated.
type TrackRecord struct {
	SourceLine int    `json:"source_line"`
	Title      string `json:"title" validate:"required"`

	// PostedISO is empty and DaysSinceUpload nil when the posted field did
	// not match the relative-date grammar.
	PostedISO       string `json:"posted_iso,omitempty"`
	DaysSinceUpload *int   `json:"days_since_upload,omitempty"`

	Likes    int64 `json:"likes"`
	Reposts  int64 `json:"reposts"`
	Plays    int64 `json:"plays"`
	Comments int64 `json:"comments"`

	PlayLikeRatio     PlayLikeRatio `json:"play_like_ratio"`
	EngagementRatePct float64       `json:"engagement_rate_pct"`
	LikePct           float64       `json:"like_pct"`
	PlaysPerDay       float64       `json:"plays_per_day"`

	Category Category     `json:"category"`
	Quality  QualityFlags `json:"quality"`
}

// DaysSinceUploadEffective returns the divisor used for plays-per-day:
// max(days, 1) when the upload date is known, 1 otherwise.
func (t TrackRecord) DaysSinceUploadEffective() int {
	if t.DaysSinceUpload == nil || *t.DaysSinceUpload < 1 {
		return 1
	}
	return *t.DaysSinceUpload
}
