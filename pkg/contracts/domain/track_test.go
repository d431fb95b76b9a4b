package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRank(t *testing.T) {
	assert.Equal(t, 0, CategoryExcellent.Rank())
	assert.Equal(t, 1, CategoryGood.Rank())
	assert.Equal(t, 2, CategoryAverage.Rank())
	assert.Equal(t, 3, CategoryPoor.Rank())

	assert.True(t, CategoryGood.IsValid())
	assert.False(t, Category("Stellar").IsValid())
}

func TestPlayLikeRatioJSON(t *testing.T) {
	tests := []struct {
		name  string
		ratio PlayLikeRatio
		want  string
	}{
		{"finite", FiniteRatio(11.83), "11.83"},
		{"infinite", InfiniteRatio(), `"Infinity"`},
		{"undefined", UndefinedRatio(), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.ratio)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back PlayLikeRatio
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.ratio, back)
		})
	}

	var r PlayLikeRatio
	assert.Error(t, json.Unmarshal([]byte(`"huge"`), &r))
}

func TestQualityFlags(t *testing.T) {
	var q QualityFlags
	assert.False(t, q.HasIssues())

	q.Flag("likes")
	q.Flag("plays")
	q.Flag("likes")

	assert.True(t, q.HasIssues())
	assert.Equal(t, []string{"likes", "plays"}, q.InvalidFields)
}

func TestDaysSinceUploadEffective(t *testing.T) {
	assert.Equal(t, 1, TrackRecord{}.DaysSinceUploadEffective())

	zero := 0
	assert.Equal(t, 1, TrackRecord{DaysSinceUpload: &zero}.DaysSinceUploadEffective())

	week := 7
	assert.Equal(t, 7, TrackRecord{DaysSinceUpload: &week}.DaysSinceUploadEffective())
}

func TestDatasetLen(t *testing.T) {
	var ds Dataset
	assert.Equal(t, 0, ds.Len())

	ds.Records = append(ds.Records, TrackRecord{Title: "a"}, TrackRecord{Title: "b"})
	assert.Equal(t, 2, ds.Len())
}
