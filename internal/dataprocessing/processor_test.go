package dataprocessing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackpulse/pkg/contracts/domain"
)

// fixedNow is the reference clock shared by processor tests.
var fixedNow = func() time.Time {
	return time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
}

func newTestProcessor(opts Options) *Processor {
	return NewProcessor(nil, opts).WithClock(fixedNow)
}

func processText(t *testing.T, text string, opts Options) *domain.Dataset {
	t.Helper()
	return newTestProcessor(opts).Process(context.Background(), Tokenize(text))
}

func TestProcessStructuralFiltering(t *testing.T) {
	t.Run("duplicate headers are dropped wherever they appear", func(t *testing.T) {
		text := "TRACK,POSTED,LIKES,REPOSTS,PLAYS,COMMENTS\n" +
			"First,2 days ago,10,1,100,2\n" +
			"Track,Posted,Likes,Reposts,Plays,Comments\n" +
			"Second,3 days ago,20,2,200,4\n" +
			"track,posted,likes,reposts,plays,comments\n"

		ds := processText(t, text, DefaultOptions())
		require.Equal(t, 2, ds.Len())
		assert.Equal(t, "First", ds.Records[0].Title)
		assert.Equal(t, "Second", ds.Records[1].Title)
	})

	t.Run("blank rows are dropped", func(t *testing.T) {
		text := "First,2 days ago,10,1,100,2\n,,,,,\n   ,  ,,,,\nSecond,3 days ago,20,2,200,4\n"
		ds := processText(t, text, DefaultOptions())
		assert.Equal(t, 2, ds.Len())
	})

	t.Run("untitled rows are dropped even with populated counts", func(t *testing.T) {
		text := "  ,2 days ago,10,1,100,2\nReal,3 days ago,20,2,200,4\n"
		ds := processText(t, text, DefaultOptions())
		require.Equal(t, 1, ds.Len())
		assert.Equal(t, "Real", ds.Records[0].Title)
	})

	t.Run("short rows are padded to six fields", func(t *testing.T) {
		ds := processText(t, "Sparse,2 days ago,10\n", DefaultOptions())
		require.Equal(t, 1, ds.Len())
		rec := ds.Records[0]
		assert.Equal(t, int64(10), rec.Likes)
		assert.Equal(t, int64(0), rec.Plays)
		assert.Contains(t, rec.Quality.InvalidFields, FieldReposts)
		assert.Contains(t, rec.Quality.InvalidFields, FieldPlays)
		assert.Contains(t, rec.Quality.InvalidFields, FieldComments)
	})

	t.Run("surplus fields are truncated", func(t *testing.T) {
		ds := processText(t, "Wide,2 days ago,10,1,100,2,extra,extra\n", DefaultOptions())
		require.Equal(t, 1, ds.Len())
		assert.Equal(t, int64(2), ds.Records[0].Comments)
	})

	t.Run("source line numbers are physical row indices", func(t *testing.T) {
		text := "TRACK,POSTED,LIKES,REPOSTS,PLAYS,COMMENTS\nFirst,2 days ago,10,1,100,2\n"
		ds := processText(t, text, DefaultOptions())
		require.Equal(t, 1, ds.Len())
		assert.Equal(t, 2, ds.Records[0].SourceLine)
	})
}

func TestProcessCoercion(t *testing.T) {
	t.Run("unparsable counts coerce to zero and flag", func(t *testing.T) {
		ds := processText(t, "Song,2 days ago,Repost,1,14.2K,2\n", DefaultOptions())
		require.Equal(t, 1, ds.Len())
		rec := ds.Records[0]
		assert.Equal(t, int64(0), rec.Likes)
		assert.Equal(t, int64(14200), rec.Plays)
		assert.Equal(t, []string{FieldLikes}, rec.Quality.InvalidFields)
	})

	t.Run("missingAsZero disabled drops rows with unparsable counts", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MissingAsZero = false
		text := "Bad,2 days ago,Repost,1,100,2\nGood,3 days ago,5,1,100,2\n"
		ds := processText(t, text, opts)
		require.Equal(t, 1, ds.Len())
		assert.Equal(t, "Good", ds.Records[0].Title)
	})

	t.Run("unparsable posted leaves date fields absent", func(t *testing.T) {
		ds := processText(t, "Song,yesterday,10,1,100,2\n", DefaultOptions())
		require.Equal(t, 1, ds.Len())
		rec := ds.Records[0]
		assert.Empty(t, rec.PostedISO)
		assert.Nil(t, rec.DaysSinceUpload)
		// Unparsable dates are a soft miss, not a quality flag.
		assert.Empty(t, rec.Quality.InvalidFields)
	})

	t.Run("parsable posted yields iso date and day count", func(t *testing.T) {
		ds := processText(t, "Song,8 days ago,10,1,100,2\n", DefaultOptions())
		require.Equal(t, 1, ds.Len())
		rec := ds.Records[0]
		assert.Equal(t, "2025-07-07", rec.PostedISO)
		require.NotNil(t, rec.DaysSinceUpload)
		assert.Equal(t, 8, *rec.DaysSinceUpload)
	})
}

func TestProcessMetricDerivation(t *testing.T) {
	t.Run("finite ratio and percentages", func(t *testing.T) {
		ds := processText(t, "Song,4 days ago,20,5,200,15\n", DefaultOptions())
		require.Equal(t, 1, ds.Len())
		rec := ds.Records[0]
		require.True(t, rec.PlayLikeRatio.IsFinite())
		assert.InDelta(t, 10.0, rec.PlayLikeRatio.Value, 1e-9)
		assert.InDelta(t, 20.0, rec.EngagementRatePct, 1e-9) // (20+5+15)/200*100
		assert.InDelta(t, 10.0, rec.LikePct, 1e-9)
		assert.InDelta(t, 50.0, rec.PlaysPerDay, 1e-9)
	})

	t.Run("zero likes with plays yields infinite ratio", func(t *testing.T) {
		ds := processText(t, "Song,4 days ago,0,0,200,0\n", DefaultOptions())
		rec := ds.Records[0]
		assert.Equal(t, domain.RatioInfinite, rec.PlayLikeRatio.State)
	})

	t.Run("zero likes and zero plays yields undefined ratio and quality flag", func(t *testing.T) {
		ds := processText(t, "Song,4 days ago,0,0,0,0\n", DefaultOptions())
		rec := ds.Records[0]
		assert.Equal(t, domain.RatioUndefined, rec.PlayLikeRatio.State)
		assert.Zero(t, rec.EngagementRatePct)
		assert.Zero(t, rec.LikePct)
		assert.Contains(t, rec.Quality.InvalidFields, FlagPlaysZeroForRates)
	})

	t.Run("showQuality disabled suppresses the zero-plays flag", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ShowQuality = false
		ds := processText(t, "Song,4 days ago,0,0,0,0\n", opts)
		assert.Empty(t, ds.Records[0].Quality.InvalidFields)
	})

	t.Run("plays per day defaults divisor to one", func(t *testing.T) {
		// Unparsable date: divisor 1.
		ds := processText(t, "Song,unknown,10,0,300,0\n", DefaultOptions())
		assert.InDelta(t, 300.0, ds.Records[0].PlaysPerDay, 1e-9)

		// Zero days since upload also clamps to 1.
		ds = processText(t, "Song,0 days ago,10,0,300,0\n", DefaultOptions())
		assert.InDelta(t, 300.0, ds.Records[0].PlaysPerDay, 1e-9)
	})
}

func TestAggregate(t *testing.T) {
	t.Run("totals mean median and thresholds", func(t *testing.T) {
		// Ratios: 10, 20, 30, 40 -> Q1=17.5, Q2=25, Q3=32.5, median=25.
		text := "A,1 day ago,10,0,100,0\n" +
			"B,1 day ago,10,0,200,0\n" +
			"C,1 day ago,10,0,300,0\n" +
			"D,1 day ago,10,0,400,0\n"
		ds := processText(t, text, DefaultOptions())
		require.Equal(t, 4, ds.Len())

		assert.Equal(t, int64(1000), ds.Totals.Plays)
		assert.Equal(t, int64(40), ds.Totals.Likes)

		require.NotNil(t, ds.Thresholds)
		assert.InDelta(t, 17.5, ds.Thresholds.Q1, 1e-9)
		assert.InDelta(t, 25.0, ds.Thresholds.Q2, 1e-9)
		assert.InDelta(t, 32.5, ds.Thresholds.Q3, 1e-9)

		require.NotNil(t, ds.MedianPlayLikeRatio)
		assert.InDelta(t, 25.0, *ds.MedianPlayLikeRatio, 1e-9)

		assert.Equal(t, domain.CategoryExcellent, ds.Records[0].Category)
		assert.Equal(t, domain.CategoryGood, ds.Records[1].Category)
		assert.Equal(t, domain.CategoryAverage, ds.Records[2].Category)
		assert.Equal(t, domain.CategoryPoor, ds.Records[3].Category)
	})

	t.Run("odd count median is middle value", func(t *testing.T) {
		text := "A,1 day ago,10,0,100,0\n" +
			"B,1 day ago,10,0,200,0\n" +
			"C,1 day ago,10,0,300,0\n"
		ds := processText(t, text, DefaultOptions())
		require.NotNil(t, ds.MedianPlayLikeRatio)
		assert.InDelta(t, 20.0, *ds.MedianPlayLikeRatio, 1e-9)
	})

	t.Run("infinite and undefined ratios stay out of thresholds", func(t *testing.T) {
		text := "A,1 day ago,10,0,100,0\n" + // finite 10
			"B,1 day ago,0,0,500,0\n" + // infinite
			"C,1 day ago,0,0,0,0\n" // undefined
		ds := processText(t, text, DefaultOptions())
		require.NotNil(t, ds.MedianPlayLikeRatio)
		assert.InDelta(t, 10.0, *ds.MedianPlayLikeRatio, 1e-9)
		assert.Equal(t, domain.CategoryPoor, ds.Records[1].Category)
		assert.Equal(t, domain.CategoryPoor, ds.Records[2].Category)
	})

	t.Run("empty dataset has zero aggregates and absent thresholds", func(t *testing.T) {
		for _, text := range []string{
			"",
			"TRACK,POSTED,LIKES,REPOSTS,PLAYS,COMMENTS\n",
			",,,,,\n,,,,,\n",
		} {
			ds := processText(t, text, DefaultOptions())
			assert.Zero(t, ds.Len())
			assert.Zero(t, ds.AvgEngagementPct)
			assert.Nil(t, ds.MedianPlayLikeRatio)
			assert.Nil(t, ds.Thresholds)
		}
	})

	t.Run("no finite ratios leaves remaining records average", func(t *testing.T) {
		// Only infinite/undefined ratios exist, so thresholds are absent.
		// Records with likes > 0 would fall back to Average; here every
		// record is Poor by the non-finite or likes-zero rules.
		text := "A,1 day ago,0,0,100,0\nB,1 day ago,0,0,0,0\n"
		ds := processText(t, text, DefaultOptions())
		require.Nil(t, ds.Thresholds)
		for _, rec := range ds.Records {
			assert.Equal(t, domain.CategoryPoor, rec.Category)
		}
	})

	t.Run("average engagement is the arithmetic mean", func(t *testing.T) {
		// Engagement rates: 10% and 30%.
		text := "A,1 day ago,10,0,100,0\nB,1 day ago,30,0,100,0\n"
		ds := processText(t, text, DefaultOptions())
		assert.InDelta(t, 20.0, ds.AvgEngagementPct, 1e-9)
	})
}

// TestCategoryMonotonicity checks that for records with likes > 0, a smaller
// finite ratio never lands in a worse bucket than a larger one.
func TestCategoryMonotonicity(t *testing.T) {
	var text string
	for i := 1; i <= 12; i++ {
		// Ratios 10, 20, ... 120.
		text += fmt.Sprintf("T%02d,1 day ago,10,0,%d,0\n", i, i*100)
	}
	ds := processText(t, text, DefaultOptions())
	require.Equal(t, 12, ds.Len())

	prevRank := -1
	for _, rec := range ds.Records {
		rank := rec.Category.Rank()
		assert.GreaterOrEqual(t, rank, prevRank,
			"category rank must not improve as the ratio grows (track %s)", rec.Title)
		prevRank = rank
	}
}

// TestLikesZeroOverride checks that a record with zero likes is always Poor,
// regardless of how the rest of the dataset shapes the thresholds.
func TestLikesZeroOverride(t *testing.T) {
	text := "A,1 day ago,100,0,100,0\n" + // ratio 1
		"B,1 day ago,100,0,200,0\n" +
		"C,1 day ago,0,0,0,0\n" // likes 0
	ds := processText(t, text, DefaultOptions())
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, domain.CategoryPoor, ds.Records[2].Category)
}
