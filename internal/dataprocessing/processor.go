package dataprocessing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"trackpulse/pkg/contracts/domain"
)

// Processor turns tokenized CSV rows into a finished Dataset. One Process
// call owns its output completely: no state is shared between invocations and
// the returned Dataset is never mutated afterwards.
type Processor struct {
	logger *slog.Logger
	opts   Options

	// now supplies the reference time for relative-date resolution. Injected
	// so tests can pin the clock.
	now func() time.Time
}

// NewProcessor creates a processor with the given options. A nil logger falls
// back to slog.Default.
func NewProcessor(logger *slog.Logger, opts Options) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger: logger.With(slog.String("component", "processor")),
		opts:   opts,
		now:    time.Now,
	}
}

// WithClock overrides the reference clock. Intended for tests.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// Process consumes tokenized rows and produces a Dataset with categories
// assigned from dataset-wide quartiles. Structural noise (duplicate header
// rows, blank rows, untitled rows) is filtered silently; malformed numeric
// and date fields degrade per the coercion policy instead of failing.
func (p *Processor) Process(ctx context.Context, rows [][]string) *domain.Dataset {
	now := p.now()
	records := make([]domain.TrackRecord, 0, len(rows))

	dropped := struct{ headers, blanks, untitled, unparsable int }{}

	for i, fields := range rows {
		row := makeRawRow(fields)

		switch {
		case row.isHeader():
			dropped.headers++
			continue
		case row.isBlank():
			dropped.blanks++
			continue
		}

		title := strings.TrimSpace(row[colTitle])
		if title == "" {
			// Untitled rows never materialize, even with populated counts.
			dropped.untitled++
			continue
		}

		rec, ok := p.buildRecord(row, i+1, title, now)
		if !ok {
			dropped.unparsable++
			continue
		}
		records = append(records, rec)
	}

	ds := &domain.Dataset{Records: records}
	Aggregate(ds)

	p.logger.InfoContext(ctx, "processed track rows",
		slog.Int("input_rows", len(rows)),
		slog.Int("records", len(records)),
		slog.Int("dropped_headers", dropped.headers),
		slog.Int("dropped_blank", dropped.blanks),
		slog.Int("dropped_untitled", dropped.untitled),
		slog.Int("dropped_unparsable", dropped.unparsable))

	return ds
}

// buildRecord normalizes one surviving row. The bool return is false only
// when MissingAsZero is disabled and a count field failed to parse, in which
// case the row is dropped rather than materialized with absent counts.
func (p *Processor) buildRecord(row rawRow, line int, title string, now time.Time) (domain.TrackRecord, bool) {
	rec := domain.TrackRecord{
		SourceLine: line,
		Title:      title,
	}

	if iso, days, ok := ParseRelativeDate(row[colPosted], now); ok {
		rec.PostedISO = iso
		d := days
		rec.DaysSinceUpload = &d
	}

	counts := []struct {
		raw  string
		name string
		dst  *int64
	}{
		{row[colLikes], FieldLikes, &rec.Likes},
		{row[colReposts], FieldReposts, &rec.Reposts},
		{row[colPlays], FieldPlays, &rec.Plays},
		{row[colComments], FieldComments, &rec.Comments},
	}
	for _, c := range counts {
		v, ok := ParseCount(c.raw)
		if !ok {
			if !p.opts.MissingAsZero {
				return domain.TrackRecord{}, false
			}
			rec.Quality.Flag(c.name)
			v = 0
		}
		*c.dst = v
	}

	p.deriveMetrics(&rec)
	return rec, true
}

// deriveMetrics fills the per-record engagement metrics in priority order.
func (p *Processor) deriveMetrics(rec *domain.TrackRecord) {
	switch {
	case rec.Likes == 0 && rec.Plays > 0:
		rec.PlayLikeRatio = domain.InfiniteRatio()
	case rec.Likes > 0:
		rec.PlayLikeRatio = domain.FiniteRatio(float64(rec.Plays) / float64(rec.Likes))
	default:
		rec.PlayLikeRatio = domain.UndefinedRatio()
	}

	if rec.Plays > 0 {
		rec.EngagementRatePct = float64(rec.Likes+rec.Reposts+rec.Comments) / float64(rec.Plays) * 100
		rec.LikePct = float64(rec.Likes) / float64(rec.Plays) * 100
	} else {
		rec.EngagementRatePct = 0
		rec.LikePct = 0
		if p.opts.ShowQuality {
			rec.Quality.Flag(FlagPlaysZeroForRates)
		}
	}

	rec.PlaysPerDay = float64(rec.Plays) / float64(rec.DaysSinceUploadEffective())
}
