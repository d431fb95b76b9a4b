package dataprocessing

import "strings"

// canonicalFieldCount is the fixed arity of the track statistics schema:
// {title, posted, likes, reposts, plays, comments}.
const canonicalFieldCount = 6

// Positional meaning of the six canonical columns.
const (
	colTitle = iota
	colPosted
	colLikes
	colReposts
	colPlays
	colComments
)

// canonicalHeader is the header row of the input schema. Rows equal to it
// (case-insensitively, exact order) are discarded as duplicate headers.
var canonicalHeader = [canonicalFieldCount]string{
	"track", "posted", "likes", "reposts", "plays", "comments",
}

// Field names used in data-quality flags.
const (
	FieldLikes    = "likes"
	FieldReposts  = "reposts"
	FieldPlays    = "plays"
	FieldComments = "comments"

	// FlagPlaysZeroForRates marks records whose rate metrics defaulted to 0
	// because the play count was zero.
	FlagPlaysZeroForRates = "plays_zero_for_rates"
)

// Options configures row processing behavior.
type Options struct {
	// MissingAsZero coerces unparsable or missing numeric fields to 0 and
	// flags them, instead of dropping the row. Default true.
	MissingAsZero bool

	// ShowQuality flags records whose rate metrics were zeroed out by a zero
	// play count. Default true.
	ShowQuality bool
}

// DefaultOptions returns the default processing options
func DefaultOptions() Options {
	return Options{
		MissingAsZero: true,
		ShowQuality:   true,
	}
}

// rawRow is one tokenized row padded/truncated to the canonical six
// positions. Fixed arity keeps positional access honest: there is no index
// into a rawRow that can be out of range.
type rawRow [canonicalFieldCount]string

// makeRawRow pads missing trailing fields with empty strings and drops any
// surplus fields beyond the canonical six.
func makeRawRow(fields []string) rawRow {
	var r rawRow
	for i := 0; i < canonicalFieldCount && i < len(fields); i++ {
		r[i] = fields[i]
	}
	return r
}

// isHeader reports whether the row repeats the canonical header
func (r rawRow) isHeader() bool {
	for i, want := range canonicalHeader {
		if !strings.EqualFold(strings.TrimSpace(r[i]), want) {
			return false
		}
	}
	return true
}

// isBlank reports whether every field is empty or whitespace
func (r rawRow) isBlank() bool {
	for _, f := range r {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
