package dataprocessing

// Tokenize splits raw CSV text into rows of string fields.
//
// Quoting follows RFC 4180: a field may be wrapped in double quotes, a doubled
// quote inside a quoted field is an escaped literal quote, and commas and
// newlines inside quotes are content rather than delimiters. '\r' is ignored
// everywhere so CRLF input tokenizes the same as LF input. A final newline in
// the source produces exactly one synthetic empty row, which is dropped.
//
// Tokenize is purely lexical: it does not pad, truncate or interpret fields,
// and emits whatever field count each source row had. The row processor owns
// column-count normalization.
func Tokenize(text string) [][]string {
	rows := make([][]string, 0, 64)
	row := make([]string, 0, canonicalFieldCount)
	field := make([]rune, 0, 32)
	inQuotes := false

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field = append(field, '"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			if ch == '\r' {
				continue
			}
			field = append(field, ch)
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case ',':
			row = append(row, string(field))
			field = field[:0]
		case '\n':
			row = append(row, string(field))
			field = field[:0]
			rows = append(rows, row)
			row = make([]string, 0, canonicalFieldCount)
		case '\r':
			// swallowed: CRLF and bare CR never terminate a field
		default:
			field = append(field, ch)
		}
	}

	row = append(row, string(field))
	rows = append(rows, row)

	// A trailing newline leaves one empty single-field row at end of stream.
	if n := len(rows); n > 0 {
		last := rows[n-1]
		if len(last) == 1 && last[0] == "" {
			rows = rows[:n-1]
		}
	}

	return rows
}
