package model

// Stats summarizes what the pipeline did to one log. Drops are silent at the
// row level; callers that care read the counts here instead of per-row errors.
type Stats struct {
	Delimiter       rune
	HeaderIndex     int
	UnitsIndex      int // -1 when no units row
	RowsLoaded      int // data rows read from the source
	RowsBadLayout   int // rows skipped for having more fields than the header
	RowsMissingTime int // rows dropped for a missing time value
	RowsIncomplete  int // rows dropped for any other missing value
	RowsRetained    int
}
