// Package raceparse normalizes racing-simulation telemetry logs: delimited
// text with inconsistent headers and embedded unit annotations goes in, a
// clean numeric table with canonical column names and units comes out.
//
// Quick start:
//
//	p := raceparse.New()
//	res, err := p.Parse(content)
//	if err != nil {
//	    // empty input, no locatable header, or no resolvable time column
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Fingerprint, len(res.Table.Rows))
//
// The pipeline detects the field delimiter, locates the true header row (and
// an optional units row) inside noisy preamble, snake_cases and deduplicates
// column names, converts speeds to km/h and times to seconds, coerces dirty
// cells to numbers, clamps declared ranges, and drops incomplete rows.
// Duplicate suppression is evaluated against caller-supplied state: the
// parser computes fingerprints and sample keys but never stores them.
package raceparse
