package parse

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

const (
	// maxHeaderScan bounds the header search to the top of the file.
	maxHeaderScan = 100
	// MinFallbackFields is the default minimum token count for the
	// field-count heuristic. Behavior-defining; not tuned per source.
	MinFallbackFields = 10
	// maxUnitTokenLen: unit annotations are short ("km/h", "psi", "%").
	maxUnitTokenLen = 10
)

// ErrNoHeader is reported when neither locating heuristic finds a header row.
var ErrNoHeader = errors.New("no header row found")

// timeFieldNames is the vocabulary of time-axis spellings that identify a
// header row for the time-field heuristic.
var timeFieldNames = map[string]struct{}{
	"time":         {},
	"elapsed_time": {},
	"timestamp":    {},
	"elapsed":      {},
	"sessiontime":  {},
	"session time": {},
	"time(s)":      {},
	"time (s)":     {},
}

// Location is the result of header detection. Units is -1 when the line after
// the header does not look like a units row.
type Location struct {
	Header int
	Units  int
}

// headerStrategy is one locating heuristic: it reports a header index or no
// match. Strategies are total; only the orchestrator turns "no match
// anywhere" into an error.
type headerStrategy func(lines []string, delim rune, minFields int) (int, bool)

// strategies in precedence order: the time-field heuristic always wins over
// the field-count fallback when both would match.
var strategies = []headerStrategy{
	headerByTimeField,
	headerByFieldCount,
}

// LocateHeader finds the true header row within the top of the file, plus an
// optional units row on the immediately following line. minFields <= 0 uses
// MinFallbackFields.
func LocateHeader(lines []string, delim rune, minFields int) (Location, error) {
	if minFields <= 0 {
		minFields = MinFallbackFields
	}
	for _, strat := range strategies {
		idx, ok := strat(lines, delim, minFields)
		if !ok {
			continue
		}
		loc := Location{Header: idx, Units: -1}
		if isUnitsRow(lines, idx, delim) {
			loc.Units = idx + 1
		}
		return loc, nil
	}
	return Location{Header: -1, Units: -1}, ErrNoHeader
}

// headerByTimeField qualifies a line as header when its cleaned token set
// intersects the time-field vocabulary and it has more than 3 tokens.
func headerByTimeField(lines []string, delim rune, _ int) (int, bool) {
	for i, line := range scanWindow(lines) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tokens := SplitTokens(line, delim)
		hasTime := false
		for _, tok := range tokens {
			cleaned := stripUnitSuffix(strings.ToLower(tok))
			if _, ok := timeFieldNames[cleaned]; ok {
				hasTime = true
				break
			}
		}
		if hasTime && len(tokens) > 3 {
			return i, true
		}
	}
	return 0, false
}

// headerByFieldCount is the fallback: the first line whose leading token is
// not parseable as a number and that carries at least minFields tokens.
// A quoted numeric-looking label such as "12th" counts as non-numeric purely
// because strconv rejects it; no stricter label test is applied.
func headerByFieldCount(lines []string, delim rune, minFields int) (int, bool) {
	for i, line := range scanWindow(lines) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tokens := SplitTokens(line, delim)
		if len(tokens) == 0 {
			continue
		}
		if _, err := strconv.ParseFloat(tokens[0], 64); err == nil {
			continue // numeric first field: data row
		}
		if len(tokens) >= minFields {
			return i, true
		}
	}
	return 0, false
}

// isUnitsRow checks whether the line after the header is a units row: every
// token short and not purely numeric, and the token count matching the header
// exactly. Both conditions must hold.
func isUnitsRow(lines []string, headerIdx int, delim rune) bool {
	next := headerIdx + 1
	if next >= len(lines) || strings.TrimSpace(lines[next]) == "" {
		return false
	}
	headerTokens := SplitTokens(lines[headerIdx], delim)
	tokens := SplitTokens(lines[next], delim)
	if len(tokens) != len(headerTokens) {
		return false
	}
	for _, tok := range tokens {
		if len(tok) >= maxUnitTokenLen || isDigits(tok) {
			return false
		}
	}
	return true
}

// SplitTokens splits a line by the delimiter, trimming whitespace and
// surrounding quote characters from each field.
func SplitTokens(line string, delim rune) []string {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, string(delim))
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `"'`)
	}
	return parts
}

// stripUnitSuffix drops a trailing parenthesized unit annotation:
// `time (s)` -> `time`.
func stripUnitSuffix(tok string) string {
	if i := strings.IndexByte(tok, '('); i >= 0 {
		tok = tok[:i]
	}
	return strings.TrimSpace(tok)
}

// isDigits reports whether s is purely numeric after ignoring '.' and '-'.
// Empty strings are not numeric.
func isDigits(s string) bool {
	s = strings.NewReplacer(".", "", "-", "").Replace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func scanWindow(lines []string) []string {
	if len(lines) > maxHeaderScan {
		return lines[:maxHeaderScan]
	}
	return lines
}
