package parse

import "strings"

// sniffLines bounds how much of the file the delimiter sniffer samples.
const sniffLines = 30

// candidateDelims in tie-break order. Comma is both the first candidate and
// the fallback when nothing gives a confident signal.
var candidateDelims = []rune{',', '\t', ';', '|'}

// DetectDelimiter guesses the field separator from the first lines of the log.
// For each candidate it counts fields per sampled line and scores how many
// lines agree on the modal count; the most consistent multi-column candidate
// wins. Total function: empty input, single-column data, and ties all resolve
// without error (falling back to comma).
func DetectDelimiter(lines []string) rune {
	sample := lines
	if len(sample) > sniffLines {
		sample = sample[:sniffLines]
	}

	best := ','
	bestScore := 0
	for _, d := range candidateDelims {
		score := consistency(sample, d)
		if score > bestScore {
			best = d
			bestScore = score
		}
	}
	return best
}

// consistency returns the number of sampled lines agreeing on the most common
// multi-column field count for delimiter d, or 0 if d never splits a line.
func consistency(sample []string, d rune) int {
	counts := make(map[int]int)
	for _, line := range sample {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := strings.Count(line, string(d)) + 1
		if n < 2 {
			continue
		}
		counts[n]++
	}
	mode := 0
	for _, c := range counts {
		if c > mode {
			mode = c
		}
	}
	return mode
}
