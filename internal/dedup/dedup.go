// Package dedup provides the two duplicate-suppression layers: whole-session
// fingerprints and per-sample composite keys. Both are pure comparison
// functions over caller-supplied state; nothing here persists history.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/model"
)

// SampleKey identifies one telemetry sample: the session it belongs to plus
// its elapsed time.
type SampleKey struct {
	SessionID string
	Time      float64
}

// CanonicalCSV serializes a table deterministically: schema column order,
// source row order, shortest round-trip float formatting, missing cells
// empty. Byte-identical tables produce byte-identical serializations.
func CanonicalCSV(t *model.Table) string {
	var b strings.Builder
	for i, col := range t.Schema {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(col.Name)
	}
	b.WriteByte('\n')
	for _, row := range t.Rows {
		for i, v := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			if !v.Missing() {
				b.WriteString(strconv.FormatFloat(v.F, 'g', -1, 64))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Fingerprint computes the session digest: SHA-256 over the canonical
// serialization, hex encoded. Opaque equality key only.
func Fingerprint(t *model.Table) string {
	sum := sha256.Sum256([]byte(CanonicalCSV(t)))
	return hex.EncodeToString(sum[:])
}

// SessionSeen reports whether the fingerprint is already in the caller's
// existing-fingerprint set.
func SessionSeen(fingerprint string, existing map[string]struct{}) bool {
	_, ok := existing[fingerprint]
	return ok
}

// SampleSeen reports whether the composite key is already in the caller's
// existing-key set.
func SampleSeen(key SampleKey, existing map[SampleKey]struct{}) bool {
	_, ok := existing[key]
	return ok
}

// DropDuplicateSamples returns a copy of t without rows whose
// (sessionID, time) key is in existing or occurred earlier in the table.
// First occurrence wins; surviving rows keep their original order. existing
// may be nil and is never mutated. Tables without a time column are returned
// unchanged.
func DropDuplicateSamples(t *model.Table, sessionID string, existing map[SampleKey]struct{}) (*model.Table, int) {
	timeIdx := t.Schema.Index("time")
	if timeIdx < 0 {
		return t, 0
	}

	seen := make(map[SampleKey]struct{}, len(existing)+len(t.Rows))
	for k := range existing {
		seen[k] = struct{}{}
	}

	out := &model.Table{Schema: t.Schema}
	removed := 0
	for _, row := range t.Rows {
		tv := row[timeIdx]
		if tv.Missing() {
			// Retained rows always carry time; tolerate anyway.
			out.Rows = append(out.Rows, row)
			continue
		}
		key := SampleKey{SessionID: sessionID, Time: tv.F}
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, row)
	}
	return out, removed
}

// Keys lists the composite keys of every row in the table, in row order.
func Keys(t *model.Table, sessionID string) []SampleKey {
	timeIdx := t.Schema.Index("time")
	if timeIdx < 0 {
		return nil
	}
	keys := make([]SampleKey, 0, len(t.Rows))
	for _, row := range t.Rows {
		if row[timeIdx].Missing() {
			continue
		}
		keys = append(keys, SampleKey{SessionID: sessionID, Time: row[timeIdx].F})
	}
	return keys
}
