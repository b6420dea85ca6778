package raceparse

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/dedup"
	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/model"
	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/pipeline"
)

// Parser normalizes raw telemetry logs. A Parser holds only configuration
// and is safe for concurrent use; run one Parse per uploaded log.
type Parser struct {
	pipe      *pipeline.Pipeline
	sessionID string
}

// Result is one normalized session: its identifier, the table, the parse
// summary, and the whole-session fingerprint.
type Result struct {
	SessionID   string
	Table       *model.Table
	Stats       model.Stats
	Fingerprint string
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Parser{
		pipe: pipeline.New(pipeline.Config{
			Encoding:          o.encoding,
			MinFallbackFields: o.minFields,
		}),
		sessionID: o.sessionID,
	}
}

// Parse runs the full normalization pipeline on raw uploaded bytes.
// Structural failures (empty input, no locatable header, no resolvable time
// column) are returned as errors wrapping pipeline.ErrEmptyInput,
// pipeline.ErrNoHeader, or pipeline.ErrNoTimeColumn; everything else is
// recovered cell by cell or row by row and reported in Stats.
func (p *Parser) Parse(content []byte) (*Result, error) {
	res, err := p.pipe.Run(content)
	if err != nil {
		return nil, fmt.Errorf("raceparse: %w", err)
	}
	id := p.sessionID
	if id == "" {
		id = uuid.NewString()
	}
	return &Result{
		SessionID:   id,
		Table:       res.Table,
		Stats:       res.Stats,
		Fingerprint: dedup.Fingerprint(res.Table),
	}, nil
}

// SampleKeys lists the (session, elapsed time) composite keys of every row,
// for recording in the caller's dedup state.
func (r *Result) SampleKeys() []dedup.SampleKey {
	return dedup.Keys(r.Table, r.SessionID)
}

// IsDuplicateSession reports whether this session's fingerprint is already in
// the caller-supplied set.
func (r *Result) IsDuplicateSession(existing map[string]struct{}) bool {
	return dedup.SessionSeen(r.Fingerprint, existing)
}

// DropDuplicateSamples removes rows whose composite key is in existing or
// appeared earlier in the table, keeping the first occurrence per key.
// Returns the number of rows removed.
func (r *Result) DropDuplicateSamples(existing map[dedup.SampleKey]struct{}) int {
	tbl, removed := dedup.DropDuplicateSamples(r.Table, r.SessionID, existing)
	r.Table = tbl
	return removed
}
