// Package pipeline orchestrates the schema-inference and normalization
// stages: decode → delimiter detection → header/units location → column
// normalization → tabular load → value coercion → range clamping. Each stage
// is a pure function of its input; a Pipeline holds only configuration and is
// safe for concurrent use across logs.
package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/decode"
	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/model"
	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/normalize"
	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/parse"
)

// Structural failures. Everything else the pipeline recovers from locally:
// bad cells become missing, incomplete rows are dropped and counted.
var (
	ErrEmptyInput   = errors.New("empty input")
	ErrNoHeader     = parse.ErrNoHeader
	ErrNoTimeColumn = errors.New("no resolvable time column")
)

// Config holds the per-pipeline parameters.
type Config struct {
	// Encoding is the declared text encoding of uploaded bytes ("" = UTF-8).
	Encoding string
	// MinFallbackFields overrides the field-count heuristic minimum
	// (0 = default).
	MinFallbackFields int
}

// Result is a successful parse: the normalized table plus the context and
// summary counts the caller may want to report.
type Result struct {
	Table   *model.Table
	Context model.ParseContext
	Stats   model.Stats
}

// Pipeline runs the full normalization sequence on raw uploaded bytes.
type Pipeline struct {
	cfg Config
}

// New creates a Pipeline with the given config.
func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Run parses one uploaded log. Structural failures (empty input, no header,
// no time column) return an error wrapping one of the sentinel errors above;
// malformed but non-empty input never fails outright.
func (p *Pipeline) Run(content []byte) (*Result, error) {
	raw := model.RawLog{Lines: decode.Lines(content, p.cfg.Encoding)}
	return p.RunLines(raw)
}

// RunLines parses an already-decoded log.
func (p *Pipeline) RunLines(raw model.RawLog) (*Result, error) {
	if len(raw.Lines) == 0 {
		return nil, fmt.Errorf("pipeline: %w", ErrEmptyInput)
	}

	delim := parse.DetectDelimiter(raw.Lines)
	loc, err := parse.LocateHeader(raw.Lines, delim, p.cfg.MinFallbackFields)
	if err != nil {
		return nil, fmt.Errorf("pipeline: locate header: %w", err)
	}
	ctx := model.ParseContext{Delimiter: delim, HeaderIdx: loc.Header, UnitsIdx: loc.Units}

	schema := buildSchema(raw.Lines, ctx)
	stats := model.Stats{Delimiter: delim, HeaderIndex: loc.Header, UnitsIndex: loc.Units}

	table := loadRows(raw.Lines, ctx, schema, &stats)

	// Resolve and rename the time axis before unit conversion so a column
	// identified only by its s/ms unit still gets the ms divide.
	timeIdx, ok := resolveTimeColumn(table.Schema)
	if !ok {
		return nil, fmt.Errorf("pipeline: %w", ErrNoTimeColumn)
	}
	table.Schema[timeIdx].Name = "time"

	convertUnits(table)
	dropIncompleteRows(table, timeIdx, &stats)
	normalize.ClampTable(table)
	stats.RowsRetained = len(table.Rows)

	return &Result{Table: table, Context: ctx, Stats: stats}, nil
}

// buildSchema derives canonical column names and resolved units from the
// header row and the optional units row. Names go through the snake_case
// transform and left-to-right collision suffixing; units resolve positionally.
func buildSchema(lines []string, ctx model.ParseContext) model.ColumnSchema {
	headerTokens := parse.SplitTokens(lines[ctx.HeaderIdx], ctx.Delimiter)
	names := make([]string, len(headerTokens))
	for i, tok := range headerTokens {
		names[i] = normalize.SnakeCase(strings.TrimSpace(tok))
	}
	names = normalize.DedupeNames(names)

	var unitTokens []string
	if ctx.UnitsIdx >= 0 {
		unitTokens = parse.SplitTokens(lines[ctx.UnitsIdx], ctx.Delimiter)
	}

	schema := make(model.ColumnSchema, len(names))
	for i, name := range names {
		unit := ""
		if i < len(unitTokens) {
			unit = normalize.ResolveUnit(unitTokens[i])
		}
		schema[i] = model.Column{Name: name, Unit: unit}
	}
	return schema
}

// loadRows reads the data lines after the header (skipping the units row)
// and coerces every cell. Rows with more fields than the header are skipped;
// short rows are padded with missing cells.
func loadRows(lines []string, ctx model.ParseContext, schema model.ColumnSchema, stats *model.Stats) *model.Table {
	dataStart := ctx.HeaderIdx + 1
	if ctx.UnitsIdx >= 0 {
		dataStart = ctx.UnitsIdx + 1
	}
	if dataStart > len(lines) {
		dataStart = len(lines)
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines[dataStart:], "\n")))
	r.Comma = ctx.Delimiter
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	table := &model.Table{Schema: schema}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue // bad line: skip, keep going
			}
			break
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) > len(schema) {
			stats.RowsBadLayout++
			continue
		}
		stats.RowsLoaded++
		row := make([]model.Value, len(schema))
		for i := range schema {
			if i < len(record) {
				row[i] = normalize.CoerceCell(record[i])
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// convertUnits applies the unit-driven scalar conversion per column.
func convertUnits(t *model.Table) {
	for i, col := range t.Schema {
		conv := normalize.ConverterFor(col.Name, col.Unit)
		for _, row := range t.Rows {
			row[i] = conv(row[i])
		}
	}
}

// resolveTimeColumn picks the designated time column: exact name "time",
// else the first name starting with "time", else "timestamp", else the first
// column whose declared unit is s or ms.
func resolveTimeColumn(schema model.ColumnSchema) (int, bool) {
	if i := schema.Index("time"); i >= 0 {
		return i, true
	}
	for i, col := range schema {
		if strings.HasPrefix(col.Name, "time") {
			return i, true
		}
	}
	if i := schema.Index("timestamp"); i >= 0 {
		return i, true
	}
	for i, col := range schema {
		if col.Unit == normalize.UnitSec || col.Unit == normalize.UnitMil {
			return i, true
		}
	}
	return -1, false
}

// dropIncompleteRows enforces strict total-row validity: rows missing time
// go first, then any row still carrying a missing value. Counted, not
// surfaced per row.
func dropIncompleteRows(t *model.Table, timeIdx int, stats *model.Stats) {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if row[timeIdx].Missing() {
			stats.RowsMissingTime++
			continue
		}
		complete := true
		for _, v := range row {
			if v.Missing() {
				complete = false
				break
			}
		}
		if !complete {
			stats.RowsIncomplete++
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept
}
