package pipeline

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/dedup"
	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/model"
)

func runLines(t *testing.T, cfg Config, lines ...string) *Result {
	t.Helper()
	res, err := New(cfg).RunLines(model.RawLog{Lines: lines})
	if err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}
	return res
}

func TestRunNoisyPreambleWithUnitsRow(t *testing.T) {
	res := runLines(t, Config{MinFallbackFields: 3},
		"garbage,garbage",
		"Time(s),Speed,Throttle",
		"s,mph,%",
		"0.0,60,0.5",
		"1.0,,0.9",
	)

	if res.Context.HeaderIdx != 1 {
		t.Fatalf("expected header at 1, got %d", res.Context.HeaderIdx)
	}
	if res.Context.UnitsIdx != 2 {
		t.Fatalf("expected units at 2, got %d", res.Context.UnitsIdx)
	}

	tbl := res.Table
	if tbl.Schema[0].Name != "time" || tbl.Schema[0].Unit != "s" {
		t.Fatalf("expected time column with unit s, got %+v", tbl.Schema[0])
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("expected 1 retained row (second dropped for missing speed), got %d", len(tbl.Rows))
	}
	if got := tbl.Rows[0][0].F; got != 0.0 {
		t.Fatalf("time must be unconverted seconds, got %v", got)
	}
	if got := tbl.Rows[0][1].F; math.Abs(got-96.5604) > 1e-3 {
		t.Fatalf("60 mph should convert to ~96.56 km/h, got %v", got)
	}
	if res.Stats.RowsIncomplete != 1 || res.Stats.RowsRetained != 1 {
		t.Fatalf("unexpected stats: %+v", res.Stats)
	}
}

func TestRunClampsControlInputs(t *testing.T) {
	res := runLines(t, Config{},
		"Time,Speed,Throttle,Brake",
		"0.0,100,1.4,0.5",
		"0.1,101,-0.2,0.0",
	)
	tbl := res.Table
	thr := tbl.Schema.Index("throttle")
	if tbl.Rows[0][thr].F != 1.0 {
		t.Fatalf("throttle 1.4 should clamp to 1.0, got %v", tbl.Rows[0][thr].F)
	}
	if tbl.Rows[1][thr].F != 0.0 {
		t.Fatalf("throttle -0.2 should clamp to 0.0, got %v", tbl.Rows[1][thr].F)
	}
}

func TestRunDeterministic(t *testing.T) {
	content := []byte("Time,Speed,Throttle,Brake\n0.0,100,0.5,0.0\n0.5,110.5,0.7,0.0\n")
	p := New(Config{})

	a, err := p.Run(content)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := p.Run(content)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if dedup.CanonicalCSV(a.Table) != dedup.CanonicalCSV(b.Table) {
		t.Fatal("identical input must yield byte-identical tables")
	}
	if dedup.Fingerprint(a.Table) != dedup.Fingerprint(b.Table) {
		t.Fatal("identical input must yield identical fingerprints")
	}
}

func TestRunNormalizationIdempotent(t *testing.T) {
	res := runLines(t, Config{},
		"Time,GroundSpeed,Throttle,Brake,TirePressureFL,RPM,Gear,SteerAngle,LatG,LongG",
		"0.0,100,0.5,0.0,27.5,7000,3,0.1,1.2,0.4",
		"0.1,101,0.6,0.0,27.4,7100,3,0.1,1.2,0.4",
	)
	// Re-serialize the normalized table and feed it back through: the second
	// pass must reproduce the table byte for byte.
	again := runLines(t, Config{}, strings.Split(strings.TrimSuffix(dedup.CanonicalCSV(res.Table), "\n"), "\n")...)
	if dedup.CanonicalCSV(again.Table) != dedup.CanonicalCSV(res.Table) {
		t.Fatalf("second pass changed output:\nfirst:  %q\nsecond: %q",
			dedup.CanonicalCSV(res.Table), dedup.CanonicalCSV(again.Table))
	}
}

func TestRunEmptyInput(t *testing.T) {
	_, err := New(Config{}).Run(nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestRunNoHeader(t *testing.T) {
	_, err := New(Config{}).RunLines(model.RawLog{Lines: []string{"1,2,3", "4,5,6"}})
	if !errors.Is(err, ErrNoHeader) {
		t.Fatalf("expected ErrNoHeader, got %v", err)
	}
}

func TestRunNoTimeColumn(t *testing.T) {
	// Header found by the field-count fallback, but no column resolves to a
	// time axis by name or unit.
	_, err := New(Config{}).RunLines(model.RawLog{Lines: []string{
		"rpm,gear,speed,throttle,brake,clutch,steer,lat,long,yaw",
		"7000,3,180,1.0,0.0,0.0,0.1,52.07,-1.01,0.2",
	}})
	if !errors.Is(err, ErrNoTimeColumn) {
		t.Fatalf("expected ErrNoTimeColumn, got %v", err)
	}
}

func TestRunTimeColumnByUnit(t *testing.T) {
	// No time-ish name anywhere; the s-unit column is the last resort.
	res := runLines(t, Config{},
		"rpm,gear,speed,throttle,brake,clutch,steer,lat,long,elapsed_x",
		"1/min,no,km/h,%,%,%,deg,deg,deg,s",
		"7000,3,180,1.0,0.0,0.0,0.1,52.07,-1.01,0.5",
	)
	if res.Table.Schema.Index("time") < 0 {
		t.Fatalf("expected a column renamed to time, schema: %+v", res.Table.Schema)
	}
}

func TestRunMillisecondTime(t *testing.T) {
	res := runLines(t, Config{},
		"Time,Speed,Throttle,Brake",
		"ms,km/h,%,%",
		"1500,100,0.5,0.0",
	)
	if got := res.Table.Rows[0][0].F; got != 1.5 {
		t.Fatalf("1500 ms should be 1.5 s, got %v", got)
	}
}

func TestRunDuplicateColumnNames(t *testing.T) {
	res := runLines(t, Config{},
		"Time,Speed,Speed,Brake",
		"0.0,100,101,0.0",
	)
	s := res.Table.Schema
	if s[1].Name != "speed" || s[2].Name != "speed_1" {
		t.Fatalf("expected speed/speed_1, got %q/%q", s[1].Name, s[2].Name)
	}
}

func TestRunSkipsOverlongRows(t *testing.T) {
	res := runLines(t, Config{},
		"Time,Speed,Throttle,Brake",
		"0.0,100,0.5,0.0",
		"0.1,100,0.5,0.0,extra,extra",
		"0.2,100,0.5,0.0",
	)
	if res.Stats.RowsBadLayout != 1 {
		t.Fatalf("expected 1 bad-layout row, got %d", res.Stats.RowsBadLayout)
	}
	if len(res.Table.Rows) != 2 {
		t.Fatalf("expected 2 retained rows, got %d", len(res.Table.Rows))
	}
}

func TestRunPadsShortRows(t *testing.T) {
	res := runLines(t, Config{},
		"Time,Speed,Throttle,Brake",
		"0.0,100",
		"0.1,100,0.5,0.0",
	)
	// The short row is padded with missing values, then dropped as incomplete.
	if res.Stats.RowsIncomplete != 1 {
		t.Fatalf("expected 1 incomplete row, got %+v", res.Stats)
	}
	if len(res.Table.Rows) != 1 {
		t.Fatalf("expected 1 retained row, got %d", len(res.Table.Rows))
	}
}

func TestRunDropsRowsMissingTime(t *testing.T) {
	res := runLines(t, Config{},
		"Time,Speed,Throttle,Brake",
		",100,0.5,0.0",
		"0.1,100,0.5,0.0",
	)
	if res.Stats.RowsMissingTime != 1 {
		t.Fatalf("expected 1 missing-time row, got %+v", res.Stats)
	}
	for _, row := range res.Table.Rows {
		if row[0].Missing() {
			t.Fatal("retained row with missing time")
		}
	}
}

func TestRunDirtyCells(t *testing.T) {
	res := runLines(t, Config{},
		"Time,Speed,Throttle,Brake",
		`0.0,"100 km/h",0.5,0.0`,
		"0.1,junk,0.5,0.0",
	)
	if len(res.Table.Rows) != 1 {
		t.Fatalf("expected 1 retained row, got %d", len(res.Table.Rows))
	}
	if res.Table.Rows[0][1].F != 100 {
		t.Fatalf("expected stripped speed 100, got %v", res.Table.Rows[0][1].F)
	}
}

func TestRunSemicolonDelimited(t *testing.T) {
	res := runLines(t, Config{},
		"Time;Speed;Throttle;Brake",
		"0.0;100;0.5;0.0",
		"0.1;101;0.6;0.0",
	)
	if res.Context.Delimiter != ';' {
		t.Fatalf("expected semicolon delimiter, got %q", res.Context.Delimiter)
	}
	if len(res.Table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Table.Rows))
	}
}

func TestRunConcurrentLogsIndependent(t *testing.T) {
	p := New(Config{})
	good := []byte("Time,Speed,Throttle,Brake\n0.0,100,0.5,0.0\n")
	bad := []byte("1,2,3\n4,5,6\n")

	done := make(chan error, 8)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := p.Run(good)
			done <- err
		}()
		go func() {
			_, err := p.Run(bad)
			done <- err
		}()
	}
	var goodErrs, badErrs int
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			badErrs++
		} else {
			goodErrs++
		}
	}
	if goodErrs != 4 || badErrs != 4 {
		t.Fatalf("a failing log must not affect concurrent parses: good=%d bad=%d", goodErrs, badErrs)
	}
}
