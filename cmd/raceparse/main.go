package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/config"
	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/logging"
	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/store"
	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/pkg/raceparse"
)

func main() {
	cfg := config.Load()

	encoding := flag.String("encoding", cfg.Parse.Encoding, "declared text encoding of input files")
	minFields := flag.Int("min-fields", cfg.Parse.MinFields, "minimum field count for the header fallback heuristic (0 = default)")
	statePath := flag.String("state", cfg.Dedup.StatePath, "SQLite dedup-state database (empty disables duplicate checks)")
	output := flag.String("output", cfg.Output.Format, "output format: ndjson or summary")
	sessionID := flag.String("session", "", "session id (single file only; default: generated per file)")
	logLevel := flag.String("log-level", cfg.Output.LogLevel, "log level: debug, info, warn, error")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file.csv [file.csv ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logging.Init(*output == "ndjson", logging.ParseLevel(*logLevel))

	var st *store.Store
	if *statePath != "" {
		s, err := store.Open(*statePath)
		if err != nil {
			slog.Error("open state database", "path", *statePath, "error", err)
			os.Exit(1)
		}
		defer s.Close()
		st = s
	}

	ctx := context.Background()
	failed := 0
	for _, path := range files {
		if err := processFile(ctx, path, st, *encoding, *minFields, *sessionID, *output); err != nil {
			// A bad log never aborts the rest of the batch.
			slog.Error("skipping file", "file", path, "error", err)
			failed++
		}
	}
	if failed == len(files) {
		os.Exit(1)
	}
}

func processFile(ctx context.Context, path string, st *store.Store, encoding string, minFields int, sessionID, output string) error {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return fmt.Errorf("unsupported file format %q (expected .csv)", filepath.Ext(path))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	opts := []raceparse.Option{
		raceparse.WithEncoding(encoding),
		raceparse.WithMinFields(minFields),
	}
	if sessionID != "" {
		opts = append(opts, raceparse.WithSessionID(sessionID))
	}

	res, err := raceparse.New(opts...).Parse(content)
	if err != nil {
		return err
	}

	if st != nil {
		fingerprints, err := st.LoadFingerprints(ctx)
		if err != nil {
			return err
		}
		if res.IsDuplicateSession(fingerprints) {
			slog.Info("duplicate session, skipping", "file", path, "fingerprint", res.Fingerprint)
			return nil
		}
		seenKeys, err := st.LoadSampleKeys(ctx, res.SessionID)
		if err != nil {
			return err
		}
		if removed := res.DropDuplicateSamples(seenKeys); removed > 0 {
			slog.Info("removed duplicate samples", "file", path, "removed", removed)
		}
	}

	if output == "ndjson" {
		if err := writeNDJSON(os.Stdout, res); err != nil {
			return err
		}
	} else {
		writeSummary(path, res)
	}

	if st != nil {
		if err := st.AddFingerprint(ctx, res.Fingerprint); err != nil {
			return err
		}
		if err := st.AddSampleKeys(ctx, res.SampleKeys()); err != nil {
			return err
		}
	}
	return nil
}

// writeNDJSON emits one JSON object per retained row, keyed by canonical
// column name.
func writeNDJSON(w io.Writer, res *raceparse.Result) error {
	enc := json.NewEncoder(w)
	for _, row := range res.Table.Rows {
		obj := make(map[string]float64, len(res.Table.Schema))
		for i, col := range res.Table.Schema {
			if !row[i].Missing() {
				obj[col.Name] = row[i].F
			}
		}
		if err := enc.Encode(obj); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(path string, res *raceparse.Result) {
	s := res.Stats
	slog.Info("parsed",
		"file", path,
		"session", res.SessionID,
		"fingerprint", res.Fingerprint[:12],
		"delimiter", string(s.Delimiter),
		"header_line", s.HeaderIndex,
		"units_line", s.UnitsIndex,
		"rows_loaded", s.RowsLoaded,
		"rows_bad_layout", s.RowsBadLayout,
		"rows_missing_time", s.RowsMissingTime,
		"rows_incomplete", s.RowsIncomplete,
		"rows_retained", s.RowsRetained,
	)
}
