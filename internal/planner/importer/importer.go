// Package importer turns uploaded run-sheet rows into service stops.
package importer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"run-planner/internal/fileio"
	"run-planner/internal/metrics"
	"run-planner/internal/planner/address"
	"run-planner/internal/planner/model"
)

// Template identifies a sheet layout.
type Template string

const (
	TemplateOld Template = "old"
	TemplateNew Template = "new"
)

// TemplateOf detects the layout from the header row.
func TemplateOf(sh fileio.Sheet) Template {
	if sh.HasHeader(colStop1Loc) {
		return TemplateOld
	}
	return TemplateNew
}

// ImportedStop is one stop produced from a row. Resolution is set for stops
// whose address went through the resolver; Ready is false while Problems
// remain (for example an unresolved address awaiting manual choice).
type ImportedStop struct {
	Line       int               `json:"line"`
	Stop       model.ServiceStop `json:"stop"`
	Resolution *model.Resolution `json:"resolution,omitempty"`
	Ready      bool              `json:"ready"`
	Problems   []string          `json:"problems,omitempty"`
}

// RowFailure is a row that produced no stops.
type RowFailure struct {
	Line  int    `json:"line"`
	Kind  string `json:"kind"` // validation | lookup | internal
	Error string `json:"error"`
}

// Report is the outcome of a whole sheet.
type Report struct {
	BatchID  string         `json:"batchId"`
	Template Template       `json:"template"`
	Rows     int            `json:"rows"`
	Ready    int            `json:"ready"`
	Stops    []ImportedStop `json:"stops"`
	Failures []RowFailure   `json:"failures"`
}

// Importer parses rows and resolves their addresses.
type Importer struct {
	resolver  *address.Resolver
	threshold float64
	workers   int
	log       zerolog.Logger
}

func New(resolver *address.Resolver, threshold float64, workers int, logger zerolog.Logger) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{resolver: resolver, threshold: threshold, workers: workers, log: logger}
}

// Import parses every record independently with bounded concurrency. Row
// failures are collected; only cancellation of ctx aborts the batch.
func (im *Importer) Import(ctx context.Context, sh fileio.Sheet) (Report, error) {
	start := time.Now()
	tpl := TemplateOf(sh)
	rep := Report{
		BatchID:  uuid.NewString(),
		Template: tpl,
		Rows:     len(sh.Records),
		Stops:    []ImportedStop{},
		Failures: []RowFailure{},
	}

	type result struct {
		stops []ImportedStop
		err   error
	}
	results := make([]result, len(sh.Records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)
	for i, rec := range sh.Records {
		i, rec := i, rec
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			var stops []ImportedStop
			var err error
			if tpl == TemplateOld {
				stops, err = im.ParseOldTemplateRow(gctx, rec.Line, rec.Fields)
			} else {
				stops, err = im.ParseNewTemplateRow(gctx, rec.Line, rec.Fields)
			}
			results[i] = result{stops: stops, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	for i, res := range results {
		line := sh.Records[i].Line
		if res.err != nil {
			rep.Failures = append(rep.Failures, RowFailure{Line: line, Kind: failureKind(res.err), Error: res.err.Error()})
			metrics.ImportRows.WithLabelValues(string(tpl), "failed").Inc()
			continue
		}
		for _, s := range res.stops {
			if s.Ready {
				rep.Ready++
			}
			rep.Stops = append(rep.Stops, s)
		}
		metrics.ImportRows.WithLabelValues(string(tpl), "ok").Inc()
	}

	im.log.Info().
		Str("batch", rep.BatchID).
		Str("template", string(tpl)).
		Int("rows", rep.Rows).
		Int("stops", len(rep.Stops)).
		Int("ready", rep.Ready).
		Int("failures", len(rep.Failures)).
		Dur("elapsed", time.Since(start)).
		Msg("import done")
	return rep, nil
}

func failureKind(err error) string {
	switch {
	case model.IsValidation(err):
		return "validation"
	case model.IsLookup(err):
		return "lookup"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "internal"
}

// finish validates a stop and wraps it for the report.
func finish(line int, s model.ServiceStop, res *model.Resolution) ImportedStop {
	problems := Problems(s)
	if res != nil && !res.Resolved() {
		problems = append(problems, "address not resolved: choose one of the candidates")
	}
	return ImportedStop{Line: line, Stop: s, Resolution: res, Ready: len(problems) == 0, Problems: problems}
}
