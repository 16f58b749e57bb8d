package scout

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/scout/internal/db"
)

// Report is the aggregate of a completed scan.
type Report struct {
	Moves       uint64
	Matches     uint64
	MovesPerSec uint64
	Elapsed     time.Duration
}

// Aggregate sums per-worker counters into a report. The +1ms floor keeps
// the rate defined for scans that finish inside a millisecond. Callers
// must not aggregate until every worker has returned.
func Aggregate(counters []Counters, start time.Time) Report {
	var r Report
	for _, c := range counters {
		r.Moves += c.Moves
		r.Matches += c.Matches
	}
	r.Elapsed = time.Since(start)
	ms := uint64(r.Elapsed.Milliseconds()) + 1
	r.MovesPerSec = 1000 * r.Moves / ms
	return r
}

// Finalize releases the mapped database, aggregates the counters, and
// writes the plain-text report to w. The database teardown failing is the
// only error path.
func Finalize(f *db.File, counters []Counters, start time.Time, w io.Writer) (Report, error) {
	err := f.Close()
	r := Aggregate(counters, start)
	r.Write(w)
	return r, err
}

// Write emits the report in its plain-text form.
func (r Report) Write(w io.Writer) {
	fmt.Fprintf(w, "\nMoves: %d\nMatches found: %d\nMoves/second: %d\nProcessing time (ms): %d\n\n",
		r.Moves, r.Matches, r.MovesPerSec, r.Elapsed.Milliseconds())
}

// Log emits the report as a structured summary line.
func (r Report) Log(log zerolog.Logger) {
	log.Info().
		Uint64("moves", r.Moves).
		Uint64("matches", r.Matches).
		Uint64("moves_per_sec", r.MovesPerSec).
		Dur("elapsed", r.Elapsed).
		Msg("scan complete")
}
