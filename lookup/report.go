package lookup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/grailbio/base/file"
)

// Stats summarizes one run: how many records were looked up and how many
// matched the reference.
type Stats struct {
	Total    uint64
	Found    uint64
	NotFound uint64
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Total += o.Total
	s.Found += o.Found
	s.NotFound += o.NotFound
	return s
}

// SuccessRatePercent returns floor(found*100/total), and 0 for an empty run.
func (s Stats) SuccessRatePercent() uint64 {
	if s.Total == 0 {
		return 0
	}
	return s.Found * 100 / s.Total
}

// aggregate folds per-chunk report events into run statistics.
func aggregate(events []Event) Stats {
	var s Stats
	for _, ev := range events {
		s.Total++
		if ev.Found {
			s.Found++
		} else {
			s.NotFound++
		}
	}
	return s
}

func eventStatus(ev Event) string {
	if ev.Found {
		return "FOUND"
	}
	return "NOT_FOUND"
}

// renderReport writes the plain-text report document: header, summary
// statistics, per-record detail in original input order, a warnings section
// when anything was missed, and the missing-loci listing (omitted when
// empty).
func renderReport(w io.Writer, inName, storeName string, now time.Time, stats Stats, events []Event, delim byte) error {
	bw := bufio.NewWriter(w)
	d := string(delim)
	fmt.Fprintf(bw, "# bio-varlookup report\n")
	fmt.Fprintf(bw, "# generated: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(bw, "# input: %s\n", inName)
	fmt.Fprintf(bw, "# reference: %s\n", storeName)
	fmt.Fprintf(bw, "\n")
	fmt.Fprintf(bw, "total records:\t%d\n", stats.Total)
	fmt.Fprintf(bw, "found:\t%d\n", stats.Found)
	fmt.Fprintf(bw, "not found:\t%d\n", stats.NotFound)
	fmt.Fprintf(bw, "success rate:\t%d%%\n", stats.SuccessRatePercent())
	fmt.Fprintf(bw, "\nstatus detail:\n")
	for _, ev := range events {
		fmt.Fprintf(bw, "%s%s%s%s%d\n", eventStatus(ev), d, ev.Chrom, d, ev.Pos)
	}
	if stats.NotFound > 0 {
		fmt.Fprintf(bw, "\nwarnings:\n")
		fmt.Fprintf(bw, "%d position(s) had no match in the reference. Common causes: genome-build mismatch, positions absent from this reference release, or chromosome naming the reference does not use.\n", stats.NotFound)
		fmt.Fprintf(bw, "\nmissing loci:\n")
		for _, ev := range events {
			if !ev.Found {
				fmt.Fprintf(bw, "%s%s%d\n", ev.Chrom, d, ev.Pos)
			}
		}
	}
	return bw.Flush()
}

// writeReport renders the report to path.  Failures here must not affect the
// primary output, so the caller treats a returned error as a warning.
func writeReport(ctx context.Context, path, inName, storeName string, stats Stats, events []Event, delim byte) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, out, &err)
	return renderReport(out.Writer(ctx), inName, storeName, time.Now(), stats, events, delim)
}
