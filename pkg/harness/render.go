package harness

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Render writes the scenario results as an aligned text table, in the
// order the scenarios ran.
func Render(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "SCENARIO\tREQUESTS\t1ST LATENCY\t1ST CACHE\tMEAN LATENCY\tHIT RATE\tSPEEDUP")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%.0f%%\t%s\n",
			r.Name,
			r.Requests,
			r.FirstLatency.Round(latencyPrecision),
			hitLabel(r.FirstHit),
			r.MeanLatency.Round(latencyPrecision),
			r.HitRate*100,
			r.SpeedupString(),
		)
	}

	return tw.Flush()
}

const latencyPrecision = time.Millisecond

func hitLabel(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
