// Package tapestats computes span duration statistics and flags
// outliers, the way a profiler summarizes a sampled duration
// distribution.
package tapestats

import (
	"fmt"
	"sort"

	"github.com/aclements/go-moremath/stats"

	"github.com/abrander/tracetape/tapeparser"
)

// SpanDuration is one span instance's lifetime, in nanoseconds, paired
// with its index in the Tape's Spans slice.
type SpanDuration struct {
	SpanIndex int
	Nanos     float64
}

// CallsiteStatistics summarizes the duration of every closed span
// created at one callsite.
type CallsiteStatistics struct {
	Callsite int
	Count    int

	Min, Max float64
	Mean     float64
	Median   float64
	Q1, Q3   float64

	// Outliers holds the span index and duration of every span whose
	// duration falls outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR], Tukey's
	// rule for a mild outlier.
	Outliers []SpanDuration
}

// Statistics computes duration statistics for every span created at
// t.Callsites[callsiteIndex] that was observed to close. It returns an
// error if no such span exists, since quantiles are undefined for an
// empty sample.
func Statistics(t *tapeparser.Tape, callsiteIndex int) (*CallsiteStatistics, error) {
	var durations []SpanDuration
	for i, s := range t.Spans {
		if s.Callsite != callsiteIndex || s.Closed < 0 {
			continue
		}
		durations = append(durations, SpanDuration{SpanIndex: i, Nanos: float64(s.Closed - s.Opened)})
	}
	if len(durations) == 0 {
		return nil, fmt.Errorf("tapestats: no closed spans for callsite %d", callsiteIndex)
	}

	sort.SliceStable(durations, func(i, j int) bool { return durations[i].Nanos < durations[j].Nanos })
	xs := make([]float64, len(durations))
	for i, d := range durations {
		xs[i] = d.Nanos
	}
	sample := stats.Sample{Xs: xs, Sorted: true}

	min, max := xs[0], xs[len(xs)-1]
	q1 := sample.Quantile(0.25)
	median := sample.Quantile(0.5)
	q3 := sample.Quantile(0.75)
	iqr := q3 - q1
	lowFence := q1 - 1.5*iqr
	highFence := q3 + 1.5*iqr

	stat := &CallsiteStatistics{
		Callsite: callsiteIndex,
		Count:    len(durations),
		Min:      min,
		Max:      max,
		Mean:     sample.Mean(),
		Median:   median,
		Q1:       q1,
		Q3:       q3,
	}
	for _, d := range durations {
		if d.Nanos < lowFence || d.Nanos > highFence {
			stat.Outliers = append(stat.Outliers, d)
		}
	}
	return stat, nil
}
