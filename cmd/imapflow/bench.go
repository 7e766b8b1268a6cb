package main

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/mailwire/imapflow/imapclient"
)

// runBench issues count NOOP round trips back to back and reports
// p50/p95/p99 latency, a crude per-command timing harness in the same
// spirit as the teacher's indexer benchmarks, built on the stats package
// already in the dependency graph rather than hand-rolled percentiles.
func runBench(ctx context.Context, s *imapclient.Session, count int) error {
	samples := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		start := time.Now()
		if _, err := s.Exec(ctx, imapclient.Bare("NOOP"), nil, nil); err != nil {
			return fmt.Errorf("bench round %d: %w", i, err)
		}
		samples = append(samples, float64(time.Since(start).Microseconds()))
	}

	p50, err := stats.Percentile(samples, 50)
	if err != nil {
		return err
	}
	p95, err := stats.Percentile(samples, 95)
	if err != nil {
		return err
	}
	p99, err := stats.Percentile(samples, 99)
	if err != nil {
		return err
	}
	fmt.Printf("NOOP round trips: n=%d p50=%.0fus p95=%.0fus p99=%.0fus\n", count, p50, p95, p99)
	return nil
}
