package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job builds one driver of a sweep. Build runs on the job's own goroutine.
type Job struct {
	Name  string
	Build func() (*Driver, error)
}

type SweepResult struct {
	Name   string
	Result *Result
}

// Sweep runs every job concurrently for frames frames. Results keep the
// order of jobs; the first failure cancels the others.
func Sweep(ctx context.Context, jobs []Job, frames int) ([]SweepResult, error) {
	results := make([]SweepResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			d, err := job.Build()
			if err != nil {
				return err
			}
			res, err := d.Run(ctx, frames, nil)
			if err != nil {
				return err
			}
			results[i] = SweepResult{Name: job.Name, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
