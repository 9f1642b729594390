package gotemplate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Job names a template and its data for RenderBatch.
type Job struct {
	Name string
	Data any
}

// RenderBatch renders jobs concurrently, each in its own scope over the
// shared pool. Results are returned in job order. The first failure cancels
// jobs that have not started.
func (e *Engine) RenderBatch(ctx context.Context, jobs []Job) ([]string, error) {
	results := make([]string, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rendered, err := e.RenderTemplate(job.Name, job.Data)
			if err != nil {
				return fmt.Errorf("gotemplate: batch job %d: %w", i, err)
			}
			results[i] = rendered
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
