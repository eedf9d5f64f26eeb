package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*Evaluator)

// WithWorkers sets the number of concurrent chunks
func WithWorkers(workers int) EvaluatorOption {
	return func(e *Evaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the list length from which evaluation is chunked
func WithBatchSize(size int) EvaluatorOption {
	return func(e *Evaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// Evaluator selects the records of a list that match a filter. Large
// lists are split into chunks evaluated concurrently; order is preserved.
type Evaluator struct {
	workerCount int
	batchSize   int
}

// NewEvaluator creates a new evaluator
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   500,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Select returns the matching records in their original order
func (e *Evaluator) Select(ctx context.Context, f Filter, records []Record) ([]Record, error) {
	if len(records) == 0 {
		return []Record{}, nil
	}

	// For small lists, don't bother with concurrency
	if len(records) < e.batchSize || e.workerCount == 1 {
		return selectSequential(f, records), nil
	}

	chunkSize := max((len(records)+e.workerCount-1)/e.workerCount, 1)
	chunks := make([][]Record, (len(records)+chunkSize-1)/chunkSize)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for i := range chunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(records))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunks[i] = selectSequential(f, records[start:end])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]Record, 0, len(records)/4)
	for _, chunk := range chunks {
		matches = append(matches, chunk...)
	}
	return matches, nil
}

func selectSequential(f Filter, records []Record) []Record {
	matches := make([]Record, 0, len(records)/4)
	for _, record := range records {
		if f.Match(record) {
			matches = append(matches, record)
		}
	}
	return matches
}
