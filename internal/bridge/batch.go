package bridge

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
)

// DefaultConcurrency is the number of batches posted at once when the
// caller does not choose.
const DefaultConcurrency = 4

// BatchResult is the outcome of posting one batch of records.
type BatchResult struct {
	Index int
	IDs   []api.IdVersionHolder
	Err   error
}

// AddHealthDataBatch posts each batch of records to tracker, at most
// concurrency at a time. Results are in batch order. A failed batch does not
// stop the others; batches not started when ctx is cancelled report the
// context error.
func (c *Client) AddHealthDataBatch(ctx context.Context, tracker api.Tracker, batches [][]api.HealthDataRecord, concurrency int) ([]BatchResult, error) {
	session, err := c.guard("AddHealthDataBatch", RoleNone)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, &api.ArgumentError{Name: "batches", Reason: "must not be empty"}
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]BatchResult, len(batches))
	sem := semaphore.NewWeighted(int64(concurrency))
	g, gctx := errgroup.WithContext(ctx)

	for i, records := range batches {
		results[i].Index = i
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i].Err = err
				return nil
			}
			defer sem.Release(1)

			ids, err := c.transport().HealthData().Add(gctx, session, tracker, records)
			results[i].IDs, results[i].Err = ids, err
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}
