package translate

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

const DefaultBatchSize = 50

// translates a single batch; each provider supplies its own
type batchFunc func(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error)

func splitBatches(
	items []TranslationItem,
	batchSize int,
) [][]TranslationItem {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var batches [][]TranslationItem
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}

// runs batches one after another, stopping on the first failure
func translateSequential(
	ctx context.Context,
	items []TranslationItem,
	batchSize int,
	fn batchFunc,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}

	batches := splitBatches(items, batchSize)
	if len(batches) == 1 {
		return fn(ctx, batches[0])
	}

	var allResults []TranslationResult
	for i, batch := range batches {
		results, err := fn(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i, err)
		}
		allResults = append(allResults, results...)
	}

	sortByIndex(allResults)
	return allResults, nil
}

// Items are split into batches of batchSize. Each batch becomes one API
// request. Workers (up to concurrency) pull batches from a shared queue;
// the first failure cancels the remaining work.
func translateConcurrent(
	ctx context.Context,
	items []TranslationItem,
	batchSize int,
	concurrency int,
	fn batchFunc,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}

	if concurrency <= 0 {
		concurrency = 3
	}

	batches := splitBatches(items, batchSize)
	if len(batches) == 1 {
		return fn(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index   int
		Results []TranslationResult
		Error   error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					results, err := fn(ctx, batches[batchIdx])
					if err != nil {
						cancel()
					}
					resultChan <- batchResult{
						Index:   batchIdx,
						Results: results,
						Error:   err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var firstErr error
	var allResults []TranslationResult
	for result := range resultChan {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf(
					"batch %d failed: %w",
					result.Index,
					result.Error,
				)
				cancel()
			}
			continue
		}
		allResults = append(allResults, result.Results...)
	}

	if firstErr != nil {
		return nil, firstErr
	}

	sortByIndex(allResults)
	return allResults, nil
}

func sortByIndex(results []TranslationResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
}
