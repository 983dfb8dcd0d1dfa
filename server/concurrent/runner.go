package concurrent

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"
)

// WorkerFunc defines the function signature for work to be executed
// It receives the item to process and channels for communication
type WorkerFunc[T any, R any] func(ctx context.Context, item T, messages chan<- string, results chan<- R, errors chan<- error)

// RunnerConfig configures the concurrent runner
type RunnerConfig struct {
	MaxConcurrency int    // <= 0 means sequential execution
	LogPrefix      string // Prefix for log messages
}

// Runner encapsulates concurrent processing with channels and wait groups
type Runner[T any, R any] struct {
	config RunnerConfig
}

// NewRunner creates a new concurrent runner with the given configuration
func NewRunner[T any, R any](config RunnerConfig) *Runner[T, R] {
	if config.LogPrefix == "" {
		config.LogPrefix = "Runner"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 1
	}
	return &Runner[T, R]{
		config: config,
	}
}

// RunResult contains the results of a concurrent run
type RunResult[R any] struct {
	Results []R
	Errors  []error
	Skipped int // items not dispatched because the context was cancelled
}

// Run executes the worker function for each item with bounded concurrency
// and returns aggregated results and errors. Dispatch stops at the first
// checkpoint after ctx is cancelled; items already running finish
func (r *Runner[T, R]) Run(ctx context.Context, items []T, worker WorkerFunc[T, R]) RunResult[R] {
	if len(items) == 0 {
		return RunResult[R]{
			Results: []R{},
			Errors:  []error{},
		}
	}

	var collectorsWG sync.WaitGroup

	// Messages channel for logging
	messages := make(chan string)
	collectorsWG.Add(1)
	go func() {
		defer collectorsWG.Done()
		for message := range messages {
			r.logInfo(message)
		}
	}()

	// Results channel for successful completions
	results := make(chan R)
	var resultsList []R
	collectorsWG.Add(1)
	go func() {
		defer collectorsWG.Done()
		for result := range results {
			resultsList = append(resultsList, result)
		}
	}()

	// Errors channel for failures
	errors := make(chan error)
	var errorsList []error
	collectorsWG.Add(1)
	go func() {
		defer collectorsWG.Done()
		for err := range errors {
			errorsList = append(errorsList, err)
		}
	}()

	// Worker wait group
	var workersWg sync.WaitGroup

	// Throttle channel for limiting concurrency
	throttle := make(chan struct{}, r.config.MaxConcurrency)

	skipped := 0
	for i, item := range items {
		// Cancellation checkpoint between dispatches
		if ctx.Err() != nil {
			skipped = len(items) - i
			break
		}

		workersWg.Add(1)
		throttle <- struct{}{}

		go func(item T) {
			defer workersWg.Done()
			defer func() { <-throttle }()

			worker(ctx, item, messages, results, errors)
		}(item)
	}

	// Wait for all workers to complete
	workersWg.Wait()

	// Close channels
	close(messages)
	close(results)
	close(errors)

	// Wait for all collectors to drain
	collectorsWG.Wait()

	return RunResult[R]{
		Results: resultsList,
		Errors:  errorsList,
		Skipped: skipped,
	}
}

func (r *Runner[T, R]) logInfo(message string) {
	log.Info(fmt.Sprintf("%s: %s", r.config.LogPrefix, message))
}
