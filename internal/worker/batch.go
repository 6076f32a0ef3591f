package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/time/rate"

	"github.com/dkaryakin/inflow/internal/model"
)

// CaptureProcessor turns one raw input into a capture result.
type CaptureProcessor interface {
	ProcessInput(ctx context.Context, input string) (*model.CaptureResult, error)
}

// CaptureJob processes one input line through the pipeline.
type CaptureJob struct {
	Input     string
	Processor CaptureProcessor
	Pace      *rate.Limiter
}

// Execute runs the capture. The pacer is shared across workers so the
// batch as a whole stays within the reasoning backend's rate.
func (j *CaptureJob) Execute(ctx context.Context) Result {
	if j.Pace != nil {
		if err := j.Pace.Wait(ctx); err != nil {
			return &CaptureOutcome{Input: j.Input, Error: err}
		}
	}

	result, err := j.Processor.ProcessInput(ctx, j.Input)
	return &CaptureOutcome{Input: j.Input, Result: result, Error: err}
}

// CaptureOutcome pairs an input line with its pipeline result.
type CaptureOutcome struct {
	Input  string
	Result *model.CaptureResult
	Error  error
}

// Err returns the processing error, if any.
func (o *CaptureOutcome) Err() error {
	return o.Error
}

// BatchProcessor runs many captures concurrently with shared pacing.
type BatchProcessor struct {
	processor CaptureProcessor
	workers   int
	pace      *rate.Limiter
}

// NewBatchProcessor creates a batch processor. perSecond <= 0 disables
// pacing.
func NewBatchProcessor(processor CaptureProcessor, workers int, perSecond float64, burst int) *BatchProcessor {
	var pace *rate.Limiter
	if perSecond > 0 {
		if burst <= 0 {
			burst = 1
		}
		pace = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return &BatchProcessor{
		processor: processor,
		workers:   workers,
		pace:      pace,
	}
}

// ProcessInputs processes the given inputs concurrently and returns one
// outcome per input. Order of outcomes follows completion, not submission.
func (b *BatchProcessor) ProcessInputs(ctx context.Context, inputs []string) []*CaptureOutcome {
	if len(inputs) == 0 {
		return []*CaptureOutcome{}
	}

	pool := NewPool(b.workers)
	pool.Start()

	for _, input := range inputs {
		pool.Submit(&CaptureJob{
			Input:     input,
			Processor: b.processor,
			Pace:      b.pace,
		})
	}

	results := pool.Wait()

	outcomes := make([]*CaptureOutcome, len(results))
	for i, result := range results {
		outcomes[i] = result.(*CaptureOutcome)
	}

	return outcomes
}

// ProcessFile reads capture inputs from a file and processes them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CaptureOutcome, error) {
	inputs, err := ReadInputsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}

	return b.ProcessInputs(ctx, inputs), nil
}

// ReadInputsFromFile reads one capture input per line. Blank lines and
// lines starting with # are skipped. Duplicate lines are kept: two
// identical captures are two captures.
func ReadInputsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []string

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return inputs, nil
}
