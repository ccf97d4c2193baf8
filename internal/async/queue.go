// Package async runs report processing on a fixed pool of workers.
package async

import (
	"context"
	"errors"
	"time"
)

// Job is one report file waiting to be processed.
type Job struct {
	Path        string
	ContentHash string // hex SHA-256 when the ingestor computed it
	Force       bool   // reprocess even if the store has this content
	SubmittedAt time.Time
	RequestID   string
}

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// FileProcessor handles one job. Implementations must be safe for
// concurrent use; every worker calls the same processor.
type FileProcessor interface {
	Process(ctx context.Context, job Job) error
}

// ProcessorFunc adapts a function to FileProcessor.
type ProcessorFunc func(ctx context.Context, job Job) error

func (f ProcessorFunc) Process(ctx context.Context, job Job) error { return f(ctx, job) }
