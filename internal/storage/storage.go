package storage

import (
	"context"

	"go.uber.org/multierr"

	"tokenSwap/internal/model"
)

// Storage defines a sink for committed engine events.
type Storage interface {
	PutEventBatch(ctx context.Context, events []model.Event) error
}

// ErrorSink records operations the engine rejected.
type ErrorSink interface {
	PutOperationErrors(ctx context.Context, errs []model.OperationError) error
}

// Multi fans a batch out to every sink. All sinks are attempted; their
// errors are combined.
type Multi []Storage

func (m Multi) PutEventBatch(ctx context.Context, events []model.Event) error {
	var errs error
	for _, s := range m {
		errs = multierr.Append(errs, s.PutEventBatch(ctx, events))
	}
	return errs
}

// MultiErrorSink fans rejected operations out to every sink.
type MultiErrorSink []ErrorSink

func (m MultiErrorSink) PutOperationErrors(ctx context.Context, errs []model.OperationError) error {
	var all error
	for _, s := range m {
		all = multierr.Append(all, s.PutOperationErrors(ctx, errs))
	}
	return all
}
