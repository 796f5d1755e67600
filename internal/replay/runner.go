package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"tokenSwap/internal/model"
	"tokenSwap/internal/storage"
)

// PoolSink receives the full pool table after each flushed batch.
type PoolSink interface {
	UpsertPools(ctx context.Context, pools []model.PoolView) error
}

// RunConfig holds runtime settings for the replay runner.
type RunConfig struct {
	// BatchSize is the number of applied operations between flushes.
	BatchSize int
}

// Summary counts what a run did.
type Summary struct {
	Total   int
	Applied int
	Failed  int
	Skipped int
	Events  int
	LastSeq uint64
}

// Runner applies an operation script to a session and hands committed
// events, failures and state to its sinks.
type Runner struct {
	cfg     RunConfig
	session *Session
	events  storage.Storage
	errors  storage.ErrorSink
	pools   PoolSink
	state   StateStore
	logger  *zap.Logger

	pendingErrors []model.OperationError
}

// NewRunner builds a Runner. Any sink may be nil.
func NewRunner(cfg RunConfig, session *Session, events storage.Storage, errs storage.ErrorSink, pools PoolSink, state StateStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Runner{
		cfg:     cfg,
		session: session,
		events:  events,
		errors:  errs,
		pools:   pools,
		state:   state,
		logger:  logger,
	}
}

// Run reads JSONL operations from in until EOF. Operations at or below the
// session's last sequence are skipped. Rejected operations are recorded and
// do not stop the run.
func (r *Runner) Run(ctx context.Context, in io.Reader) (Summary, error) {
	if r.session == nil {
		return Summary{}, fmt.Errorf("session is nil")
	}

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var summary Summary
	pending := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		summary.Total++

		var op model.Operation
		if err := json.Unmarshal(line, &op); err != nil {
			return summary, fmt.Errorf("parse operation line %d: %w", summary.Total, err)
		}
		if op.Seq <= r.session.LastSeq {
			summary.Skipped++
			continue
		}

		if err := r.session.Apply(ctx, op); err != nil {
			summary.Failed++
			r.record(op, err)
		} else {
			summary.Applied++
		}
		r.session.LastSeq = op.Seq
		pending++

		if pending >= r.cfg.BatchSize {
			n, err := r.flush(ctx)
			summary.Events += n
			if err != nil {
				return summary, err
			}
			pending = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("scan input: %w", err)
	}

	n, err := r.flush(ctx)
	summary.Events += n
	summary.LastSeq = r.session.LastSeq
	return summary, err
}

func (r *Runner) record(op model.Operation, err error) {
	rec := model.OperationError{
		Seq:    op.Seq,
		Op:     op.Op,
		Caller: op.Caller,
		PoolID: op.PoolID,
		Kind:   Kind(err),
		Error:  err.Error(),
	}
	r.pendingErrors = append(r.pendingErrors, rec)
	r.logger.Warn("operation rejected",
		zap.Uint64("seq", op.Seq),
		zap.String("op", op.Op),
		zap.String("kind", rec.Kind),
		zap.Error(err),
	)
}

// flush writes events before state so a crash between the two replays the
// batch; sinks ignore or tolerate repeated sequences.
func (r *Runner) flush(ctx context.Context) (int, error) {
	events := r.session.Engine.Journal().Drain()
	if r.events != nil && len(events) > 0 {
		if err := r.events.PutEventBatch(ctx, events); err != nil {
			return 0, fmt.Errorf("write events: %w", err)
		}
	}
	if r.errors != nil && len(r.pendingErrors) > 0 {
		if err := r.errors.PutOperationErrors(ctx, r.pendingErrors); err != nil {
			return len(events), fmt.Errorf("write operation errors: %w", err)
		}
	}
	r.pendingErrors = r.pendingErrors[:0]

	state := r.session.State()
	if r.pools != nil {
		if err := r.pools.UpsertPools(ctx, state.Engine.Pools); err != nil {
			return len(events), fmt.Errorf("upsert pools: %w", err)
		}
	}
	if r.state != nil {
		if err := r.state.Save(ctx, state); err != nil {
			return len(events), fmt.Errorf("save state: %w", err)
		}
	}

	r.logger.Info("batch flushed",
		zap.Int("events", len(events)),
		zap.Uint64("last_seq", r.session.LastSeq),
		zap.Int("pools", len(state.Engine.Pools)),
	)
	return len(events), nil
}
