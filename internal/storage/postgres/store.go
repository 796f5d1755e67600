package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tokenSwap/internal/model"
)

// Store provides Postgres persistence for pools, events and replay state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS pools (
	pool_id                BIGINT PRIMARY KEY,
	token_a                TEXT NOT NULL,
	token_b                TEXT NOT NULL,
	reserve_a              NUMERIC(78, 0) NOT NULL,
	reserve_b              NUMERIC(78, 0) NOT NULL,
	exchange_rate_ppm      BIGINT NOT NULL,
	slippage_tolerance_ppm BIGINT NOT NULL,
	status                 TEXT NOT NULL,
	provider               TEXT NOT NULL,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS pool_events (
	seq        BIGINT PRIMARY KEY,
	name       TEXT NOT NULL,
	pool_id    BIGINT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS operation_errors (
	seq        BIGINT PRIMARY KEY,
	op         TEXT NOT NULL,
	caller     TEXT NOT NULL,
	pool_id    BIGINT,
	kind       TEXT NOT NULL,
	error      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS replay_state (
	name       TEXT PRIMARY KEY,
	last_seq   BIGINT NOT NULL,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the tables used by the store if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// UpsertPools inserts or updates pool views.
func (s *Store) UpsertPools(ctx context.Context, pools []model.PoolView) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO pools (
				pool_id, token_a, token_b, reserve_a, reserve_b,
				exchange_rate_ppm, slippage_tolerance_ppm, status, provider, created_at, updated_at
			) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8, $9, now(), now())
			ON CONFLICT (pool_id)
			DO UPDATE SET
				reserve_a = EXCLUDED.reserve_a,
				reserve_b = EXCLUDED.reserve_b,
				status = EXCLUDED.status,
				updated_at = now()
		`,
			int64(pool.ID),
			pool.TokenA,
			pool.TokenB,
			pool.ReserveA,
			pool.ReserveB,
			int64(pool.ExchangeRatePPM),
			int64(pool.SlippageTolerancePPM),
			string(pool.Status),
			pool.Provider,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutEventBatch inserts events keyed by sequence; replays of an already
// stored sequence are ignored.
func (s *Store) PutEventBatch(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		data, err := json.Marshal(ev.Data)
		if err != nil {
			return fmt.Errorf("marshal event %d: %w", ev.Seq, err)
		}
		batch.Queue(`
			INSERT INTO pool_events (seq, name, pool_id, data, created_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (seq) DO NOTHING
		`, int64(ev.Seq), ev.Name, int64(ev.PoolID), data)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutOperationErrors records rejected operations keyed by sequence.
func (s *Store) PutOperationErrors(ctx context.Context, errs []model.OperationError) error {
	if len(errs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range errs {
		batch.Queue(`
			INSERT INTO operation_errors (seq, op, caller, pool_id, kind, error, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			ON CONFLICT (seq) DO NOTHING
		`, int64(e.Seq), e.Op, e.Caller, int64(e.PoolID), e.Kind, e.Error)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range errs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the replay state stored under name.
func (s *Store) LoadState(ctx context.Context, name string) (model.State, bool, error) {
	if name == "" {
		return model.State{}, false, fmt.Errorf("state name required")
	}
	var raw []byte
	row := s.pool.QueryRow(ctx, `SELECT state FROM replay_state WHERE name=$1`, name)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.State{}, false, nil
		}
		return model.State{}, false, err
	}
	var state model.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return model.State{}, false, fmt.Errorf("parse state: %w", err)
	}
	return state, true, nil
}

// SaveState upserts the replay state under name.
func (s *Store) SaveState(ctx context.Context, name string, state model.State) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO replay_state (name, last_seq, state, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET last_seq = EXCLUDED.last_seq, state = EXCLUDED.state, updated_at = now()
	`, name, int64(state.LastSeq), raw)
	return err
}
