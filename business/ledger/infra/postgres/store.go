// Package postgres implements the trade record store using PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rosegoldcruz/theatom-sub000/business/ledger/app"
	"github.com/rosegoldcruz/theatom-sub000/business/ledger/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
)

const schema = `
	CREATE TABLE IF NOT EXISTS trade_records (
		seq               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		attempt_id        TEXT        NOT NULL UNIQUE,
		ts                TIMESTAMPTZ NOT NULL,
		asset_symbol      TEXT        NOT NULL,
		chain_id          BIGINT      NOT NULL,
		principal         NUMERIC     NOT NULL,
		profit            NUMERIC     NOT NULL,
		resource_cost_usd NUMERIC     NOT NULL,
		route             TEXT        NOT NULL,
		hop_count         INT         NOT NULL,
		success           BOOLEAN     NOT NULL,
		failure_code      TEXT        NOT NULL DEFAULT ''
	)`

const selectCols = `attempt_id, ts, asset_symbol, chain_id,
	principal::text, profit::text, resource_cost_usd::text,
	route, hop_count, success, failure_code`

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// Store implements app.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ app.Store = (*Store)(nil)

// New connects to PostgreSQL and ensures the trade_records table exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Append implements app.Store.
func (s *Store) Append(ctx context.Context, r domain.TradeRecord) error {
	const query = `
		INSERT INTO trade_records (
			attempt_id, ts, asset_symbol, chain_id,
			principal, profit, resource_cost_usd,
			route, hop_count, success, failure_code
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.pool.Exec(ctx, query,
		r.AttemptID, r.Timestamp, r.AssetSymbol, r.ChainID,
		r.Principal.String(), r.Profit.String(), r.ResourceCostUSD.String(),
		r.Route, r.HopCount, r.Success, r.FailureCode,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.New(apperror.CodeLedgerStoreError,
				apperror.WithContext("duplicate attempt id "+r.AttemptID))
		}
		return apperror.External(apperror.CodeLedgerStoreError, "trade_records", err)
	}
	return nil
}

// Recent implements app.Store.
func (s *Store) Recent(ctx context.Context, n int) ([]domain.TradeRecord, error) {
	if n <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM trade_records ORDER BY seq DESC LIMIT $1`, selectCols)
	rows, err := s.pool.Query(ctx, query, n)
	if err != nil {
		return nil, apperror.External(apperror.CodeLedgerStoreError, "trade_records", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// All implements app.Store.
func (s *Store) All(ctx context.Context) ([]domain.TradeRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM trade_records ORDER BY seq ASC`, selectCols)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, apperror.External(apperror.CodeLedgerStoreError, "trade_records", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Close implements app.Store.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanRecords(rows pgx.Rows) ([]domain.TradeRecord, error) {
	var out []domain.TradeRecord
	for rows.Next() {
		var (
			r                               domain.TradeRecord
			principal, profit, resourceCost string
		)
		if err := rows.Scan(
			&r.AttemptID, &r.Timestamp, &r.AssetSymbol, &r.ChainID,
			&principal, &profit, &resourceCost,
			&r.Route, &r.HopCount, &r.Success, &r.FailureCode,
		); err != nil {
			return nil, apperror.External(apperror.CodeLedgerStoreError, "trade_records", err)
		}

		var err error
		if r.Principal, err = decimal.NewFromString(principal); err != nil {
			return nil, apperror.External(apperror.CodeLedgerStoreError, "trade_records", err)
		}
		if r.Profit, err = decimal.NewFromString(profit); err != nil {
			return nil, apperror.External(apperror.CodeLedgerStoreError, "trade_records", err)
		}
		if r.ResourceCostUSD, err = decimal.NewFromString(resourceCost); err != nil {
			return nil, apperror.External(apperror.CodeLedgerStoreError, "trade_records", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.External(apperror.CodeLedgerStoreError, "trade_records", err)
	}
	return out, nil
}
