// Package database provides PostgreSQL connection management using pgx for
// the external roster database.
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Options tunes pool construction.
type Options struct {
	MaxConns     int32
	Attempts     int
	RetryBackoff time.Duration
}

// DefaultOptions suits a read-mostly importer that runs a few times a day.
var DefaultOptions = Options{
	MaxConns:     4,
	Attempts:     5,
	RetryBackoff: 2 * time.Second,
}

// NewPool creates and validates a pgxpool connection pool for dsn.
// It retries to accommodate databases that are still starting up.
func NewPool(ctx context.Context, dsn string, opts Options) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	poolCfg.MaxConns = opts.MaxConns
	poolCfg.MinConns = 0
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	attempts := max(opts.Attempts, 1)
	var pool *pgxpool.Pool
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		log.Printf("[database] connect attempt %d/%d failed: %v", attempt, attempts, err)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.RetryBackoff):
		}
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}
