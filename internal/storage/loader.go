package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"csvextract/internal/schema"
)

// Load converts rows (raw field text in schema column order) to typed values
// and inserts them into table in batches of batchSize. Every row is converted
// before the first insert, so a conversion error inserts nothing.
//
// Each batch is committed on its own. When batch N fails, batches 1..N-1 stay
// in the table and the returned count is the number of rows they hold.
//
// Progress is logged on each successful batch.
func Load(ctx context.Context, repo Repository, table string, s schema.Schema, rows [][]string, batchSize int) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("storage: batchSize must be > 0")
	}
	if repo == nil {
		return 0, fmt.Errorf("storage: repository must not be nil")
	}

	typed, err := TypedRows(s, rows)
	if err != nil {
		return 0, err
	}

	var (
		total   int64
		batches int
		start   = time.Now()
		names   = s.Names()
	)
	for lo := 0; lo < len(typed); lo += batchSize {
		hi := min(lo+batchSize, len(typed))
		n, err := repo.CopyFrom(ctx, table, names, typed[lo:hi])
		total += n
		if err != nil {
			log.Printf("loader: insert failed table=%s after=%d total=%d err=%v", table, n, total, err)
			return total, fmt.Errorf("storage: load %s: %w", table, err)
		}
		batches++
		log.Printf("loader: batch #%d table=%s inserted=%d total_inserted=%d elapsed=%s",
			batches, table, n, total, time.Since(start).Truncate(time.Millisecond))
	}
	return total, nil
}

// TypedRows parses each raw value with its column type.
func TypedRows(s schema.Schema, rows [][]string) ([][]any, error) {
	out := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) != len(s.Columns) {
			return nil, fmt.Errorf("storage: row %d has %d values, %v has %d columns", i, len(row), s.Kind, len(s.Columns))
		}
		vals := make([]any, len(row))
		for j, c := range s.Columns {
			v, err := c.Type.Parse(row[j])
			if err != nil {
				return nil, fmt.Errorf("storage: row %d column %s: %w", i, c.Name, err)
			}
			vals[j] = v
		}
		out[i] = vals
	}
	return out, nil
}
