package extract

import (
	"context"
	"fmt"
	"log"
	"time"

	"csvextract/internal/config"
	"csvextract/internal/datasource/file"
	"csvextract/internal/metrics"
	"csvextract/internal/schema"
	"csvextract/internal/storage"
)

// Output is one written subset.
type Output struct {
	Schema schema.Schema
	WriteResult
	Stored int64 // rows loaded into the storage sink, if configured
}

// Summary describes a completed run.
type Summary struct {
	Keys    int // data lines in the key file
	Targets int // distinct customer keys
	Outputs []Output
	Elapsed time.Duration
}

// job is one filter/write unit of the pipeline.
type job struct {
	schema schema.Schema
	file   config.File
	rs     *RecordSet
	data   []byte
}

// Run executes the extraction described by cfg. The config is validated and
// every input and output directory is checked before anything is read:
//
//	keys → customers
//	keys → invoices → INVOICE_CODE → invoice items
//
// All three record sets are built and rendered before any output is written,
// so a parse or conversion error in any file leaves no output behind. When
// cfg.Storage is enabled the subsets are loaded into the database after the
// CSV files are in place.
func Run(ctx context.Context, cfg config.Config, rec *metrics.Recorder) (Summary, error) {
	start := time.Now()
	var sum Summary

	if issues := config.Validate(cfg); config.HasErrors(issues) {
		return sum, fmt.Errorf("extract: invalid config: %w", config.Err(issues))
	}
	if issues := config.CheckPaths(cfg); config.HasErrors(issues) {
		return sum, fmt.Errorf("extract: unusable paths: %w", config.Err(issues))
	}

	var keys []string
	err := timed(rec, "load_keys", func() error {
		var err error
		keys, err = LoadKeys(ctx, file.NewLocal(cfg.Keys.Path))
		return err
	})
	if err != nil {
		return sum, err
	}
	customers := NewKeySet(keys)
	sum.Keys, sum.Targets = len(keys), customers.Len()
	rec.RecordRows("keys", int64(len(keys)))
	log.Printf("extract: keys=%d distinct=%d path=%s", len(keys), customers.Len(), cfg.Keys.Path)

	jobs := []*job{
		{schema: schema.Customer, file: cfg.Customers},
		{schema: schema.Invoice, file: cfg.Invoices},
		{schema: schema.InvoiceItem, file: cfg.InvoiceItems},
	}

	targets := customers
	for _, j := range jobs {
		if j.schema.Kind == schema.KindInvoiceItem {
			// Items are keyed by invoice, so chain on the invoices just kept.
			targets, err = jobs[1].rs.Keys("INVOICE_CODE")
			if err != nil {
				return sum, err
			}
		}
		err := timed(rec, "filter_"+j.schema.Kind.String(), func() error {
			var err error
			j.rs, err = FilterJoin(ctx, file.NewLocal(j.file.Input), j.schema, targets)
			return err
		})
		if err != nil {
			return sum, err
		}
		rec.RecordRows(j.schema.Kind.String(), int64(j.rs.Len()))
		log.Printf("extract: filter %s kept=%d targets=%d path=%s", j.schema.Kind, j.rs.Len(), targets.Len(), j.file.Input)
	}

	for _, j := range jobs {
		err := timed(rec, "render_"+j.schema.Kind.String(), func() error {
			var err error
			j.data, err = Render(j.rs)
			if err != nil {
				return fmt.Errorf("extract: render %s: %w", j.schema.Kind, err)
			}
			return nil
		})
		if err != nil {
			return sum, err
		}
	}

	for _, j := range jobs {
		var res WriteResult
		err := timed(rec, "write_"+j.schema.Kind.String(), func() error {
			var err error
			res, err = writeRendered(j.file.Output, j.rs.Len(), j.data)
			return err
		})
		if err != nil {
			return sum, err
		}
		rec.RecordOutputBytes(j.schema.Kind.String(), res.Bytes)
		log.Printf("extract: wrote %s rows=%d bytes=%d xxh3=%s path=%s",
			j.schema.Kind, res.Rows, res.Bytes, res.DigestHex(), res.Path)
		sum.Outputs = append(sum.Outputs, Output{Schema: j.schema, WriteResult: res})
	}

	if cfg.Storage.Enabled() {
		if err := store(ctx, cfg.Storage, jobs, &sum, rec); err != nil {
			return sum, err
		}
	}

	sum.Elapsed = time.Since(start)
	return sum, nil
}

// store loads every record set into <prefix><schema> tables.
func store(ctx context.Context, sc config.Storage, jobs []*job, sum *Summary, rec *metrics.Recorder) error {
	var repo storage.Repository
	err := timed(rec, "storage_open", func() error {
		var err error
		repo, err = storage.New(ctx, storage.Config{Kind: sc.Kind, DSN: sc.DSN})
		return err
	})
	if err != nil {
		return fmt.Errorf("extract: open storage: %w", err)
	}
	defer repo.Close()

	batch := sc.BatchSize
	if batch <= 0 {
		batch = config.DefaultBatchSize
	}

	for i, j := range jobs {
		table := sc.TablePrefix + j.schema.Kind.String()
		err := timed(rec, "store_"+j.schema.Kind.String(), func() error {
			if sc.AutoCreateTable {
				if err := repo.CreateTable(ctx, table, storage.TableColumns(j.schema)); err != nil {
					return err
				}
			}
			rows := make([][]string, j.rs.Len())
			for r := range rows {
				rows[r] = j.rs.Row(r)
			}
			n, err := storage.Load(ctx, repo, table, j.schema, rows, batch)
			sum.Outputs[i].Stored = n
			rec.RecordRows("stored_"+j.schema.Kind.String(), n)
			return err
		})
		if err != nil {
			return fmt.Errorf("extract: store %s: %w", j.schema.Kind, err)
		}
		log.Printf("extract: stored %s rows=%d table=%s kind=%s", j.schema.Kind, sum.Outputs[i].Stored, table, sc.Kind)
	}
	return nil
}

// timed runs fn and records it as a pipeline step.
func timed(rec *metrics.Recorder, step string, fn func() error) error {
	t0 := time.Now()
	err := fn()
	rec.RecordStep(step, err, time.Since(t0))
	return err
}
