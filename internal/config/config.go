// Package config defines the JSON-serializable run configuration for the
// extractor. A Config is decoded once at startup and passed explicitly to the
// pipeline; nothing in the program reads paths or schemas from globals.
//
// Example:
//
//	{
//	  "job": "customer_sample",
//	  "keys":          { "path": "data/SAMPLE.csv" },
//	  "customers":     { "input": "data/CUSTOMER.csv",     "output": "out/CUSTOMER_SAMPLE.csv" },
//	  "invoices":      { "input": "data/INVOICE.csv",      "output": "out/INVOICE_SAMPLE.csv" },
//	  "invoice_items": { "input": "data/INVOICE_ITEM.csv", "output": "out/INVOICE_ITEM_SAMPLE.csv" },
//	  "storage": { "kind": "sqlite", "dsn": "out/sample.db", "table_prefix": "sample_", "auto_create_table": true }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DefaultJob is used for metrics labeling when the config leaves job empty.
const DefaultJob = "extract"

// DefaultBatchSize is the number of rows per storage insert batch.
const DefaultBatchSize = 5000

// Config is the top-level object decoded from a run file.
type Config struct {
	// Job names the run in logs and metrics.
	Job string `json:"job"`

	// Keys points at the sample file holding the reference customer codes.
	Keys KeyFile `json:"keys"`

	Customers    File `json:"customers"`
	Invoices     File `json:"invoices"`
	InvoiceItems File `json:"invoice_items"`

	// Storage optionally loads the extracted subsets into a database after
	// the CSV outputs are written. Kind "" or "none" disables it.
	Storage Storage `json:"storage"`
}

// KeyFile locates the reference key list.
type KeyFile struct {
	Path string `json:"path"`
}

// File pairs an input CSV with the path its filtered subset is written to.
type File struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Storage configures the optional database sink.
type Storage struct {
	// Kind selects the backend: "sqlite", "postgres", or "none".
	Kind string `json:"kind"`

	// DSN is passed to the backend driver (file path for sqlite, connection
	// URL for postgres).
	DSN string `json:"dsn"`

	// TablePrefix is prepended to the per-schema table names
	// (customer, invoice, invoice_item).
	TablePrefix string `json:"table_prefix"`

	// AutoCreateTable issues CREATE TABLE IF NOT EXISTS before loading.
	AutoCreateTable bool `json:"auto_create_table"`

	// BatchSize bounds the number of rows per insert batch.
	BatchSize int `json:"batch_size"`
}

// Enabled reports whether a storage sink is configured.
func (s Storage) Enabled() bool { return s.Kind != "" && s.Kind != "none" }

// Decode reads a Config from r. Unknown fields are rejected so typos in a run
// file surface immediately instead of silently disabling a setting.
func Decode(r io.Reader) (Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.applyDefaults()
	return c, nil
}

// Load opens and decodes the config file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func (c *Config) applyDefaults() {
	if c.Job == "" {
		c.Job = DefaultJob
	}
	if c.Storage.BatchSize == 0 {
		c.Storage.BatchSize = DefaultBatchSize
	}
}
