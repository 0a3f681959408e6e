package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csvextract/internal/metrics"
	"csvextract/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// writeConfig lays out a small input set and a config file describing it.
func writeConfig(t *testing.T, mutate func(m map[string]any)) (cfgPath, outDir string) {
	t.Helper()
	dir := t.TempDir()
	outDir = filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m := map[string]any{
		"job":  "cli_test",
		"keys": map[string]any{"path": writeFile(t, dir, "SAMPLE.csv", "CUSTOMER_CODE\nCUST1\n")},
		"customers": map[string]any{
			"input":  writeFile(t, dir, "CUSTOMER.csv", "CUSTOMER_CODE,FIRSTNAME,LASTNAME\nCUST1,Maria,Alba\nCUST3,John,Doe\n"),
			"output": filepath.Join(outDir, "CUSTOMER_SAMPLE.csv"),
		},
		"invoices": map[string]any{
			"input":  writeFile(t, dir, "INVOICE.csv", "CUSTOMER_CODE,INVOICE_CODE,AMOUNT,DATE\nCUST1,INV1,10,2020-01-01\n"),
			"output": filepath.Join(outDir, "INVOICE_SAMPLE.csv"),
		},
		"invoice_items": map[string]any{
			"input":  writeFile(t, dir, "INVOICE_ITEM.csv", "INVOICE_CODE,ITEM_CODE,AMOUNT,QUANTITY\nINV1,IT1,12.5,3\n"),
			"output": filepath.Join(outDir, "INVOICE_ITEM_SAMPLE.csv"),
		},
	}
	if mutate != nil {
		mutate(m)
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return writeFile(t, dir, "extract.json", string(b)), outDir
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	o, err := parseFlags([]string{"-config", "x.json", "-validate", "-metrics-backend", "datadog"}, &stderr)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if o.cfgPath != "x.json" || !o.validate || o.metricsBackend != "datadog" {
		t.Fatalf("options = %+v", o)
	}

	if _, err := parseFlags([]string{"stray"}, &stderr); err == nil {
		t.Fatalf("stray argument accepted")
	}
	if _, err := parseFlags([]string{"-nope"}, &stderr); err == nil {
		t.Fatalf("unknown flag accepted")
	}
}

func TestRun_WritesOutputs(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "")
	cfgPath, outDir := writeConfig(t, nil)

	var stderr bytes.Buffer
	if err := run(context.Background(), options{cfgPath: cfgPath}, &stderr); err != nil {
		t.Fatalf("run: %v (stderr=%s)", err, stderr.String())
	}
	got, err := os.ReadFile(filepath.Join(outDir, "INVOICE_ITEM_SAMPLE.csv"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := "INVOICE_CODE,ITEM_CODE,AMOUNT,QUANTITY\nINV1,IT1,12.500000,3\n"; string(got) != want {
		t.Fatalf("items = %q, want %q", got, want)
	}
}

func TestRun_ValidateOnly(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "")
	cfgPath, outDir := writeConfig(t, nil)

	var stderr bytes.Buffer
	if err := run(context.Background(), options{cfgPath: cfgPath, validate: true}, &stderr); err != nil {
		t.Fatalf("run -validate: %v", err)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Fatalf("-validate wrote %d files", len(entries))
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "")
	cfgPath, _ := writeConfig(t, func(m map[string]any) {
		m["storage"] = map[string]any{"kind": "mysql"}
	})

	var stderr bytes.Buffer
	err := run(context.Background(), options{cfgPath: cfgPath}, &stderr)
	if !errors.Is(err, errInvalidConfig) {
		t.Fatalf("err = %v, want errInvalidConfig", err)
	}
	if !strings.Contains(stderr.String(), "error: storage.kind:") {
		t.Fatalf("stderr = %q, want storage.kind issue", stderr.String())
	}
}

func TestRun_ValidateReportsMissingInput(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "")
	cfgPath, _ := writeConfig(t, func(m map[string]any) {
		m["invoices"].(map[string]any)["input"] = filepath.Join(t.TempDir(), "missing.csv")
	})

	var stderr bytes.Buffer
	err := run(context.Background(), options{cfgPath: cfgPath, validate: true}, &stderr)
	if !errors.Is(err, errInvalidConfig) {
		t.Fatalf("err = %v, want errInvalidConfig", err)
	}
	if !strings.Contains(stderr.String(), "error: invoices.input:") {
		t.Fatalf("stderr = %q, want invoices.input issue", stderr.String())
	}
}

func TestStorageBackendsRegistered(t *testing.T) {
	kinds := strings.Join(storage.Kinds(), ",")
	for _, want := range []string{"postgres", "sqlite"} {
		if !strings.Contains(kinds, want) {
			t.Fatalf("storage kinds = %s, missing %s", kinds, want)
		}
	}
}

func TestRun_MissingConfig(t *testing.T) {
	err := run(context.Background(), options{cfgPath: filepath.Join(t.TempDir(), "none.json")}, &bytes.Buffer{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestNewBackend(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "")
	t.Setenv("PUSHGATEWAY_URL", "")

	cases := []struct {
		name string
		o    options
		nop  bool
	}{
		{name: "none", o: options{metricsBackend: "none"}, nop: true},
		{name: "unset", o: options{}, nop: true},
		{name: "unknown", o: options{metricsBackend: "graphite"}, nop: true},
		{name: "pushgateway", o: options{metricsBackend: "pushgateway", pushGatewayURL: "http://127.0.0.1:1"}},
		{name: "datadog", o: options{metricsBackend: "datadog", dogstatsdAddr: "127.0.0.1:8125"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := newBackend(c.o, "job")
			_, isNop := b.(metrics.Nop)
			if isNop != c.nop {
				t.Fatalf("newBackend(%+v) = %T, nop=%v want %v", c.o, b, isNop, c.nop)
			}
			if c.name == "datadog" {
				_ = b.Flush()
			}
		})
	}
}
