package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"csvextract/internal/config"
	"csvextract/internal/extract"
	"csvextract/internal/metrics"
	"csvextract/internal/metrics/datadog"
	"csvextract/internal/metrics/prompush"

	// register every storage backend with the factory.
	_ "csvextract/internal/storage/all"
)

// errInvalidConfig marks a run stopped by config validation.
var errInvalidConfig = errors.New("invalid configuration")

// options are the command line settings of one invocation.
type options struct {
	cfgPath        string
	metricsBackend string
	pushGatewayURL string
	dogstatsdAddr  string
	validate       bool
	verbose        bool
}

// main is the entry point for the extract binary. It loads the run config,
// optionally initializes a metrics backend, and executes the extraction.
func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stderr); err != nil {
		stop()
		fatalf("%v", err)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.cfgPath, "config", "configs/extract.json", "run config JSON path")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend to use: pushgateway, datadog or none (overrides env METRICS_BACKEND)")
	fs.StringVar(&o.pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.StringVar(&o.dogstatsdAddr, "dogstatsd-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_ADDR)")
	fs.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&o.verbose, "v", false, "enable verbose logs")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return o, fmt.Errorf("unexpected arguments")
	}
	return o, nil
}

// run loads and validates the config, then executes one extraction.
// Config issues are printed to stderr one per line.
func run(ctx context.Context, o options, stderr io.Writer) error {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return err
	}

	issues := config.Validate(cfg)
	if !config.HasErrors(issues) {
		issues = append(issues, config.CheckPaths(cfg)...)
	}
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", o.cfgPath)
		return fmt.Errorf("%w: %s", errInvalidConfig, o.cfgPath)
	}

	// If validate flag is set, only validate the configuration and exit
	if o.validate {
		log.Printf("Configuration is valid: %v", o.cfgPath)
		return nil
	}

	rec := metrics.NewRecorder(newBackend(o, cfg.Job), cfg.Job)
	defer func() {
		if err := rec.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	if o.verbose {
		log.Printf("extract: job=%s keys=%s storage=%q", cfg.Job, cfg.Keys.Path, cfg.Storage.Kind)
	}

	sum, err := extract.Run(ctx, cfg, rec)
	if err != nil {
		return err
	}

	for _, out := range sum.Outputs {
		log.Printf("extract: %-12s rows=%d bytes=%d xxh3=%s stored=%d path=%s",
			out.Schema.Kind, out.Rows, out.Bytes, out.DigestHex(), out.Stored, out.Path)
	}
	log.Printf("completed in %s (keys=%d distinct=%d)", sum.Elapsed.Truncate(time.Millisecond), sum.Keys, sum.Targets)
	return nil
}

// newBackend picks the metrics backend: flag → env → disabled. A backend
// that fails to initialize is logged and replaced by a no-op.
func newBackend(o options, job string) metrics.Backend {
	name := firstNonEmpty(o.metricsBackend, os.Getenv("METRICS_BACKEND"))

	switch name {
	case "pushgateway":
		gwURL := firstNonEmpty(o.pushGatewayURL, os.Getenv("PUSHGATEWAY_URL"), "http://localhost:9091")
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return metrics.Nop{}
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, name, job)
		return b

	case "datadog":
		addr := firstNonEmpty(o.dogstatsdAddr, os.Getenv("DD_DOGSTATSD_ADDR"), "127.0.0.1:8125")
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "csvextract.",
			GlobalTags: []string{"job:" + job},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return metrics.Nop{}
		}
		log.Printf("metrics: addr=%v, backend=%v, job_name=%v", addr, name, job)
		return b

	case "", "none":
		if o.verbose {
			log.Printf("metrics: disabled (backend=%q)", name)
		}
		return metrics.Nop{}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
		return metrics.Nop{}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
