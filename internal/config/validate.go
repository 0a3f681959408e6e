// Package config provides configuration models and helpers for extraction
// runs.
//
// This file adds a static validator for Config values. It performs no I/O and
// returns a list of issues (errors and warnings) that callers can surface in a
// CLI or tests.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Config.
//
// Path is a dotted path into the config (e.g. "invoices.output",
// "storage.dsn"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of c. It does not touch the
// filesystem; missing files surface later when the pipeline opens them.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics will be labeled " + DefaultJob,
		})
	}

	if strings.TrimSpace(c.Keys.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "keys.path",
			Message:  "key file path must not be empty",
		})
	}
	issues = append(issues, validateFile("customers", c.Customers)...)
	issues = append(issues, validateFile("invoices", c.Invoices)...)
	issues = append(issues, validateFile("invoice_items", c.InvoiceItems)...)
	issues = append(issues, validateOutputs(c)...)
	issues = append(issues, validateStorage(c.Storage)...)

	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err joins the error-severity issues into one error, or returns nil.
func Err(issues []Issue) error {
	var errs []error
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	return errors.Join(errs...)
}

func validateFile(name string, f File) []Issue {
	var issues []Issue
	if strings.TrimSpace(f.Input) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     name + ".input",
			Message:  "input path must not be empty",
		})
	}
	if strings.TrimSpace(f.Output) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     name + ".output",
			Message:  "output path must not be empty",
		})
	}
	return issues
}

// validateOutputs rejects outputs that would overwrite an input or another
// output of the same run.
func validateOutputs(c Config) []Issue {
	var issues []Issue

	inputs := map[string]string{}
	for path, p := range map[string]string{
		"keys.path":           c.Keys.Path,
		"customers.input":     c.Customers.Input,
		"invoices.input":      c.Invoices.Input,
		"invoice_items.input": c.InvoiceItems.Input,
	} {
		if strings.TrimSpace(p) != "" {
			inputs[filepath.Clean(p)] = path
		}
	}

	seen := map[string]string{}
	for _, o := range []struct{ path, value string }{
		{"customers.output", c.Customers.Output},
		{"invoices.output", c.Invoices.Output},
		{"invoice_items.output", c.InvoiceItems.Output},
	} {
		if strings.TrimSpace(o.value) == "" {
			continue
		}
		clean := filepath.Clean(o.value)
		if in, ok := inputs[clean]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     o.path,
				Message:  fmt.Sprintf("output %q would overwrite %s", o.value, in),
			})
		}
		if prev, ok := seen[clean]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     o.path,
				Message:  fmt.Sprintf("output %q is also used by %s", o.value, prev),
			})
		}
		seen[clean] = o.path
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	switch s.Kind {
	case "", "none":
		return nil
	case "sqlite", "postgres":
	default:
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; want sqlite, postgres or none", s.Kind),
		})
	}

	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  s.Kind + " storage requires a non-empty dsn",
		})
	}
	if !isIdent(s.TablePrefix) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.table_prefix",
			Message:  fmt.Sprintf("table_prefix %q may contain only letters, digits and underscores", s.TablePrefix),
		})
	}
	if s.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.batch_size",
			Message:  "batch_size must be >= 0",
		})
	}
	if !s.AutoCreateTable {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.auto_create_table",
			Message:  "auto_create_table is false; target tables must already exist",
		})
	}
	return issues
}

func isIdent(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
