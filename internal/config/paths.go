package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckPaths stats the paths of c so a run can fail before it reads anything.
// Every input must be an existing regular file and every output must go into
// an existing directory. Empty paths are left to Validate.
func CheckPaths(c Config) []Issue {
	var issues []Issue

	for _, in := range []struct{ path, value string }{
		{"keys.path", c.Keys.Path},
		{"customers.input", c.Customers.Input},
		{"invoices.input", c.Invoices.Input},
		{"invoice_items.input", c.InvoiceItems.Input},
	} {
		if strings.TrimSpace(in.value) == "" {
			continue
		}
		fi, err := os.Stat(in.value)
		switch {
		case err != nil:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     in.path,
				Message:  fmt.Sprintf("cannot read input: %v", err),
			})
		case fi.IsDir():
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     in.path,
				Message:  fmt.Sprintf("input %q is a directory", in.value),
			})
		}
	}

	for _, out := range []struct{ path, value string }{
		{"customers.output", c.Customers.Output},
		{"invoices.output", c.Invoices.Output},
		{"invoice_items.output", c.InvoiceItems.Output},
	} {
		if strings.TrimSpace(out.value) == "" {
			continue
		}
		dir := filepath.Dir(out.value)
		fi, err := os.Stat(dir)
		switch {
		case err != nil:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     out.path,
				Message:  fmt.Sprintf("output directory unavailable: %v", err),
			})
		case !fi.IsDir():
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     out.path,
				Message:  fmt.Sprintf("output parent %q is not a directory", dir),
			})
		}
	}
	return issues
}
