package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLocalOpen covers success, missing file, empty path, directories and a
// pre-canceled context.
func TestLocalOpen(t *testing.T) {
	t.Parallel()

	type tc struct {
		name            string
		prepare         func(t *testing.T) string // returns path to open
		makeCtx         func(t *testing.T) context.Context
		wantErrIs       error  // checked via errors.Is
		wantErrContains string // substring expected in error message
		wantContent     string // if non-empty, verifies read content on success
	}

	writeSample := func(t *testing.T, payload string) string {
		t.Helper()
		p := filepath.Join(t.TempDir(), "sample.csv")
		if err := os.WriteFile(p, []byte(payload), 0o644); err != nil {
			t.Fatalf("write test file: %v", err)
		}
		return p
	}

	cases := []tc{
		{
			name: "success_reads_content",
			prepare: func(t *testing.T) string {
				return writeSample(t, "CUSTOMER_CODE\nCUST1\n")
			},
			makeCtx:     func(t *testing.T) context.Context { return context.Background() },
			wantContent: "CUSTOMER_CODE\nCUST1\n",
		},
		{
			name: "missing_file_errors_with_wrapping",
			prepare: func(t *testing.T) string {
				t.Helper()
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			makeCtx:         func(t *testing.T) context.Context { return context.Background() },
			wantErrIs:       os.ErrNotExist,
			wantErrContains: "open ",
		},
		{
			name:      "blank_path_fails_before_io",
			prepare:   func(t *testing.T) string { return "  " },
			makeCtx:   func(t *testing.T) context.Context { return context.Background() },
			wantErrIs: ErrNoPath,
		},
		{
			name:            "directory_rejected",
			prepare:         func(t *testing.T) string { return t.TempDir() },
			makeCtx:         func(t *testing.T) context.Context { return context.Background() },
			wantErrContains: "is a directory",
		},
		{
			name: "pre_canceled_context_short_circuits",
			prepare: func(t *testing.T) string {
				return writeSample(t, "ignored")
			},
			makeCtx: func(t *testing.T) context.Context {
				t.Helper()
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErrIs: context.Canceled,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			path := c.prepare(t)
			ctx := c.makeCtx(t)

			src := NewLocal(path)
			if src.Name() != path {
				t.Fatalf("Name() = %q, want %q", src.Name(), path)
			}
			rc, err := src.Open(ctx)

			if c.wantErrIs != nil || c.wantErrContains != "" {
				if err == nil {
					rc.Close()
					t.Fatalf("expected error, got nil")
				}
				if c.wantErrIs != nil && !errors.Is(err, c.wantErrIs) {
					t.Fatalf("errors.Is(%v, %v) = false", err, c.wantErrIs)
				}
				if c.wantErrContains != "" && !strings.Contains(err.Error(), c.wantErrContains) {
					t.Fatalf("error %q does not contain substring %q", err, c.wantErrContains)
				}
				if rc != nil {
					t.Fatalf("got non-nil ReadCloser on error: %T", rc)
				}
				return
			}

			if err != nil {
				t.Fatalf("Open() unexpected error: %v", err)
			}
			defer rc.Close()

			got, rerr := io.ReadAll(rc)
			if rerr != nil {
				t.Fatalf("reading: %v", rerr)
			}
			if string(got) != c.wantContent {
				t.Fatalf("content mismatch: got %q, want %q", string(got), c.wantContent)
			}
		})
	}
}

// BenchmarkLocalOpen_Success measures the steady-state cost of opening a small file.
func BenchmarkLocalOpen_Success(b *testing.B) {
	p := filepath.Join(b.TempDir(), "sample.csv")
	if err := os.WriteFile(p, []byte("CUSTOMER_CODE\n"), 0o644); err != nil {
		b.Fatalf("write test file: %v", err)
	}

	src := NewLocal(p)
	ctx := context.Background()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rc, err := src.Open(ctx)
		if err != nil {
			b.Fatal(err)
		}
		if err := rc.Close(); err != nil {
			b.Fatal(err)
		}
	}
}
