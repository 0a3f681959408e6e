// Package datasource defines how the extractor obtains its input streams.
package datasource

import (
	"context"
	"io"
)

// Source opens a readable input stream. Callers own the returned ReadCloser
// and must close it on every exit path.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source in logs and errors (e.g. a file path).
	Name() string
}
