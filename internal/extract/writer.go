package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"
)

// FormatError reports a value that cannot be rendered with its column type,
// e.g. a non-numeric AMOUNT.
type FormatError struct {
	Row    int // 0-based row index in the record set
	Column string
	Value  string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("extract: row %d column %s: cannot format %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// WriteResult summarizes one written output file.
type WriteResult struct {
	Path   string
	Rows   int
	Bytes  int
	Digest uint64 // xxh3 of the file contents
}

// DigestHex returns the digest as 16 lowercase hex digits.
func (r WriteResult) DigestHex() string { return fmt.Sprintf("%016x", r.Digest) }

// Render formats rs as CSV text: the comma-joined header, then one line per
// row with every value rendered by its column type.
func Render(rs *RecordSet) ([]byte, error) {
	s := rs.Schema()
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(s.Header())
	buf.WriteByte('\n')

	cells := make([]string, len(s.Columns))
	for i := 0; i < rs.Len(); i++ {
		for j, c := range s.Columns {
			raw := rs.Column(c.Name)[i]
			v, err := c.Type.Format(raw)
			if err != nil {
				return nil, &FormatError{Row: i, Column: c.Name, Value: raw, Err: err}
			}
			cells[j] = v
		}
		buf.WriteString(strings.Join(cells, ","))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// WriteCSV renders rs and writes it to path. Rendering completes before the
// filesystem is touched, and the bytes go to a temporary file in the same
// directory that is renamed over path, so a failure never leaves a partial
// output behind.
func WriteCSV(rs *RecordSet, path string) (WriteResult, error) {
	if strings.TrimSpace(path) == "" {
		return WriteResult{}, fmt.Errorf("extract: write: output path must not be empty")
	}
	data, err := Render(rs)
	if err != nil {
		return WriteResult{}, fmt.Errorf("extract: write %s: %w", path, err)
	}
	return writeRendered(path, rs.Len(), data)
}

// writeRendered stores already rendered CSV bytes at path.
func writeRendered(path string, rows int, data []byte) (WriteResult, error) {
	if err := writeFileAtomic(path, data); err != nil {
		return WriteResult{}, fmt.Errorf("extract: write %s: %w", path, err)
	}
	return WriteResult{
		Path:   path,
		Rows:   rows,
		Bytes:  len(data),
		Digest: xxh3.Hash(data),
	}, nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
