package extract

import (
	"context"
	"fmt"
	"strings"

	"csvextract/internal/datasource"
	"csvextract/internal/schema"
)

// ParseError reports a data line with fewer fields than its schema needs.
// It aborts the whole run.
type ParseError struct {
	Source string
	Line   int
	Got    int
	Want   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("extract: %s:%d: got %d fields, want at least %d", e.Source, e.Line, e.Got, e.Want)
}

// FilterJoin reads the CSV behind src and keeps every data row whose first
// field is in targets, projected onto the columns of s.
//
// The header line is skipped and blank lines are ignored. Every other line is
// normalized, split on ',' and must carry at least len(s.Columns) fields,
// matching or not; a short line fails with *ParseError. Rows are kept in input
// order, and a key that appears on several rows keeps all of them.
func FilterJoin(ctx context.Context, src datasource.Source, s schema.Schema, targets *KeySet) (*RecordSet, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	rs := NewRecordSet(s)
	want := len(s.Columns)
	sawHeader := false

	err := eachLine(ctx, src, func(lineNo int, line string) error {
		if lineNo == 1 {
			sawHeader = true
			return nil
		}
		if line == "" {
			return nil
		}
		fields := strings.Split(line, ",")
		if len(fields) < want {
			return &ParseError{Source: src.Name(), Line: lineNo, Got: len(fields), Want: want}
		}
		if !targets.Contains(fields[0]) {
			return nil
		}
		return rs.Append(fields)
	})
	if err != nil {
		return nil, fmt.Errorf("extract: filter %v: %w", s.Kind, err)
	}
	if !sawHeader {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, src.Name())
	}
	return rs, nil
}
