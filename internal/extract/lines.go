package extract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"csvextract/internal/datasource"
	"csvextract/internal/textnorm"
)

// readBufSize matches the read buffer the CSV parsers use for large exports.
const readBufSize = 64 * 1024

// EncodingError reports an input line that is not valid UTF-8.
type EncodingError struct {
	Source string
	Line   int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("extract: %s:%d: invalid UTF-8", e.Source, e.Line)
}

// eachLine opens src, normalizes every physical line with textnorm.Line and
// calls fn with the 1-based line number. The stream is closed on every exit
// path. ctx is checked between lines. A line that is not valid UTF-8 stops
// the iteration with *EncodingError.
func eachLine(ctx context.Context, src datasource.Source, fn func(lineNo int, line string) error) (err error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", src.Name(), cerr)
		}
	}()

	br := bufio.NewReaderSize(rc, readBufSize)
	lineNo := 0
	for {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		raw, rerr := br.ReadString('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return fmt.Errorf("read %s: %w", src.Name(), rerr)
		}
		if raw == "" && rerr != nil {
			// EOF with nothing pending.
			return nil
		}
		lineNo++
		if !utf8.ValidString(raw) {
			return &EncodingError{Source: src.Name(), Line: lineNo}
		}
		if err := fn(lineNo, textnorm.Line(raw)); err != nil {
			return err
		}
		if rerr != nil {
			return nil
		}
	}
}
