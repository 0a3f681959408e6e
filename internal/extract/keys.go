package extract

import (
	"context"
	"errors"
	"fmt"

	"csvextract/internal/datasource"
)

// ErrNoHeader is returned when an input has no header line at all.
var ErrNoHeader = errors.New("extract: input has no header line")

// LoadKeys reads the reference key file from src. Every line is normalized
// (ASCII transliteration, quote removal, whitespace trim); the first line is
// the header and is dropped. The remaining lines are returned in file order,
// duplicates and blanks included, so a file with a header and N data lines
// yields exactly N keys.
func LoadKeys(ctx context.Context, src datasource.Source) ([]string, error) {
	var (
		keys      []string
		sawHeader bool
	)
	err := eachLine(ctx, src, func(lineNo int, line string) error {
		if lineNo == 1 {
			sawHeader = true
			return nil
		}
		keys = append(keys, line)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("extract: load keys: %w", err)
	}
	if !sawHeader {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, src.Name())
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// KeySet is an ordered set of keys used as a row filter. Keys keep the order
// of their first occurrence; duplicates and empty keys are dropped.
type KeySet struct {
	order []string
	index map[string]struct{}
}

// NewKeySet builds a KeySet from keys.
func NewKeySet(keys []string) *KeySet {
	ks := &KeySet{index: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		ks.add(k)
	}
	return ks
}

func (ks *KeySet) add(k string) {
	if k == "" {
		return
	}
	if _, ok := ks.index[k]; ok {
		return
	}
	ks.index[k] = struct{}{}
	ks.order = append(ks.order, k)
}

// Contains reports whether k is a member. A nil KeySet contains nothing.
func (ks *KeySet) Contains(k string) bool {
	if ks == nil {
		return false
	}
	_, ok := ks.index[k]
	return ok
}

// Len returns the number of distinct keys.
func (ks *KeySet) Len() int {
	if ks == nil {
		return 0
	}
	return len(ks.order)
}

// Keys returns a copy of the keys in first-occurrence order.
func (ks *KeySet) Keys() []string {
	if ks == nil {
		return nil
	}
	return append([]string(nil), ks.order...)
}
