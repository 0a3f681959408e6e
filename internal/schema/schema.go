// Package schema defines the fixed file layouts handled by the extractor.
//
// A Schema is selected explicitly by the caller (Customer, Invoice,
// InvoiceItem or Lookup by name). Each column carries the Type that decides
// how raw field text is parsed for storage and rendered for CSV output, so no
// component ever infers the layout by comparing header lists.
package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknown is returned for schema names or kinds outside the known set.
var ErrUnknown = errors.New("schema: unknown schema")

// Kind tags one of the known file layouts.
type Kind int

const (
	KindInvalid Kind = iota
	KindCustomer
	KindInvoice
	KindInvoiceItem
)

// String returns the config/table name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCustomer:
		return "customer"
	case KindInvoice:
		return "invoice"
	case KindInvoiceItem:
		return "invoice_item"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is the value type of a column.
type Type int

const (
	TypeString Type = iota
	TypeFloat
	TypeInt
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Format renders a raw field value for CSV output. Floats use fixed-point
// notation with six decimals ("12.5" → "12.500000"); ints are rendered in
// base 10. Conversion failures are returned unwrapped from strconv so callers
// can attach row/column context.
func (t Type) Format(raw string) (string, error) {
	switch t {
	case TypeString:
		return raw, nil
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', 6, 64), nil
	case TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	default:
		return "", fmt.Errorf("schema: unsupported column type %v", t)
	}
}

// Parse converts a raw field value into its typed Go value (string, float64
// or int64), as handed to storage backends.
func (t Type) Parse(raw string) (any, error) {
	switch t {
	case TypeString:
		return raw, nil
	case TypeFloat:
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case TypeInt:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	default:
		return nil, fmt.Errorf("schema: unsupported column type %v", t)
	}
}

// SQLType returns a portable SQL column type for t.
func (t Type) SQLType() string {
	switch t {
	case TypeFloat:
		return "DOUBLE PRECISION"
	case TypeInt:
		return "BIGINT"
	default:
		return "TEXT"
	}
}

// Column is a named, typed column.
type Column struct {
	Name string
	Type Type
}

// Schema is the ordered column layout of one file type. Column 0 is the key
// column used for filtering.
type Schema struct {
	Kind    Kind
	Columns []Column
}

var (
	Customer = Schema{
		Kind: KindCustomer,
		Columns: []Column{
			{Name: "CUSTOMER_CODE", Type: TypeString},
			{Name: "FIRSTNAME", Type: TypeString},
			{Name: "LASTNAME", Type: TypeString},
		},
	}

	Invoice = Schema{
		Kind: KindInvoice,
		Columns: []Column{
			{Name: "CUSTOMER_CODE", Type: TypeString},
			{Name: "INVOICE_CODE", Type: TypeString},
			{Name: "AMOUNT", Type: TypeFloat},
			{Name: "DATE", Type: TypeString},
		},
	}

	InvoiceItem = Schema{
		Kind: KindInvoiceItem,
		Columns: []Column{
			{Name: "INVOICE_CODE", Type: TypeString},
			{Name: "ITEM_CODE", Type: TypeString},
			{Name: "AMOUNT", Type: TypeFloat},
			{Name: "QUANTITY", Type: TypeInt},
		},
	}
)

// ForKind returns the schema tagged k.
func ForKind(k Kind) (Schema, error) {
	switch k {
	case KindCustomer:
		return Customer, nil
	case KindInvoice:
		return Invoice, nil
	case KindInvoiceItem:
		return InvoiceItem, nil
	default:
		return Schema{}, fmt.Errorf("%w: %v", ErrUnknown, k)
	}
}

// Lookup returns the schema for a config name ("customer", "invoice",
// "invoice_item"). Matching is case-insensitive.
func Lookup(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "customer":
		return Customer, nil
	case "invoice":
		return Invoice, nil
	case "invoice_item":
		return InvoiceItem, nil
	default:
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Header returns the comma-joined column names.
func (s Schema) Header() string { return strings.Join(s.Names(), ",") }

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Validate reports whether s is one of the known layouts with at least one
// column.
func (s Schema) Validate() error {
	if _, err := ForKind(s.Kind); err != nil {
		return err
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: %v has no columns", ErrUnknown, s.Kind)
	}
	return nil
}
