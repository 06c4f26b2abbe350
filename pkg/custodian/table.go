package custodian

import (
	"fmt"
	"sort"
)

// Kind enumerates the semantic types a column is expected to hold. Cells are
// stored as raw text regardless of kind; the kind drives which rules apply.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindString
	KindDate
	KindNumeric
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return "invalid"
	}
}

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name string
	Type Kind
}

// Customer dataset column names.
const (
	ColCustomerID    = "customer_id"
	ColFirstName     = "first_name"
	ColLastName      = "last_name"
	ColEmail         = "email"
	ColPhone         = "phone"
	ColDateOfBirth   = "date_of_birth"
	ColAddress       = "address"
	ColIncome        = "income"
	ColAccountStatus = "account_status"
	ColCreatedDate   = "created_date"
)

// CustomerSchema returns the fixed 10-column schema of the customer dataset,
// in on-disk header order.
func CustomerSchema() Schema {
	return Schema{Columns: []ColumnSchema{
		{Name: ColCustomerID, Type: KindInt},
		{Name: ColFirstName, Type: KindString},
		{Name: ColLastName, Type: KindString},
		{Name: ColEmail, Type: KindString},
		{Name: ColPhone, Type: KindString},
		{Name: ColDateOfBirth, Type: KindDate},
		{Name: ColAddress, Type: KindString},
		{Name: ColIncome, Type: KindNumeric},
		{Name: ColAccountStatus, Type: KindCategorical},
		{Name: ColCreatedDate, Type: KindDate},
	}}
}

// Column is a nullable column of raw textual cells.
type Column struct {
	name  string
	data  []string
	nulls []bool
}

func NewColumn(name string, n int) *Column {
	return &Column{name: name, data: make([]string, n), nulls: make([]bool, n)}
}

func (c *Column) Name() string { return c.name }
func (c *Column) Len() int     { return len(c.data) }

// Get returns the cell value and whether it is present.
func (c *Column) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *Column) IsNull(i int) bool        { return c.nulls[i] }
func (c *Column) Set(i int, v string)      { c.data[i] = v; c.nulls[i] = false }
func (c *Column) SetNull(i int)            { c.data[i] = ""; c.nulls[i] = true }
func (c *Column) Append(v string)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *Column) AppendNull()              { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }

func (c *Column) clone() *Column {
	cp := &Column{name: c.name, data: make([]string, len(c.data)), nulls: make([]bool, len(c.nulls))}
	copy(cp.data, c.data)
	copy(cp.nulls, c.nulls)
	return cp
}

// Table is a columnar container for one in-memory tabular snapshot. All
// cells are raw text; absent/blank input cells are stored as nulls.
type Table struct {
	schema Schema
	cols   []*Column
	index  map[string]int // name -> col index
	nrows  int
}

func NewTable(s Schema) *Table {
	t := &Table{schema: s, cols: make([]*Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		t.cols[i] = NewColumn(cs.Name, 0)
		t.index[cs.Name] = i
	}
	return t
}

func (t *Table) Schema() Schema { return t.schema }
func (t *Table) Rows() int      { return t.nrows }
func (t *Table) Cols() int      { return len(t.cols) }

func (t *Table) ColumnByName(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Require reports a structural error when any named column is missing.
// Callers abort on this rather than produce partial results.
func (t *Table) Require(names ...string) error {
	for _, name := range names {
		if _, ok := t.index[name]; !ok {
			return fmt.Errorf("required column %q not present in table", name)
		}
	}
	return nil
}

// AppendNullRow appends a row with all cells absent.
func (t *Table) AppendNullRow() {
	for _, c := range t.cols {
		c.AppendNull()
	}
	t.nrows++
}

// Get returns one cell by row index and column name.
func (t *Table) Get(row int, name string) (string, bool) {
	i, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.cols[i].Get(row)
}

// SetCell sets a single cell value by name (row must exist).
func (t *Table) SetCell(row int, name, v string) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	t.cols[i].Set(row, v)
	return nil
}

// SetCellNull marks a single cell absent by name (row must exist).
func (t *Table) SetCellNull(row int, name string) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	t.cols[i].SetNull(row)
	return nil
}

// Clone returns a deep copy. The cleaner mutates only its clone; the
// caller's table is never touched.
func (t *Table) Clone() *Table {
	cp := &Table{schema: t.schema, cols: make([]*Column, len(t.cols)), index: make(map[string]int, len(t.index)), nrows: t.nrows}
	for i, c := range t.cols {
		cp.cols[i] = c.clone()
	}
	for k, v := range t.index {
		cp.index[k] = v
	}
	return cp
}

// DropRows removes the rows at the given indices, preserving the order of
// the remaining rows. Indices refer to positions before any removal.
func (t *Table) DropRows(rows []int) {
	if len(rows) == 0 {
		return
	}
	drop := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r >= 0 && r < t.nrows {
			drop[r] = true
		}
	}
	if len(drop) == 0 {
		return
	}
	for _, c := range t.cols {
		data := c.data[:0]
		nulls := c.nulls[:0]
		for i := 0; i < t.nrows; i++ {
			if drop[i] {
				continue
			}
			data = append(data, c.data[i])
			nulls = append(nulls, c.nulls[i])
		}
		c.data = data
		c.nulls = nulls
	}
	t.nrows -= len(drop)
}

// DisplayPos translates a 0-based row index into the 1-based, header
// inclusive line number used in every user-facing reference to a row.
func DisplayPos(i int) int { return i + 2 }

// SortedKeys is a small helper for deterministic iteration over map-keyed
// results in reports.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
