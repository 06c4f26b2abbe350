// Package golearn converts between custodian Tables and
// github.com/sjwhitworth/golearn/base DenseInstances, so cleaned customer
// data can feed golearn models directly.
package golearn

import (
	"github.com/sjwhitworth/golearn/base"

	c "github.com/wdm0006/custodian/pkg/custodian"
)

// ToDenseInstances converts a Table into golearn DenseInstances. Cells are
// raw text, so every column becomes a CategoricalAttribute; absent cells
// map to the empty category. The last column is registered as the class
// attribute; callers training on a different target should re-register it.
func ToDenseInstances(t *c.Table) (*base.DenseInstances, error) {
	cols := t.Schema().Columns
	attrs := make([]base.Attribute, len(cols))
	for i, cs := range cols {
		ca := new(base.CategoricalAttribute)
		ca.SetName(cs.Name)
		attrs[i] = ca
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(t.Rows()); err != nil {
		return nil, err
	}

	for r := 0; r < t.Rows(); r++ {
		for i, cs := range cols {
			v, _ := t.Get(r, cs.Name)
			inst.Set(specs[i], r, attrs[i].GetSysValFromString(v))
		}
	}
	if len(attrs) > 0 {
		if err := inst.AddClassAttribute(attrs[len(attrs)-1]); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// FromDenseInstances converts golearn DenseInstances back into a Table.
// All attributes come back as string columns; empty categories become
// absent cells.
func FromDenseInstances(inst *base.DenseInstances) (*c.Table, error) {
	attrs := inst.AllAttributes()
	schema := c.Schema{Columns: make([]c.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		schema.Columns[i] = c.ColumnSchema{Name: a.GetName(), Type: c.KindString}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	t := c.NewTable(schema)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		t.AppendNullRow()
		for i, cs := range schema.Columns {
			v := specs[i].GetAttribute().GetStringFromSysVal(inst.Get(specs[i], r))
			if v == "" {
				continue
			}
			_ = t.SetCell(r, cs.Name, v)
		}
	}
	return t, nil
}
