package column

import "github.com/reifydb/reifydb/pkg/row"

// Column pairs a name with a ColumnData container.
type Column struct {
	Name string
	Data Data
}

// New builds a Column from a name and container.
func New(name string, data Data) Column { return Column{Name: name, Data: data} }

func (c Column) Len() int                { return c.Data.Len() }
func (c Column) IsDefined(i int) bool    { return c.Data.IsDefined(i) }
func (c Column) GetValue(i int) row.Value { return c.Data.GetValue(i) }

// Push appends v, reassigning Data if the container was promoted
// (Undefined -> typed, or bare -> Option).
func (c *Column) Push(v row.Value) error {
	next, err := c.Data.PushValue(v)
	if err != nil {
		return err
	}
	c.Data = next
	return nil
}

// PushNone appends a null, reassigning Data on promotion.
func (c *Column) PushNone() { c.Data = c.Data.PushNone() }

// Extend concatenates other's values onto c, reassigning Data on
// promotion (see ColumnData.extend's promotion rules).
func (c *Column) Extend(other Data) error {
	next, err := c.Data.Extend(other)
	if err != nil {
		return err
	}
	c.Data = next
	return nil
}

// Clone deep-copies the column.
func (c Column) Clone() Column { return Column{Name: c.Name, Data: c.Data.Clone()} }
