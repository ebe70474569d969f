package tabular

import "fmt"

// Model is an in-memory tabular model: tables with typed columns and
// measures, plus the relationships between them. It plays the role of the
// live model handle a Tabular Editor script would mutate. Names are
// case-sensitive unique keys; insertion order is preserved for rendering.
type Model struct {
	Tables        []*Table
	Relationships []*Relationship

	tablesByName map[string]*Table
}

type Table struct {
	Name     string
	Columns  []*Column
	Measures []*Measure

	columnsByName  map[string]*Column
	measuresByName map[string]*Measure
}

type Column struct {
	Name     string
	DataType DataType
}

// Measure is a named calculated expression attached to a table. The
// expression text is opaque to the model; no DAX parsing happens here.
type Measure struct {
	Name       string
	Expression string
}

// Relationship links a many-side column to a one-side column.
type Relationship struct {
	FromTable  string
	FromColumn string
	ToTable    string
	ToColumn   string
}

func NewModel() *Model {
	return &Model{
		tablesByName: make(map[string]*Table),
	}
}

func (m *Model) FindTable(name string) *Table {
	return m.tablesByName[name]
}

func (m *Model) AddTable(name string) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("table name must not be empty")
	}
	if _, exists := m.tablesByName[name]; exists {
		return nil, fmt.Errorf("table %q already exists in the model", name)
	}
	t := &Table{
		Name:           name,
		columnsByName:  make(map[string]*Column),
		measuresByName: make(map[string]*Measure),
	}
	m.Tables = append(m.Tables, t)
	m.tablesByName[name] = t
	return t, nil
}

// FindMeasure searches the whole model's measure namespace and returns the
// measure and its owning table, or nils when absent.
func (m *Model) FindMeasure(name string) (*Measure, *Table) {
	for _, t := range m.Tables {
		if ms, ok := t.measuresByName[name]; ok {
			return ms, t
		}
	}
	return nil, nil
}

func (m *Model) AddRelationship(fromTable, fromColumn, toTable, toColumn string) *Relationship {
	rel := &Relationship{
		FromTable:  fromTable,
		FromColumn: fromColumn,
		ToTable:    toTable,
		ToColumn:   toColumn,
	}
	m.Relationships = append(m.Relationships, rel)
	return rel
}

func (t *Table) FindColumn(name string) *Column {
	return t.columnsByName[name]
}

func (t *Table) AddColumn(name string, dataType DataType) (*Column, error) {
	if name == "" {
		return nil, fmt.Errorf("column name must not be empty")
	}
	if _, exists := t.columnsByName[name]; exists {
		return nil, fmt.Errorf("column %q already exists on table %q", name, t.Name)
	}
	c := &Column{Name: name, DataType: dataType}
	t.Columns = append(t.Columns, c)
	t.columnsByName[name] = c
	return c, nil
}

func (t *Table) FindMeasure(name string) *Measure {
	return t.measuresByName[name]
}

func (t *Table) AddMeasure(name, expression string) (*Measure, error) {
	if name == "" {
		return nil, fmt.Errorf("measure name must not be empty")
	}
	if _, exists := t.measuresByName[name]; exists {
		return nil, fmt.Errorf("measure %q already exists on table %q", name, t.Name)
	}
	ms := &Measure{Name: name, Expression: expression}
	t.Measures = append(t.Measures, ms)
	t.measuresByName[name] = ms
	return ms, nil
}

func (t *Table) RemoveMeasure(name string) bool {
	if _, ok := t.measuresByName[name]; !ok {
		return false
	}
	delete(t.measuresByName, name)
	for i, ms := range t.Measures {
		if ms.Name == name {
			t.Measures = append(t.Measures[:i], t.Measures[i+1:]...)
			break
		}
	}
	return true
}
