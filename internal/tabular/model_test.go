package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelAddAndFindTable(t *testing.T) {
	model := NewModel()

	table, err := model.AddTable("Sales")
	require.NoError(t, err)
	assert.Equal(t, "Sales", table.Name)
	assert.Same(t, table, model.FindTable("Sales"))

	// Names are case-sensitive keys.
	assert.Nil(t, model.FindTable("sales"))

	_, err = model.AddTable("Sales")
	assert.Error(t, err)

	_, err = model.AddTable("")
	assert.Error(t, err)
}

func TestTableColumns(t *testing.T) {
	model := NewModel()
	table, err := model.AddTable("Sales")
	require.NoError(t, err)

	col, err := table.AddColumn("Amount", TypeDouble)
	require.NoError(t, err)
	assert.Equal(t, TypeDouble, col.DataType)
	assert.Same(t, col, table.FindColumn("Amount"))

	_, err = table.AddColumn("Amount", TypeInt64)
	assert.Error(t, err)
	assert.Equal(t, TypeDouble, table.FindColumn("Amount").DataType)
}

func TestModelMeasures(t *testing.T) {
	model := NewModel()
	table, err := model.AddTable("ModelMeasures")
	require.NoError(t, err)

	_, err = table.AddMeasure("Revenue", "SUM(Sales[Amount])")
	require.NoError(t, err)

	measure, owner := model.FindMeasure("Revenue")
	require.NotNil(t, measure)
	assert.Equal(t, "SUM(Sales[Amount])", measure.Expression)
	assert.Same(t, table, owner)

	assert.True(t, table.RemoveMeasure("Revenue"))
	assert.False(t, table.RemoveMeasure("Revenue"))

	measure, owner = model.FindMeasure("Revenue")
	assert.Nil(t, measure)
	assert.Nil(t, owner)
	assert.Empty(t, table.Measures)
}

func TestModelRelationships(t *testing.T) {
	model := NewModel()

	rel := model.AddRelationship("Sales", "CustomerID", "Customers", "ID")
	assert.Len(t, model.Relationships, 1)
	assert.Equal(t, "Sales", rel.FromTable)

	// The model does not de-duplicate; callers decide.
	model.AddRelationship("Sales", "CustomerID", "Customers", "ID")
	assert.Len(t, model.Relationships, 2)
}
