package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDataType(t *testing.T) {
	tests := []struct {
		tag  string
		want DataType
	}{
		{"Int64", TypeInt64},
		{"Double", TypeDouble},
		{"DateTime", TypeDateTime},
		{"Boolean", TypeBoolean},
		{"String", TypeString},
		// Everything unrecognized falls back to String.
		{"", TypeString},
		{"Currency", TypeString},
		{"int64", TypeString},
		{"boolean", TypeString},
		{"datetime2", TypeString},
	}

	for _, tt := range tests {
		t.Run("tag_"+tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDataType(tt.tag))
		})
	}
}

func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "Int64", TypeInt64.String())
	assert.Equal(t, "String", TypeString.String())
	assert.Equal(t, "DataType.DateTime", TypeDateTime.DotNetName())
}

func TestDataTypeMarshalJSON(t *testing.T) {
	data, err := TypeDouble.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"Double"`, string(data))
}
