package tabular

// DataType is the set of column data types the model supports.
// TypeString is the zero value and the fallback for unrecognized tags.
type DataType int

const (
	TypeString DataType = iota
	TypeInt64
	TypeDouble
	TypeDateTime
	TypeBoolean
)

// ParseDataType maps a model-spec type tag to a DataType. The mapping is
// total: any tag outside the four recognized values (including the empty
// string) yields TypeString.
func ParseDataType(tag string) DataType {
	switch tag {
	case "Int64":
		return TypeInt64
	case "Double":
		return TypeDouble
	case "DateTime":
		return TypeDateTime
	case "Boolean":
		return TypeBoolean
	default:
		return TypeString
	}
}

func (t DataType) String() string {
	switch t {
	case TypeInt64:
		return "Int64"
	case TypeDouble:
		return "Double"
	case TypeDateTime:
		return "DateTime"
	case TypeBoolean:
		return "Boolean"
	default:
		return "String"
	}
}

// DotNetName renders the type the way Tabular Editor scripts reference it.
func (t DataType) DotNetName() string {
	return "DataType." + t.String()
}

func (t DataType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}
