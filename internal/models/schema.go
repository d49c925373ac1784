package models

// SemanticType describes how a column's values should be read.
type SemanticType string

const (
	TypeNumber   SemanticType = "number"
	TypeString   SemanticType = "string"
	TypeDate     SemanticType = "date"
	TypePercent  SemanticType = "percent"
	TypeCurrency SemanticType = "currency"
)

// Numeric reports whether values of this type are plotted as numbers.
func (t SemanticType) Numeric() bool {
	switch t {
	case TypeNumber, TypePercent, TypeCurrency:
		return true
	default:
		return false
	}
}

type ColumnRole string

const (
	RoleDimension  ColumnRole = "dimension"
	RoleMeasure    ColumnRole = "measure"
	RoleIdentifier ColumnRole = "identifier"
)

// Column describes one column of a dataset. Columns are never mutated once a
// schema has been built.
type Column struct {
	Key          string       `json:"key"`
	Label        string       `json:"label"`
	Type         SemanticType `json:"type"`
	Role         ColumnRole   `json:"role"`
	Unit         string       `json:"unit,omitempty"`
	Aggregatable bool         `json:"aggregatable"`
	Filterable   bool         `json:"filterable"`
}

// Schema is the column contract of a single dataset.
type Schema struct {
	ID                string   `json:"id"`
	Columns           []Column `json:"columns"`
	DefaultDateColumn string   `json:"defaultDateColumn,omitempty"`
	DefaultMeasure    string   `json:"defaultMeasure,omitempty"`
	DefaultDimension  string   `json:"defaultDimension,omitempty"`
}

func (s *Schema) Column(key string) (Column, bool) {
	if s == nil {
		return Column{}, false
	}
	for _, c := range s.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

func (s *Schema) Dimensions() []Column { return s.byRole(RoleDimension) }

func (s *Schema) Measures() []Column { return s.byRole(RoleMeasure) }

func (s *Schema) byRole(role ColumnRole) []Column {
	if s == nil {
		return nil
	}
	var out []Column
	for _, c := range s.Columns {
		if c.Role == role {
			out = append(out, c)
		}
	}
	return out
}
