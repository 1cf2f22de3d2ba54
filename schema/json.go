package schema

const URL = "http://json-schema.org/draft-07/schema#"

type Type string

const (
	String  Type = "string"
	Integer Type = "integer"
	Number  Type = "number"
	Boolean Type = "boolean"
	Array   Type = "array"
	Object  Type = "object"
)

// JSON is a way to describe a JSON Schema
type JSON struct {
	Type                 interface{}      `json:"type,omitzero"` // Can be Type or []interface{} for union types like ["string", "null"]
	Description          string           `json:"description,omitzero"`
	Properties           map[string]*JSON `json:"properties,omitzero"`
	Items                *JSON            `json:"items,omitzero"`
	Enum                 []string         `json:"enum,omitzero"`
	Required             []string         `json:"required,omitzero"`
	AdditionalProperties *bool            `json:"additionalProperties,omitzero"`
	Schema               string           `json:"$schema,omitzero"`
	OneOf                []*JSON          `json:"oneOf,omitzero"`
	AnyOf                []*JSON          `json:"anyOf,omitzero"`
	AllOf                []*JSON          `json:"allOf,omitzero"`
}

// Prop is a named property used when building object schemas.
type Prop struct {
	Name     string
	Schema   *JSON
	Required bool
}

// Obj builds an object schema from props, preserving the required list in
// declaration order.
func Obj(props ...Prop) *JSON {
	s := &JSON{
		Type:       Object,
		Properties: make(map[string]*JSON, len(props)),
	}
	for _, p := range props {
		s.Properties[p.Name] = p.Schema
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	return s
}

// Str describes a string property.
func Str(description string) *JSON { return &JSON{Type: String, Description: description} }

// Int describes an integer property.
func Int(description string) *JSON { return &JSON{Type: Integer, Description: description} }

// Bool describes a boolean property.
func Bool(description string) *JSON { return &JSON{Type: Boolean, Description: description} }

// Arr describes an array property whose elements follow items.
func Arr(items *JSON, description string) *JSON {
	return &JSON{Type: Array, Items: items, Description: description}
}

// Any describes a property that accepts any JSON value.
func Any(description string) *JSON { return &JSON{Description: description} }

// Enum describes a string property restricted to values.
func Enum(description string, values ...string) *JSON {
	return &JSON{Type: String, Description: description, Enum: values}
}
