package resolver

import "strings"

type Kind string

const (
	KindAny       Kind = "any"
	KindPrimitive Kind = "primitive"
	KindReference Kind = "reference"
	KindArray     Kind = "array"
	KindMap       Kind = "map"
	KindEnum      Kind = "enum"
	KindNoContent Kind = "no-content"
)

type Primitive string

const (
	Int32    Primitive = "int32"
	Int64    Primitive = "int64"
	Float    Primitive = "float"
	Double   Primitive = "double"
	Decimal  Primitive = "decimal"
	String   Primitive = "string"
	Date     Primitive = "date"
	DateTime Primitive = "date-time"
	UUID     Primitive = "uuid"
	Bytes    Primitive = "byte"
	Boolean  Primitive = "boolean"
)

// Type is the resolved semantic type of a schema node.
type Type struct {
	Kind      Kind      `json:"kind" yaml:"kind"`
	Primitive Primitive `json:"primitive,omitempty" yaml:"primitive,omitempty"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Elem      *Type     `json:"elem,omitempty" yaml:"elem,omitempty"`
	Nullable  bool      `json:"nullable,omitempty" yaml:"nullable,omitempty"`
}

func Any() Type {
	return Type{Kind: KindAny}
}

func Prim(p Primitive) Type {
	return Type{Kind: KindPrimitive, Primitive: p}
}

func Reference(name string) Type {
	return Type{Kind: KindReference, Name: name}
}

func ArrayOf(elem Type) Type {
	return Type{Kind: KindArray, Elem: &elem}
}

func MapOf(value Type) Type {
	return Type{Kind: KindMap, Elem: &value}
}

// Enum is the string-backed type every enum resolves to, whatever its declared base type.
func Enum() Type {
	return Type{Kind: KindEnum, Primitive: String}
}

func NoContent() Type {
	return Type{Kind: KindNoContent}
}

// AsNullable returns a copy of t marked nullable. Applying it twice has no further effect.
func (t Type) AsNullable() Type {
	t.Nullable = true
	return t
}

// Equal reports structural equality, following Elem pointers.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind || t.Primitive != o.Primitive || t.Name != o.Name || t.Nullable != o.Nullable {
		return false
	}
	if t.Elem == nil || o.Elem == nil {
		return t.Elem == o.Elem
	}
	return t.Elem.Equal(*o.Elem)
}

// String renders a compact form: "int32?", "[]Pet", "map[string]int32".
func (t Type) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Type) write(b *strings.Builder) {
	switch t.Kind {
	case KindPrimitive:
		b.WriteString(string(t.Primitive))
	case KindReference:
		b.WriteString(t.Name)
	case KindEnum:
		b.WriteString("enum<string>")
	case KindArray:
		b.WriteString("[]")
		t.elem().write(b)
	case KindMap:
		b.WriteString("map[string]")
		t.elem().write(b)
	case KindNoContent:
		b.WriteString("void")
	default:
		b.WriteString("any")
	}
	if t.Nullable {
		b.WriteByte('?')
	}
}

func (t Type) elem() Type {
	if t.Elem == nil {
		return Any()
	}
	return *t.Elem
}
