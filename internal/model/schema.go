package model

import "strings"

// Schema is one node of a document's schema graph. A node carrying a Ref is a
// by-reference use of a named schema and is never descended into.
type Schema struct {
	Name        string
	Description string
	Types       TypeSet
	Format      string
	Deprecated  bool
	Default     any

	// Object properties
	Properties []Property
	Required   []string

	// Array items
	Items *Schema

	// Enum values; a non-nil slice marks the node as an enum even when empty.
	Enum []any

	// Composition
	AllOf []*Schema
	OneOf []*Schema
	AnyOf []*Schema

	// Reference identity (component name)
	Ref string

	// Additional properties for maps
	AdditionalProperties *Schema

	// Constraints
	Minimum   *float64
	Maximum   *float64
	MinLength *int64
	MaxLength *int64
	Pattern   string
}

type Property struct {
	Name   string
	Schema *Schema
}

// HasEnum reports whether the node declares an enum.
func (s *Schema) HasEnum() bool {
	return s != nil && s.Enum != nil
}

// IsRequired reports whether name is listed in the schema's required set.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// TypeSet is a set of JSON schema primitive type flags.
type TypeSet uint8

const (
	TypeString TypeSet = 1 << iota
	TypeNumber
	TypeInteger
	TypeBoolean
	TypeArray
	TypeObject
	TypeNull
)

var typeNames = []struct {
	flag TypeSet
	name string
}{
	{TypeString, "string"},
	{TypeNumber, "number"},
	{TypeInteger, "integer"},
	{TypeBoolean, "boolean"},
	{TypeArray, "array"},
	{TypeObject, "object"},
	{TypeNull, "null"},
}

// ParseTypes builds a TypeSet from JSON schema type names. Unknown names are ignored.
func ParseTypes(names ...string) TypeSet {
	var set TypeSet
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		for _, tn := range typeNames {
			if tn.name == n {
				set |= tn.flag
			}
		}
	}
	return set
}

// Has reports whether every flag in t is set.
func (s TypeSet) Has(t TypeSet) bool {
	return t != 0 && s&t == t
}

// IsEmpty reports whether no type flag is set.
func (s TypeSet) IsEmpty() bool {
	return s == 0
}

func (s TypeSet) String() string {
	var names []string
	for _, tn := range typeNames {
		if s.Has(tn.flag) {
			names = append(names, tn.name)
		}
	}
	return strings.Join(names, "|")
}
