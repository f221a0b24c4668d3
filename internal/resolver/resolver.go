// Package resolver reduces a schema node to one semantic type.
package resolver

import (
	"github.com/kolah/apimodel/internal/model"
)

// Resolve reduces s to its canonical Type. Checks run in a fixed order:
// nullability, allOf unwrapping, reference, array, enum, primitive, map,
// and finally Any. When suppressNullable is set the nullability test is
// skipped, which is how a nullable node resolves its underlying type without
// wrapping twice.
//
// Reference nodes are leaves: the referenced body is never inspected, so
// resolution terminates on self-referential and mutually recursive schemas.
func Resolve(s *model.Schema, suppressNullable bool) Type {
	var visited []*model.Schema

	for s != nil {
		if !suppressNullable && IsNullable(s) {
			return resolveNullable(s)
		}

		if next := firstTypedAllOf(s); next != nil && next != s && !seen(visited, next) {
			visited = append(visited, s)
			s = next
			continue
		}

		if s.Ref != "" {
			return Reference(model.RefName(s.Ref))
		}

		if s.Types.Has(model.TypeArray) {
			return ArrayOf(Resolve(s.Items, false))
		}

		if s.HasEnum() {
			return Enum()
		}

		if p, ok := primitiveOf(s); ok {
			return Prim(p)
		}

		if s.Types.Has(model.TypeObject) && s.AdditionalProperties != nil {
			return MapOf(Resolve(s.AdditionalProperties, false))
		}

		return Any()
	}
	return Any()
}

// IsNullable reports whether s carries the null type flag itself or is a
// two-member oneOf with a null member.
func IsNullable(s *model.Schema) bool {
	if s == nil {
		return false
	}
	if s.Types.Has(model.TypeNull) {
		return true
	}
	if len(s.OneOf) == 2 {
		for _, member := range s.OneOf {
			if isNullMember(member) {
				return true
			}
		}
	}
	return false
}

func resolveNullable(s *model.Schema) Type {
	if len(s.OneOf) == 0 {
		return Resolve(s, true).AsNullable()
	}
	for _, member := range s.OneOf {
		if !isNullMember(member) {
			return Resolve(member, true).AsNullable()
		}
	}
	return Any().AsNullable()
}

func isNullMember(s *model.Schema) bool {
	return s != nil && s.Types.Has(model.TypeNull)
}

func firstTypedAllOf(s *model.Schema) *model.Schema {
	for _, member := range s.AllOf {
		if member != nil && !member.Types.IsEmpty() {
			return member
		}
	}
	return nil
}

func seen(visited []*model.Schema, s *model.Schema) bool {
	for _, v := range visited {
		if v == s {
			return true
		}
	}
	return false
}

func primitiveOf(s *model.Schema) (Primitive, bool) {
	switch {
	case s.Types.Has(model.TypeInteger):
		if s.Format == "int64" {
			return Int64, true
		}
		return Int32, true
	case s.Types.Has(model.TypeNumber):
		switch s.Format {
		case "float":
			return Float, true
		case "double":
			return Double, true
		}
		return Decimal, true
	case s.Types.Has(model.TypeString):
		switch s.Format {
		case "date":
			return Date, true
		case "date-time":
			return DateTime, true
		case "uuid":
			return UUID, true
		case "byte":
			return Bytes, true
		}
		return String, true
	case s.Types.Has(model.TypeBoolean):
		return Boolean, true
	}
	return "", false
}
