// Package grouping partitions a document's operations into controller groups.
package grouping

import (
	"fmt"
	"strings"

	"github.com/kolah/apimodel/internal/model"
	"github.com/kolah/apimodel/internal/naming"
)

type Strategy string

const (
	// ByTag groups by the first declared tag, falling back to the first path segment.
	ByTag Strategy = "ByTag"
	// ByFirstPathSegment groups by the first static path segment.
	ByFirstPathSegment Strategy = "ByFirstPathSegment"
	// ByPath groups by the static part of the path, so /users and /users/{id}
	// share a group while /orders/pending and /orders/completed do not.
	ByPath Strategy = "ByPath"
)

// DefaultGroup receives operations that yield no usable grouping key.
const DefaultGroup = "Default"

var strategies = []Strategy{ByTag, ByFirstPathSegment, ByPath}

// Strategies lists the accepted strategy names.
func Strategies() []Strategy {
	return append([]Strategy(nil), strategies...)
}

// ParseStrategy matches s case-insensitively against the known strategies.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range strategies {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown grouping strategy %q", s)
}

type Group struct {
	// Name is the normalized controller name.
	Name string
	// Key is the raw grouping key of the group's first operation.
	Key        string
	Operations []*model.Operation
}

// Partition splits ops into groups under strategy. Groups appear in order of first
// appearance and keep the relative document order of their operations. Every
// operation lands in exactly one group. An unknown strategy behaves as ByTag.
func Partition(strategy Strategy, ops []model.Operation) []Group {
	var groups []Group
	index := make(map[string]int)

	for i := range ops {
		op := &ops[i]
		key := keyFor(strategy, op)
		name := nameFor(strategy, key)
		if name == "" {
			key, name = "", DefaultGroup
		}

		pos, ok := index[name]
		if !ok {
			pos = len(groups)
			index[name] = pos
			groups = append(groups, Group{Name: name, Key: key})
		}
		groups[pos].Operations = append(groups[pos].Operations, op)
	}
	return groups
}

func keyFor(strategy Strategy, op *model.Operation) string {
	switch strategy {
	case ByFirstPathSegment:
		return strings.ToLower(FirstStaticSegment(op.Path))
	case ByPath:
		return "/" + strings.Join(StaticSegments(op.Path), "/")
	default:
		if len(op.Tags) > 0 && strings.TrimSpace(op.Tags[0]) != "" {
			return op.Tags[0]
		}
		return strings.ToLower(FirstStaticSegment(op.Path))
	}
}

func nameFor(strategy Strategy, key string) string {
	if strategy != ByPath {
		return naming.ToIdentifier(key)
	}
	var name strings.Builder
	for _, seg := range strings.Split(key, "/") {
		name.WriteString(naming.ToIdentifier(seg))
	}
	return name.String()
}

// IsParameter reports whether a path segment is a template placeholder such as "{id}".
func IsParameter(segment string) bool {
	return strings.Contains(segment, "{")
}

// Segments splits a path template into its non-empty segments.
func Segments(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// StaticSegments returns the path segments that are not placeholders.
func StaticSegments(path string) []string {
	var static []string
	for _, seg := range Segments(path) {
		if !IsParameter(seg) {
			static = append(static, seg)
		}
	}
	return static
}

// FirstStaticSegment returns the first path segment that is not a placeholder,
// or "" when there is none.
func FirstStaticSegment(path string) string {
	for _, seg := range Segments(path) {
		if !IsParameter(seg) {
			return seg
		}
	}
	return ""
}
