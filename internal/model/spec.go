package model

import "strings"

type Spec struct {
	Info       Info
	Tags       []Tag
	Schemas    []Schema
	Operations []Operation
}

// TagByName returns the declared tag with the given name.
func (s *Spec) TagByName(name string) (Tag, bool) {
	for _, t := range s.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// RefName returns the last segment of a $ref path.
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

type Info struct {
	Title       string
	Description string
	Version     string
}

type Tag struct {
	Name        string
	Description string
}
