package model

import "strings"

type Operation struct {
	ID          string
	Method      Method
	Path        string
	Summary     string
	Description string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response
	Deprecated  bool
}

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

type ParameterLocation string

const (
	LocationPath   ParameterLocation = "path"
	LocationQuery  ParameterLocation = "query"
	LocationHeader ParameterLocation = "header"
	LocationCookie ParameterLocation = "cookie"
)

type Parameter struct {
	Name        string
	In          ParameterLocation
	Description string
	Required    bool
	Deprecated  bool
	Schema      *Schema
}

type RequestBody struct {
	Description string
	Required    bool
	Content     []MediaTypeContent
}

type MediaTypeContent struct {
	MediaType string
	Schema    *Schema
}

type Response struct {
	StatusCode  string
	Description string
	Content     []MediaTypeContent
}

// IsSuccess reports whether the response is a 2xx response ("200", "204", "2XX").
func (r Response) IsSuccess() bool {
	return strings.HasPrefix(r.StatusCode, "2")
}

// SuccessResponse returns the first 2xx response in document order.
func (o *Operation) SuccessResponse() (Response, bool) {
	for _, r := range o.Responses {
		if r.IsSuccess() {
			return r, true
		}
	}
	return Response{}, false
}

// PreferredSchema returns the application/json schema if declared, otherwise
// the schema of the first content entry that has one.
func PreferredSchema(content []MediaTypeContent) *Schema {
	for _, c := range content {
		if c.MediaType == "application/json" && c.Schema != nil {
			return c.Schema
		}
	}
	for _, c := range content {
		if c.Schema != nil {
			return c.Schema
		}
	}
	return nil
}
