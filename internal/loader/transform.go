package loader

import (
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/apimodel/internal/model"
)

type transformer struct {
	componentSchemas map[*base.Schema]string
}

func Transform(result *Result) (*model.Spec, error) {
	doc := result.Document.Model

	t := &transformer{
		componentSchemas: make(map[*base.Schema]string),
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		for name, schemaProxy := range doc.Components.Schemas.FromOldest() {
			if s := schemaProxy.Schema(); s != nil {
				t.componentSchemas[s] = "#/components/schemas/" + name
			}
		}
	}

	spec := &model.Spec{
		Info: transformInfo(doc.Info),
		Tags: transformTags(doc.Tags),
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		for name, schemaProxy := range doc.Components.Schemas.FromOldest() {
			schema := t.transformSchema(name, schemaProxy.Schema())
			if schema == nil {
				schema = &model.Schema{Name: name}
			}
			spec.Schemas = append(spec.Schemas, *schema)
		}
	}

	if doc.Paths != nil && doc.Paths.PathItems != nil {
		for pathStr, pathItem := range doc.Paths.PathItems.FromOldest() {
			spec.Operations = append(spec.Operations, t.transformPath(pathStr, pathItem)...)
		}
	}

	return spec, nil
}

func transformInfo(info *base.Info) model.Info {
	if info == nil {
		return model.Info{}
	}
	return model.Info{
		Title:       info.Title,
		Description: info.Description,
		Version:     info.Version,
	}
}

func transformTags(tags []*base.Tag) []model.Tag {
	var result []model.Tag
	for _, t := range tags {
		if t == nil {
			continue
		}
		result = append(result, model.Tag{
			Name:        t.Name,
			Description: t.Description,
		})
	}
	return result
}

func (t *transformer) transformPath(pathStr string, pathItem *v3.PathItem) []model.Operation {
	if pathItem == nil {
		return nil
	}

	var ops []model.Operation

	// Use a slice for deterministic ordering
	methods := []struct {
		method model.Method
		op     *v3.Operation
	}{
		{model.MethodGet, pathItem.Get},
		{model.MethodPost, pathItem.Post},
		{model.MethodPut, pathItem.Put},
		{model.MethodDelete, pathItem.Delete},
		{model.MethodPatch, pathItem.Patch},
		{model.MethodHead, pathItem.Head},
		{model.MethodOptions, pathItem.Options},
		{model.MethodTrace, pathItem.Trace},
	}

	for _, m := range methods {
		if m.op == nil {
			continue
		}
		ops = append(ops, t.transformOperation(m.method, pathStr, pathItem.Parameters, m.op))
	}

	return ops
}

func (t *transformer) transformOperation(method model.Method, path string, shared []*v3.Parameter, op *v3.Operation) model.Operation {
	operation := model.Operation{
		ID:          op.OperationId,
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  boolPtr(op.Deprecated),
	}

	for _, p := range mergeParameters(shared, op.Parameters) {
		operation.Parameters = append(operation.Parameters, t.transformParameter(p))
	}

	if op.RequestBody != nil {
		operation.RequestBody = t.transformRequestBody(op.RequestBody)
	}

	if op.Responses != nil && op.Responses.Codes != nil {
		for code, resp := range op.Responses.Codes.FromOldest() {
			operation.Responses = append(operation.Responses, t.transformResponse(code, resp))
		}
	}

	return operation
}

// mergeParameters returns the path-level parameters not redeclared by the
// operation, followed by the operation's own parameters.
func mergeParameters(shared, own []*v3.Parameter) []*v3.Parameter {
	if len(shared) == 0 {
		return own
	}

	type key struct{ name, in string }
	declared := make(map[key]bool, len(own))
	for _, p := range own {
		if p != nil {
			declared[key{p.Name, strings.ToLower(p.In)}] = true
		}
	}

	var merged []*v3.Parameter
	for _, p := range shared {
		if p != nil && !declared[key{p.Name, strings.ToLower(p.In)}] {
			merged = append(merged, p)
		}
	}
	return append(merged, own...)
}

func (t *transformer) transformParameter(p *v3.Parameter) model.Parameter {
	if p == nil {
		return model.Parameter{}
	}

	param := model.Parameter{
		Name:        p.Name,
		In:          model.ParameterLocation(strings.ToLower(p.In)),
		Description: p.Description,
		Required:    boolPtr(p.Required),
		Deprecated:  p.Deprecated,
	}

	if p.Schema != nil {
		param.Schema = t.transformSchemaProxy(p.Schema)
	} else if p.Content != nil {
		for _, content := range p.Content.FromOldest() {
			if content.Schema != nil {
				param.Schema = t.transformSchemaProxy(content.Schema)
				break
			}
		}
	}

	return param
}

func (t *transformer) transformRequestBody(rb *v3.RequestBody) *model.RequestBody {
	body := &model.RequestBody{
		Description: rb.Description,
		Required:    boolPtr(rb.Required),
	}

	if rb.Content != nil {
		for mediaType, content := range rb.Content.FromOldest() {
			mtc := model.MediaTypeContent{MediaType: mediaType}
			if content.Schema != nil {
				mtc.Schema = t.transformSchemaProxy(content.Schema)
			}
			body.Content = append(body.Content, mtc)
		}
	}

	return body
}

func (t *transformer) transformResponse(code string, resp *v3.Response) model.Response {
	response := model.Response{StatusCode: code}
	if resp == nil {
		return response
	}
	response.Description = resp.Description

	if resp.Content != nil {
		for mediaType, content := range resp.Content.FromOldest() {
			mtc := model.MediaTypeContent{MediaType: mediaType}
			if content.Schema != nil {
				mtc.Schema = t.transformSchemaProxy(content.Schema)
			}
			response.Content = append(response.Content, mtc)
		}
	}

	return response
}

// transformSchemaProxy converts a schema use site. References, and inline
// uses of a component schema, become reference leaves.
func (t *transformer) transformSchemaProxy(proxy *base.SchemaProxy) *model.Schema {
	if proxy == nil {
		return nil
	}

	if ref := proxy.GetReference(); ref != "" {
		return referenceNode(ref, proxy.Schema())
	}

	s := proxy.Schema()
	if resolved, ok := t.componentSchemas[s]; ok {
		return referenceNode(resolved, s)
	}

	return t.transformSchema("", s)
}

// referenceNode builds a leaf for a $ref. Only the target's type flags and
// description are copied; its body is never visited, which keeps recursive
// schemas finite.
func referenceNode(ref string, target *base.Schema) *model.Schema {
	node := &model.Schema{Ref: ref}
	if target != nil {
		node.Types = typesOf(target)
		node.Description = target.Description
	}
	return node
}

func typesOf(s *base.Schema) model.TypeSet {
	types := model.ParseTypes(s.Type...)
	if boolPtr(s.Nullable) {
		types |= model.TypeNull
	}
	return types
}

func (t *transformer) transformSchema(name string, s *base.Schema) *model.Schema {
	if s == nil {
		return nil
	}

	schema := &model.Schema{
		Name:        name,
		Description: s.Description,
		Types:       typesOf(s),
		Format:      s.Format,
		Deprecated:  boolPtr(s.Deprecated),
		Default:     decodeNode(s.Default),
		Pattern:     s.Pattern,
		Required:    s.Required,
	}

	if s.Enum != nil {
		schema.Enum = make([]any, 0, len(s.Enum))
		for _, e := range s.Enum {
			schema.Enum = append(schema.Enum, decodeNode(e))
		}
	}

	if s.Properties != nil {
		for propName, propProxy := range s.Properties.FromOldest() {
			schema.Properties = append(schema.Properties, model.Property{
				Name:   propName,
				Schema: t.transformSchemaProxy(propProxy),
			})
		}
	}

	if s.Items != nil && s.Items.A != nil {
		schema.Items = t.transformSchemaProxy(s.Items.A)
	}

	if s.AdditionalProperties != nil && s.AdditionalProperties.A != nil {
		schema.AdditionalProperties = t.transformSchemaProxy(s.AdditionalProperties.A)
	}

	for _, proxy := range s.AllOf {
		schema.AllOf = append(schema.AllOf, t.transformSchemaProxy(proxy))
	}
	for _, proxy := range s.OneOf {
		schema.OneOf = append(schema.OneOf, t.transformSchemaProxy(proxy))
	}
	for _, proxy := range s.AnyOf {
		schema.AnyOf = append(schema.AnyOf, t.transformSchemaProxy(proxy))
	}

	if s.Minimum != nil {
		v := float64(*s.Minimum)
		schema.Minimum = &v
	}
	if s.Maximum != nil {
		v := float64(*s.Maximum)
		schema.Maximum = &v
	}
	if s.MinLength != nil {
		v := int64(*s.MinLength)
		schema.MinLength = &v
	}
	if s.MaxLength != nil {
		v := int64(*s.MaxLength)
		schema.MaxLength = &v
	}

	return schema
}

// decodeNode turns a YAML value node into plain Go values. Scalars that fail
// to decode keep their literal text.
func decodeNode(node *yaml.Node) any {
	if node == nil {
		return nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return node.Value
	}
	return v
}

func boolPtr(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
