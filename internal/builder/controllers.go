package builder

import (
	"strconv"
	"strings"

	"github.com/kolah/apimodel/internal/definition"
	"github.com/kolah/apimodel/internal/grouping"
	"github.com/kolah/apimodel/internal/model"
	"github.com/kolah/apimodel/internal/naming"
	"github.com/kolah/apimodel/internal/resolver"
)

// Controllers groups the document's operations with the configured strategy
// and builds one controller per group, in group order.
func (b *Builder) Controllers(spec *model.Spec) []definition.Controller {
	strategy := b.cfg.Strategy()
	groups := grouping.Partition(strategy, spec.Operations)

	controllers := make([]definition.Controller, 0, len(groups))
	for _, g := range groups {
		controllers = append(controllers, b.controller(spec, strategy, g))
	}
	return controllers
}

func (b *Builder) controller(spec *model.Spec, strategy grouping.Strategy, g grouping.Group) definition.Controller {
	prefix := commonPrefix(g.Operations)

	c := definition.Controller{
		Name:    g.Name,
		Route:   "/" + strings.Join(prefix, "/"),
		Methods: make([]definition.Method, 0, len(g.Operations)),
	}

	if strategy == grouping.ByTag {
		if tag, ok := spec.TagByName(g.Key); ok {
			c.Documentation = b.doc(tag.Description)
		}
	}

	used := make(map[string]bool)
	for _, op := range g.Operations {
		m := b.method(op, len(prefix))
		m.Name = uniqueName(used, m.Name)
		c.Methods = append(c.Methods, m)
	}
	return c
}

func (b *Builder) method(op *model.Operation, prefixLen int) definition.Method {
	m := definition.Method{
		Name:        methodName(op),
		OperationID: op.ID,
		HTTPMethod:  string(op.Method),
		Route:       strings.Join(grouping.Segments(op.Path)[prefixLen:], "/"),
		Parameters:  make([]definition.Parameter, 0, len(op.Parameters)+1),
		ReturnType:  returnType(op),
		Deprecated:  op.Deprecated,
	}

	if op.Summary != "" {
		m.Documentation = b.doc(op.Summary)
	} else {
		m.Documentation = b.doc(op.Description)
	}

	for _, p := range op.Parameters {
		m.Parameters = append(m.Parameters, b.parameter(p))
	}
	if op.RequestBody != nil {
		m.Parameters = append(m.Parameters, b.body(op.RequestBody))
	}
	return m
}

func (b *Builder) parameter(p model.Parameter) definition.Parameter {
	param := definition.Parameter{
		Name:          p.Name,
		Identifier:    naming.ToIdentifier(p.Name),
		Type:          resolver.Resolve(p.Schema, false),
		Source:        source(p.In),
		Required:      p.Required,
		Documentation: b.doc(p.Description),
	}
	if p.Schema != nil {
		param.DefaultValue = literal(p.Schema.Default)
	}
	return param
}

func (b *Builder) body(rb *model.RequestBody) definition.Parameter {
	return definition.Parameter{
		Name:          "body",
		Identifier:    "Body",
		Type:          resolver.Resolve(model.PreferredSchema(rb.Content), false),
		Source:        definition.SourceBody,
		Required:      rb.Required,
		Documentation: b.doc(rb.Description),
	}
}

func source(in model.ParameterLocation) definition.ParameterSource {
	switch in {
	case model.LocationPath:
		return definition.SourcePath
	case model.LocationQuery:
		return definition.SourceQuery
	case model.LocationHeader:
		return definition.SourceHeader
	}
	return definition.SourceDefault
}

// returnType resolves the first 2xx response. A success response without a
// schema, or no success response at all, yields NoContent.
func returnType(op *model.Operation) resolver.Type {
	resp, ok := op.SuccessResponse()
	if !ok {
		return resolver.NoContent()
	}
	schema := model.PreferredSchema(resp.Content)
	if schema == nil {
		return resolver.NoContent()
	}
	return resolver.Resolve(schema, false)
}

// methodName uses the operationId when present, otherwise the HTTP method
// followed by the static segments and "By<Param>" for each placeholder:
// GET /users/{id}/orders -> GetUsersByIdOrders.
func methodName(op *model.Operation) string {
	if op.ID != "" {
		if name := naming.ToIdentifier(op.ID); name != "" {
			return name
		}
	}

	var name strings.Builder
	name.WriteString(naming.ToUpperCamel(string(op.Method)))
	for _, seg := range grouping.Segments(op.Path) {
		if grouping.IsParameter(seg) {
			name.WriteString("By")
			name.WriteString(naming.ToIdentifier(placeholderName(seg)))
			continue
		}
		name.WriteString(naming.ToIdentifier(seg))
	}
	return name.String()
}

func placeholderName(seg string) string {
	start := strings.Index(seg, "{")
	end := strings.Index(seg, "}")
	if start < 0 || end <= start {
		return strings.Trim(seg, "{}")
	}
	return seg[start+1 : end]
}

// uniqueName returns name, or name with the smallest numeric suffix from 2
// upward that is not yet used, and records the result.
func uniqueName(used map[string]bool, name string) string {
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	used[candidate] = true
	return candidate
}

// commonPrefix returns the longest run of leading static segments shared by
// every operation path. It stops at the first placeholder.
func commonPrefix(ops []*model.Operation) []string {
	if len(ops) == 0 {
		return nil
	}

	prefix := leadingStatic(grouping.Segments(ops[0].Path))
	for _, op := range ops[1:] {
		segs := grouping.Segments(op.Path)
		n := 0
		for n < len(prefix) && n < len(segs) && prefix[n] == segs[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return prefix
}

func leadingStatic(segs []string) []string {
	for i, seg := range segs {
		if grouping.IsParameter(seg) {
			return segs[:i]
		}
	}
	return segs
}
