// Package builder turns a loaded document into contract and controller definitions.
package builder

import (
	"encoding/json"
	"fmt"

	"github.com/kolah/apimodel/internal/config"
	"github.com/kolah/apimodel/internal/definition"
	"github.com/kolah/apimodel/internal/model"
	"github.com/kolah/apimodel/internal/naming"
	"github.com/kolah/apimodel/internal/resolver"
)

// Builder holds only its generator settings and is safe for concurrent use.
type Builder struct {
	cfg config.Generator
}

func New(cfg config.Generator) *Builder {
	return &Builder{cfg: cfg}
}

// Build runs the enabled passes over spec. source names the document in the model.
func (b *Builder) Build(source string, spec *model.Spec) *definition.Model {
	m := &definition.Model{
		Source:      source,
		Title:       spec.Info.Title,
		Version:     spec.Info.Version,
		Options:     b.Options(),
		Contracts:   []definition.Contract{},
		Controllers: []definition.Controller{},
	}
	if b.cfg.GenerateContracts {
		m.Contracts = b.Contracts(spec.Schemas)
	}
	if b.cfg.GenerateControllers {
		m.Controllers = b.Controllers(spec)
	}
	return m
}

// Options returns the rendering hints forwarded to emitters.
func (b *Builder) Options() definition.Options {
	return definition.Options{
		UseRecords:                   b.cfg.UseRecords,
		BaseNamespace:                b.cfg.BaseNamespace,
		ContractsNamespace:           b.cfg.ContractsNamespace,
		ControllersNamespace:         b.cfg.ControllersNamespace,
		UseAsyncControllers:          b.cfg.UseAsyncControllers,
		AddAPIControllerAttribute:    b.cfg.AddAPIControllerAttribute,
		ControllerBaseClass:          b.cfg.ControllerBaseClass,
		GenerateValidationAttributes: b.cfg.GenerateValidationAttributes,
		GenerateXMLDocumentation:     b.cfg.GenerateXMLDocumentation,
	}
}

// Contracts builds one contract per named schema, in input order.
func (b *Builder) Contracts(schemas []model.Schema) []definition.Contract {
	contracts := make([]definition.Contract, 0, len(schemas))
	for i := range schemas {
		contracts = append(contracts, b.contract(&schemas[i]))
	}
	return contracts
}

func (b *Builder) contract(s *model.Schema) definition.Contract {
	c := definition.Contract{
		Name:          s.Name,
		Documentation: b.doc(s.Description),
		Deprecated:    s.Deprecated,
		Properties:    make([]definition.Property, 0, len(s.Properties)),
	}
	for _, p := range s.Properties {
		c.Properties = append(c.Properties, b.property(s, p))
	}
	return c
}

func (b *Builder) property(owner *model.Schema, p model.Property) definition.Property {
	required := owner.IsRequired(p.Name)

	typ := resolver.Resolve(p.Schema, false)
	if !required {
		// An optional property can always be absent.
		typ = typ.AsNullable()
	}

	prop := definition.Property{
		Name:     naming.ToIdentifier(p.Name),
		JSONName: p.Name,
		Type:     typ,
		Required: required,
	}
	if p.Schema == nil {
		return prop
	}

	prop.DefaultValue = literal(p.Schema.Default)
	prop.Documentation = b.doc(p.Schema.Description)
	prop.Deprecated = p.Schema.Deprecated
	if b.cfg.GenerateValidationAttributes {
		prop.Constraints = constraints(p.Schema)
	}
	return prop
}

func constraints(s *model.Schema) []definition.Constraint {
	var out []definition.Constraint
	if s.MinLength != nil {
		out = append(out, definition.Constraint{Kind: definition.MinLength, Value: *s.MinLength})
	}
	if s.MaxLength != nil {
		out = append(out, definition.Constraint{Kind: definition.MaxLength, Value: *s.MaxLength})
	}
	if s.Minimum != nil {
		out = append(out, definition.Constraint{Kind: definition.Minimum, Value: *s.Minimum})
	}
	if s.Maximum != nil {
		out = append(out, definition.Constraint{Kind: definition.Maximum, Value: *s.Maximum})
	}
	if s.Pattern != "" {
		out = append(out, definition.Constraint{Kind: definition.Pattern, Value: s.Pattern})
	}
	return out
}

func (b *Builder) doc(text string) string {
	if !b.cfg.GenerateXMLDocumentation {
		return ""
	}
	return text
}

// literal renders a default value as text: strings verbatim, everything else as JSON.
func literal(v any) *string {
	if v == nil {
		return nil
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	default:
		out, err := json.Marshal(val)
		if err != nil {
			s = fmt.Sprint(val)
		} else {
			s = string(out)
		}
	}
	return &s
}
