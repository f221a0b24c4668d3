// Package definition holds the language-agnostic code model handed to emitters.
// Values are built once per document and never mutated afterwards.
package definition

import "github.com/kolah/apimodel/internal/resolver"

type Model struct {
	Source      string       `json:"source" yaml:"source"`
	Title       string       `json:"title,omitempty" yaml:"title,omitempty"`
	Version     string       `json:"version,omitempty" yaml:"version,omitempty"`
	Options     Options      `json:"options" yaml:"options"`
	Contracts   []Contract   `json:"contracts" yaml:"contracts"`
	Controllers []Controller `json:"controllers" yaml:"controllers"`
}

// Options are rendering hints passed through to emitters unchanged.
type Options struct {
	UseRecords                   bool   `json:"useRecords" yaml:"useRecords"`
	BaseNamespace                string `json:"baseNamespace" yaml:"baseNamespace"`
	ContractsNamespace           string `json:"contractsNamespace" yaml:"contractsNamespace"`
	ControllersNamespace         string `json:"controllersNamespace" yaml:"controllersNamespace"`
	UseAsyncControllers          bool   `json:"useAsyncControllers" yaml:"useAsyncControllers"`
	AddAPIControllerAttribute    bool   `json:"addApiControllerAttribute" yaml:"addApiControllerAttribute"`
	ControllerBaseClass          string `json:"controllerBaseClass" yaml:"controllerBaseClass"`
	GenerateValidationAttributes bool   `json:"generateValidationAttributes" yaml:"generateValidationAttributes"`
	GenerateXMLDocumentation     bool   `json:"generateXmlDocumentation" yaml:"generateXmlDocumentation"`
}

type Contract struct {
	Name          string     `json:"name" yaml:"name"`
	Documentation string     `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Deprecated    bool       `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Properties    []Property `json:"properties" yaml:"properties"`
}

// Property is one declared property of a contract. Required and Type.Nullable
// are independent: a required property may still hold null.
type Property struct {
	Name          string        `json:"name" yaml:"name"`
	JSONName      string        `json:"jsonName" yaml:"jsonName"`
	Type          resolver.Type `json:"type" yaml:"type"`
	Required      bool          `json:"required" yaml:"required"`
	DefaultValue  *string       `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Constraints   []Constraint  `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Documentation string        `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Deprecated    bool          `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

type ConstraintKind string

const (
	MinLength ConstraintKind = "minLength"
	MaxLength ConstraintKind = "maxLength"
	Minimum   ConstraintKind = "minimum"
	Maximum   ConstraintKind = "maximum"
	Pattern   ConstraintKind = "pattern"
)

// Constraint is an opaque validation bound. Value is an int64 for lengths, a
// float64 for ranges and a string for patterns.
type Constraint struct {
	Kind  ConstraintKind `json:"kind" yaml:"kind"`
	Value any            `json:"value" yaml:"value"`
}

type Controller struct {
	Name          string   `json:"name" yaml:"name"`
	Route         string   `json:"route" yaml:"route"`
	Documentation string   `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Methods       []Method `json:"methods" yaml:"methods"`
}

type Method struct {
	Name          string        `json:"name" yaml:"name"`
	OperationID   string        `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	HTTPMethod    string        `json:"httpMethod" yaml:"httpMethod"`
	Route         string        `json:"route" yaml:"route"`
	Parameters    []Parameter   `json:"parameters" yaml:"parameters"`
	ReturnType    resolver.Type `json:"returnType" yaml:"returnType"`
	Documentation string        `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Deprecated    bool          `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

type ParameterSource string

const (
	SourceDefault ParameterSource = "default"
	SourcePath    ParameterSource = "path"
	SourceQuery   ParameterSource = "query"
	SourceHeader  ParameterSource = "header"
	SourceBody    ParameterSource = "body"
)

type Parameter struct {
	Name          string          `json:"name" yaml:"name"`
	Identifier    string          `json:"identifier" yaml:"identifier"`
	Type          resolver.Type   `json:"type" yaml:"type"`
	Source        ParameterSource `json:"source" yaml:"source"`
	Required      bool            `json:"required" yaml:"required"`
	DefaultValue  *string         `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Documentation string          `json:"documentation,omitempty" yaml:"documentation,omitempty"`
}

// ContractByName returns the contract with the given name.
func (m *Model) ContractByName(name string) (*Contract, bool) {
	for i := range m.Contracts {
		if m.Contracts[i].Name == name {
			return &m.Contracts[i], true
		}
	}
	return nil, false
}

// ControllerByName returns the controller with the given name.
func (m *Model) ControllerByName(name string) (*Controller, bool) {
	for i := range m.Controllers {
		if m.Controllers[i].Name == name {
			return &m.Controllers[i], true
		}
	}
	return nil, false
}

// PropertyByJSONName returns the property serialized under name.
func (c *Contract) PropertyByJSONName(name string) (*Property, bool) {
	for i := range c.Properties {
		if c.Properties[i].JSONName == name {
			return &c.Properties[i], true
		}
	}
	return nil, false
}
