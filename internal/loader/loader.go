package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"go.yaml.in/yaml/v4"
	k8syaml "sigs.k8s.io/yaml"

	"github.com/kolah/apimodel/internal/model"
)

var (
	ErrRead    = errors.New("read")
	ErrParse   = errors.New("parse")
	ErrVersion = errors.New("unsupported version")
	ErrConvert = errors.New("convert")
)

// Error is returned for every loading failure. Kind is one of the Err*
// sentinels and matches with errors.Is, as does the wrapped cause.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%v %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

type Result struct {
	Document *libopenapi.DocumentModel[v3.Document]
	Version  string
	Warnings []string
}

// Open loads the document at path and transforms it into a model.Spec.
// The returned warnings are non-fatal loader notes.
func Open(path string) (*model.Spec, []string, error) {
	result, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	spec, err := Transform(result)
	if err != nil {
		return nil, result.Warnings, &Error{Kind: ErrParse, Path: path, Err: err}
	}
	return spec, result.Warnings, nil
}

func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: ErrRead, Path: path, Err: err}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &Error{Kind: ErrRead, Path: path, Err: fmt.Errorf("resolving absolute path: %w", err)}
	}

	config := &datamodel.DocumentConfiguration{
		BasePath:            filepath.Dir(absPath),
		AllowFileReferences: true,
	}

	result, err := loadWithConfig(data, config)
	if err != nil {
		var lerr *Error
		if errors.As(err, &lerr) && lerr.Path == "" {
			lerr.Path = path
		}
		return nil, err
	}
	return result, nil
}

// Load parses an in-memory document without a base path for relative references.
func Load(data []byte) (*Result, error) {
	return loadWithConfig(data, nil)
}

type versionHeader struct {
	OpenAPI string `yaml:"openapi"`
	Swagger string `yaml:"swagger"`
}

func sniffVersion(data []byte) (versionHeader, error) {
	var header versionHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		return header, &Error{Kind: ErrParse, Err: err}
	}
	return header, nil
}

func loadWithConfig(data []byte, config *datamodel.DocumentConfiguration) (*Result, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &Error{Kind: ErrParse, Err: errors.New("document is empty")}
	}

	header, err := sniffVersion(data)
	if err != nil {
		return nil, err
	}

	var warnings []string
	switch {
	case strings.HasPrefix(header.Swagger, "2."):
		converted, err := convertSwagger2(data)
		if err != nil {
			return nil, &Error{Kind: ErrConvert, Err: err}
		}
		data = converted
		warnings = append(warnings, "Swagger "+header.Swagger+" document converted to OpenAPI 3")
	case strings.HasPrefix(header.OpenAPI, "3."):
	case header.OpenAPI == "" && header.Swagger == "":
		return nil, &Error{Kind: ErrVersion, Err: errors.New("missing 'openapi' or 'swagger' version field")}
	default:
		return nil, &Error{Kind: ErrVersion, Err: fmt.Errorf("%s%s (supported: swagger 2.x, openapi 3.x)", header.OpenAPI, header.Swagger)}
	}

	var doc libopenapi.Document
	if config != nil {
		doc, err = libopenapi.NewDocumentWithConfiguration(data, config)
	} else {
		doc, err = libopenapi.NewDocument(data)
	}
	if err != nil {
		return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("parsing OpenAPI document: %w", err)}
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, &Error{Kind: ErrVersion, Err: fmt.Errorf("%s (only 3.x supported after conversion)", version)}
	}

	docModel, err := doc.BuildV3Model()
	if docModel == nil {
		if err == nil {
			err = errors.New("no model produced")
		}
		return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("building OpenAPI model: %w", err)}
	}
	if err != nil {
		// A model with errors is still usable; unresolved parts degrade to untyped schemas.
		warnings = append(warnings, "building OpenAPI model: "+err.Error())
	}

	if strings.HasPrefix(version, "3.0") {
		warnings = append(warnings, "OpenAPI 3.0.x detected; nullable is mapped to the null type")
	}

	return &Result{
		Document: docModel,
		Version:  version,
		Warnings: warnings,
	}, nil
}

// convertSwagger2 converts a Swagger 2.0 document (YAML or JSON) into an
// OpenAPI 3 JSON document.
func convertSwagger2(data []byte) ([]byte, error) {
	var doc2 openapi2.T
	if err := k8syaml.Unmarshal(data, &doc2); err != nil {
		return nil, fmt.Errorf("decoding swagger document: %w", err)
	}

	doc3, err := openapi2conv.ToV3(&doc2)
	if err != nil {
		return nil, fmt.Errorf("converting to OpenAPI 3: %w", err)
	}

	out, err := json.Marshal(doc3)
	if err != nil {
		return nil, fmt.Errorf("encoding converted document: %w", err)
	}
	return out, nil
}
