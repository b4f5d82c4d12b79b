package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/scrypster/promptcraft/pkg/types"
)

//go:embed template.schema.json
var templateSchemaJSON []byte

var templateSchema = mustCompileSchema("template.schema.json", templateSchemaJSON)

func mustCompileSchema(name string, raw []byte) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("export: load %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("export: compile %s: %v", name, err))
	}
	return schema
}

// ImportTemplate parses a template document. The document must carry id, name,
// config, vsEnhancement and createdAt. Any structural problem yields a nil
// template and an error wrapping ErrInvalidTemplate, never a partial template.
func ImportTemplate(data []byte) (*types.PromptTemplate, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrInvalidTemplate, err)
	}
	if err := templateSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	var tmpl types.PromptTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	return &tmpl, nil
}
