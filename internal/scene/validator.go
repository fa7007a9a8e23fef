package scene

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

// validator checks decoded documents against the embedded JSON Schema.
type validator struct {
	schemaLoader gojsonschema.JSONLoader
}

func newValidator() *validator {
	return &validator{schemaLoader: gojsonschema.NewBytesLoader(schemaJSON)}
}

// validate returns one problem per schema violation.
func (v *validator) validate(data map[string]interface{}) ([]string, error) {
	documentLoader := gojsonschema.NewGoLoader(data)
	result, err := gojsonschema.Validate(v.schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return problems, nil
}
