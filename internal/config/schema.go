package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns a JSON Schema for the config file, for editors that
// validate TOML/YAML against one.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		ExpandedStruct:            true,
		FieldNameTag:              "toml",
		AllowAdditionalProperties: true,
	}
	sch := r.Reflect(&Config{})
	sch.Title = "shellm configuration"
	sch.Description = "Settings read from config.toml (or config.yaml) in the shellm config directory."
	return sch
}

// MarshalSchema indents the schema to JSON bytes.
func MarshalSchema(sch *jsonschema.Schema) ([]byte, error) {
	return json.MarshalIndent(sch, "", "  ")
}
