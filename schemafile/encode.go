package schemafile

import (
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// EncodeJSON renders a finished tree as JSON with sorted mapping keys.
func EncodeJSON(tree any) ([]byte, error) { return json.Marshal(tree) }

// EncodeJSONIndent renders a finished tree as indented JSON.
func EncodeJSONIndent(tree any, indent string) ([]byte, error) {
	return json.MarshalIndent(tree, "", indent)
}

// EncodeYAML renders a finished tree as YAML.
func EncodeYAML(tree any) ([]byte, error) { return yaml.Marshal(tree) }
