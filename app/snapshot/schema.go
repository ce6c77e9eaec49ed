package snapshot

import (
	"github.com/invopop/jsonschema"
)

// Schema returns JSON schema of the import document
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&Document{})
	schema.Title = "nsnt snapshot"
	schema.Description = "Schema for nsnt import snapshot file"
	return schema
}
