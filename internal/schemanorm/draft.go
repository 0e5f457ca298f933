package schemanorm

import "github.com/santhosh-tekuri/jsonschema/v6"

// knownDrafts maps a declared "$schema" URI to the jsonschema draft it
// names, used only to decide whether a document's meta-keywords are
// draft-specific before Normalize strips them — the schema is never
// actually validated against its own meta-schema here (that would require
// network-fetchable $ref targets this gateway never has).
var knownDrafts = map[string]*jsonschema.Draft{
	"http://json-schema.org/draft-07/schema#":     jsonschema.Draft7,
	"https://json-schema.org/draft/2019-09/schema": jsonschema.Draft2019,
	"https://json-schema.org/draft/2020-12/schema": jsonschema.Draft2020,
}

// DetectDraft reports the JSON-Schema draft a tool's parameters document
// declares via "$schema", or nil if absent/unrecognized. Tool schemas
// arriving from OpenAI-style clients are frequently draft-07 or 2020-12;
// this only informs logging/diagnostics since Normalize strips "$schema"
// unconditionally regardless of draft.
func DetectDraft(schema map[string]interface{}) *jsonschema.Draft {
	uri, _ := schema["$schema"].(string)
	if uri == "" {
		return nil
	}
	return knownDrafts[uri]
}
