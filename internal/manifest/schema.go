package manifest

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaJSON is the wire contract for manifest.json. Validation runs before
// unmarshalling so a structurally broken manifest is rejected as corrupt
// instead of silently decoding into zero values.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["source_file", "source_pages", "extraction_date", "narrative", "tlfs"],
  "properties": {
    "source_file": {"type": "string", "minLength": 1},
    "source_pages": {"type": "integer", "minimum": 1},
    "extraction_date": {
      "type": "string",
      "pattern": "^\\d{4}-\\d{2}-\\d{2}T\\d{2}:\\d{2}:\\d{2}Z$"
    },
    "narrative": {
      "type": "object",
      "required": ["file", "pages_in_source", "page_count"],
      "properties": {
        "file": {"type": "string", "minLength": 1},
        "pages_in_source": {"$ref": "#/$defs/pageRange"},
        "page_count": {"type": "integer", "minimum": 1}
      }
    },
    "tlfs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type", "title", "file", "pages_in_source", "page_count", "population"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {"enum": ["table", "figure"]},
          "title": {"type": "string"},
          "file": {"type": "string", "minLength": 1},
          "pages_in_source": {"$ref": "#/$defs/pageRange"},
          "page_count": {"type": "integer", "minimum": 1},
          "population": {"type": "string"},
          "source_program": {"type": "string"}
        }
      }
    }
  },
  "$defs": {
    "pageRange": {
      "type": "array",
      "items": {"type": "integer", "minimum": 1},
      "minItems": 2,
      "maxItems": 2
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("manifest.json", schemaJSON)
	})
	return schema, schemaErr
}

// validateSchema checks raw manifest bytes against the manifest schema.
func validateSchema(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile manifest schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema violation: %w", err)
	}
	return nil
}
