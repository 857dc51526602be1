package config

import (
	"github.com/invopop/jsonschema"
)

// Schema describes the configuration file format. Every property is optional since a file only
// overrides the defaults. Durations appear as integer nanoseconds; Load also accepts strings
// such as "500ms".
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  false,
	}
	return reflector.Reflect(&Config{})
}
