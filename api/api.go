// Package api embeds the OpenAPI description of the JSON API.
package api

import _ "embed"

// OpenAPI is the OpenAPI 3 document served at /openapi.yaml and used to
// validate JSON API requests.
//
//go:embed openapi.yaml
var OpenAPI []byte
