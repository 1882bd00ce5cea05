// Package api holds the Ledger API contract: the embedded OpenAPI document,
// request and response bodies, and the documentation routes.
package api

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiSpec []byte

var (
	swaggerOnce sync.Once
	swaggerDoc  *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the parsed OpenAPI document. It is loaded once and shared,
// so callers must not modify it.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()
		swaggerDoc, swaggerErr = loader.LoadFromData(openapiSpec)
		if swaggerErr != nil {
			swaggerErr = fmt.Errorf("error loading OpenAPI document: %w", swaggerErr)
		}
	})
	return swaggerDoc, swaggerErr
}
