package api

import (
	"net/http"
	"sync"
)

// RegisterDocsRoutes mounts the interactive documentation and the raw contract.
//
//	GET /                   redirect to /docs
//	GET /docs               Swagger UI
//	GET /docs/openapi       contract as JSON
//	GET /docs/openapi.yaml  contract as embedded
func RegisterDocsRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs", http.StatusMovedPermanently)
	})
	mux.HandleFunc("GET /docs", serveSwaggerUI)
	mux.HandleFunc("GET /docs/openapi", serveContractJSON)
	mux.HandleFunc("GET /docs/openapi.yaml", serveContractYAML)
}

var contractJSON = sync.OnceValues(func() ([]byte, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	return doc.MarshalJSON()
})

func serveContractJSON(w http.ResponseWriter, _ *http.Request) {
	body, err := contractJSON()
	if err != nil {
		http.Error(w, "openapi document unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body) //nolint:errcheck // client went away
}

func serveContractYAML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openapiSpec) //nolint:errcheck // client went away
}

func serveSwaggerUI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(swaggerPage)) //nolint:errcheck // client went away
}

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Retail Ledger API</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
<div id="ledger-docs"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
window.addEventListener("load", function () {
  window.ui = SwaggerUIBundle({
    url: "/docs/openapi",
    dom_id: "#ledger-docs",
    deepLinking: true,
    persistAuthorization: true
  });
});
</script>
</body>
</html>`
