package httpadapter

import (
	_ "embed"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openAPISource []byte

var loadOpenAPIOnce = sync.OnceValues(func() ([]byte, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISource)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, err
	}
	return doc.MarshalJSON()
})

func (rt *Router) openAPIDocument(w http.ResponseWriter, _ *http.Request) {
	payload, err := loadOpenAPIOnce()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "openapi document is invalid"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
