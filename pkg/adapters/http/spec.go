package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

//go:embed openapi.yaml
var openAPISpec []byte

// RawSpec returns the embedded OpenAPI document.
func RawSpec() []byte {
	return openAPISpec
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// maxBodySize bounds request bodies. Answers are far smaller.
const maxBodySize = 64 << 10

// errInvalidBody marks request bodies that are not valid JSON or do not
// match the documented schema.
type errInvalidBody struct {
	err error
}

func (e *errInvalidBody) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.err)
}

func (e *errInvalidBody) Unwrap() error {
	return e.err
}

// decodeBody reads the JSON body, checks it against the request schema of
// the matched route and decodes it into dst. An empty body is accepted as
// {} when the operation does not require one.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return &errInvalidBody{err}
	}

	body := s.requestBody(r)
	if len(data) == 0 {
		if body != nil && body.Required {
			return &errInvalidBody{fmt.Errorf("body is required")}
		}
		data = []byte("{}")
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return &errInvalidBody{err}
	}
	if body != nil {
		if mt := body.Content.Get("application/json"); mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			if err := mt.Schema.Value.VisitJSON(raw); err != nil {
				return &errInvalidBody{err}
			}
		}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &errInvalidBody{err}
	}
	return nil
}

// requestBody finds the documented request body of the matched route.
func (s *Server) requestBody(r *http.Request) *openapi3.RequestBody {
	rctx := chi.RouteContext(r.Context())
	if s.doc == nil || rctx == nil {
		return nil
	}
	item := s.doc.Paths.Find(rctx.RoutePattern())
	if item == nil {
		return nil
	}
	op := item.GetOperation(r.Method)
	if op == nil || op.RequestBody == nil {
		return nil
	}
	return op.RequestBody.Value
}
