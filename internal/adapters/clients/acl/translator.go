package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// maxResponseBody bounds how much of a success response is decoded.
const maxResponseBody = 8 << 20

// BaseAdapter holds the client and service name every remote adapter needs.
// Embed it in service-specific adapters.
type BaseAdapter struct {
	client  *clients.Client
	service string
}

// NewBaseAdapter wraps client. The service name comes from the client.
func NewBaseAdapter(client *clients.Client) BaseAdapter {
	return BaseAdapter{client: client, service: client.ServiceName()}
}

// ServiceName returns the remote's name.
func (a *BaseAdapter) ServiceName() string {
	return a.service
}

// Client returns the underlying HTTP client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// Get performs a GET and returns the body of a successful response.
// The caller closes the body. Failures come back as domain errors.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)

	return a.check(resp, err, operation)
}

// PostJSON POSTs body as JSON and returns the body of a successful response.
func (a *BaseAdapter) PostJSON(ctx context.Context, path string, body any, operation string) (io.ReadCloser, error) {
	resp, err := a.client.PostJSON(ctx, path, body)

	return a.check(resp, err, operation)
}

func (a *BaseAdapter) check(resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.service, operation)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.service, operation)
	}

	return resp.Body, nil
}

// DecodeResponse decodes a JSON body into T and closes it. A payload the
// remote got wrong is its failure, not the caller's, so it is reported as
// domain.ErrUnavailable with the decoder error as cause.
func DecodeResponse[T any](body io.ReadCloser, service, what string) (T, error) {
	var result T

	if body == nil {
		return result, fmt.Errorf("%s %s: response body is nil", service, what)
	}
	defer func() { _ = body.Close() }()

	dec := json.NewDecoder(io.LimitReader(body, maxResponseBody))
	dec.UseNumber()

	if err := dec.Decode(&result); err != nil {
		return result, domain.WrapUnavailable(service, "malformed "+what+" response", err)
	}

	return result, nil
}

// Translator converts one external record. ok is false when the record
// should be dropped rather than failing the batch.
type Translator[External, Domain any] func(ext *External) (d Domain, ok bool)

// TranslateSlice applies translate to every item, keeping the ones it accepts.
// The result is never nil.
func TranslateSlice[E, D any](items []E, translate Translator[E, D]) []D {
	out := make([]D, 0, len(items))

	for i := range items {
		if d, ok := translate(&items[i]); ok {
			out = append(out, d)
		}
	}

	return out
}
