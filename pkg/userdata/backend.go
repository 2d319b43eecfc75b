package userdata

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"

	"github.com/Ratio1/userdb_sdk_go/internal/httpx"
	"github.com/Ratio1/userdb_sdk_go/pkg/properties"
)

// Backend performs the four remote calls. Bodies are raw JSON documents in
// the remote's wire format; the Store owns encoding and decoding.
type Backend interface {
	// Query returns the JSON array of documents matching filter, a JSON
	// object of the form {"<userIdField>":"<hostUserId>"}.
	Query(ctx context.Context, cfg properties.Settings, filter string) ([]byte, error)
	// Create stores a new document and returns it as stored.
	Create(ctx context.Context, cfg properties.Settings, body []byte) ([]byte, error)
	// Update replaces the document id and returns it as stored.
	Update(ctx context.Context, cfg properties.Settings, id string, body []byte) ([]byte, error)
	// Remove deletes the document id.
	Remove(ctx context.Context, cfg properties.Settings, id string) error
}

type httpBackend struct {
	client *httpx.Client
}

func (b *httpBackend) Query(ctx context.Context, cfg properties.Settings, filter string) ([]byte, error) {
	return b.do(ctx, &httpx.Request{
		Method: http.MethodGet,
		URL:    cfg.CollectionURL(),
		Query:  url.Values{"apikey": {cfg.APIKey}, "q": {filter}},
	})
}

func (b *httpBackend) Create(ctx context.Context, cfg properties.Settings, body []byte) ([]byte, error) {
	return b.do(ctx, &httpx.Request{
		Method: http.MethodPost,
		URL:    cfg.CollectionURL(),
		Query:  url.Values{"apikey": {cfg.APIKey}},
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   bytes.NewReader(body),
	})
}

func (b *httpBackend) Update(ctx context.Context, cfg properties.Settings, id string, body []byte) ([]byte, error) {
	return b.do(ctx, &httpx.Request{
		Method: http.MethodPut,
		URL:    cfg.DocumentURL(id),
		Query:  url.Values{"apikey": {cfg.APIKey}},
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   bytes.NewReader(body),
	})
}

func (b *httpBackend) Remove(ctx context.Context, cfg properties.Settings, id string) error {
	_, err := b.do(ctx, &httpx.Request{
		Method: http.MethodDelete,
		URL:    cfg.DocumentURL(id),
		Query:  url.Values{"apikey": {cfg.APIKey}},
	})
	return err
}

func (b *httpBackend) do(ctx context.Context, req *httpx.Request) ([]byte, error) {
	if b == nil || b.client == nil {
		return nil, errors.New("userdata: http backend not configured")
	}
	resp, err := b.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return httpx.ReadAllAndClose(resp.Body)
}
