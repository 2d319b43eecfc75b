package userdata

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/Ratio1/userdb_sdk_go/internal/httpx"
	"github.com/Ratio1/userdb_sdk_go/pkg/properties"
	"github.com/Ratio1/userdb_sdk_go/pkg/userdata/mock"
)

// MockBackend serves the Backend contract from an in-memory mock database.
func MockBackend(m *mock.Mock) Backend {
	if m == nil {
		m = mock.New()
	}
	return &mockBackend{store: m}
}

type mockBackend struct {
	store *mock.Mock
}

func (b *mockBackend) Query(ctx context.Context, cfg properties.Settings, filter string) ([]byte, error) {
	var f map[string]any
	if err := json.Unmarshal([]byte(filter), &f); err != nil {
		return nil, errors.Wrap(err, "mock userdb: decode filter")
	}
	docs, err := b.store.Find(ctx, cfg.Collection, f)
	if err != nil {
		return nil, err
	}
	return httpx.MarshalJSON(docs)
}

func (b *mockBackend) Create(ctx context.Context, cfg properties.Settings, body []byte) ([]byte, error) {
	doc, err := decodeDoc(body)
	if err != nil {
		return nil, err
	}
	stored, err := b.store.Insert(ctx, cfg.Collection, doc)
	if err != nil {
		return nil, err
	}
	return httpx.MarshalJSON(stored)
}

func (b *mockBackend) Update(ctx context.Context, cfg properties.Settings, id string, body []byte) ([]byte, error) {
	doc, err := decodeDoc(body)
	if err != nil {
		return nil, err
	}
	stored, err := b.store.Replace(ctx, cfg.Collection, id, doc)
	if err != nil {
		return nil, err
	}
	return httpx.MarshalJSON(stored)
}

func (b *mockBackend) Remove(ctx context.Context, cfg properties.Settings, id string) error {
	return b.store.Remove(ctx, cfg.Collection, id)
}

func decodeDoc(body []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "mock userdb: decode document")
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}
