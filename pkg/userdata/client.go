package userdata

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/Ratio1/userdb_sdk_go/internal/docapi"
	"github.com/Ratio1/userdb_sdk_go/internal/httpx"
	"github.com/Ratio1/userdb_sdk_go/pkg/properties"
)

// Store maps UserData values to documents in the remote collection.
// Settings are resolved from the provider on every call; the store keeps no
// other state between calls.
type Store struct {
	props   properties.Provider
	backend Backend
	log     *zap.Logger

	httpOpts []httpx.Option
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report collapsed failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHTTPClient overrides the *http.Client used by the HTTP backend.
func WithHTTPClient(h *http.Client) Option {
	return func(s *Store) {
		s.httpOpts = append(s.httpOpts, httpx.WithHTTPClient(h))
	}
}

// WithHeaders adds default headers to every request of the HTTP backend.
func WithHeaders(h http.Header) Option {
	return func(s *Store) {
		s.httpOpts = append(s.httpOpts, httpx.WithHeaders(h))
	}
}

// WithTimeout bounds each round trip of the HTTP backend.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.httpOpts = append(s.httpOpts, httpx.WithTimeout(d))
	}
}

// WithBackend replaces the transport (e.g. with MockBackend).
func WithBackend(b Backend) Option {
	return func(s *Store) {
		if b != nil {
			s.backend = b
		}
	}
}

// New constructs a Store reading its settings from p. Without WithBackend the
// store talks HTTP to the configured base URL.
func New(p properties.Provider, opts ...Option) *Store {
	s := &Store{
		props: p,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend == nil {
		s.backend = &httpBackend{client: httpx.NewClient(s.httpOpts...)}
	}
	return s
}

// NewWithBackend is shorthand for New(p, WithBackend(b), opts...).
func NewWithBackend(p properties.Provider, b Backend, opts ...Option) *Store {
	return New(p, append([]Option{WithBackend(b)}, opts...)...)
}

// Fetch returns the UserData stored for hostUserID. It returns nil when no
// document, more than one document, or no usable response is found. Only
// configuration problems, malformed stored data and a done context are
// reported as errors.
func (s *Store) Fetch(ctx context.Context, hostUserID string) (*UserData, error) {
	cfg, err := s.settings()
	if err != nil {
		return nil, err
	}
	fields := fieldsOf(cfg)
	filter, err := docapi.EncodeFilter(fields, hostUserID)
	if err != nil {
		return nil, err
	}

	body, err := s.backend.Query(ctx, cfg, filter)
	if err != nil {
		return nil, s.collapse(ctx, "fetch", cfg, err)
	}
	raw, err := docapi.DecodeCollection(body)
	if err != nil {
		s.log.Warn("userdata: unexpected fetch response", zap.String("collection", cfg.Collection), zap.Error(err))
		return nil, nil
	}
	// Only a unique match is decoded.
	if len(raw) != 1 {
		s.log.Debug("userdata: no unique document",
			zap.String("collection", cfg.Collection),
			zap.Int("matches", len(raw)))
		return nil, nil
	}
	doc, err := docapi.DecodeDocument(raw[0], fields)
	if err != nil {
		if errors.Is(err, docapi.ErrNotDocument) {
			s.log.Warn("userdata: unexpected fetch response", zap.String("collection", cfg.Collection), zap.Error(err))
			return nil, nil
		}
		return nil, errors.Wrap(err, "userdata: fetch")
	}
	return fromDocument(*doc), nil
}

// Save persists data for hostUserID and returns the stored value with its $id
// set. A value that already carries $id is updated (PUT), any other value is
// created (POST). $id and $type never reach the payload and data itself is
// not modified. Save returns nil when the remote call fails.
func (s *Store) Save(ctx context.Context, hostUserID string, data *UserData) (*UserData, error) {
	cfg, err := s.settings()
	if err != nil {
		return nil, err
	}
	fields := fieldsOf(cfg)
	payload := data.Stripped()
	body, err := docapi.EncodeBody(fields, hostUserID, payload.Properties)
	if err != nil {
		return nil, err
	}

	op := "create"
	var resp []byte
	if data.Persisted() {
		op = "update"
		resp, err = s.backend.Update(ctx, cfg, data.ID, body)
	} else {
		resp, err = s.backend.Create(ctx, cfg, body)
	}
	if err != nil {
		return nil, s.collapse(ctx, op, cfg, err)
	}

	doc, err := docapi.DecodeDocument(resp, fields)
	if err != nil {
		if errors.Is(err, docapi.ErrNotDocument) {
			s.log.Warn("userdata: unexpected "+op+" response", zap.String("collection", cfg.Collection), zap.Error(err))
			return nil, nil
		}
		return nil, errors.Wrapf(err, "userdata: %s", op)
	}
	out := fromDocument(*doc)
	if out.ID == "" {
		if !data.Persisted() {
			s.log.Warn("userdata: create response without "+docapi.IDField, zap.String("collection", cfg.Collection))
			return nil, nil
		}
		out.ID = data.ID
	}
	return out, nil
}

// Delete removes the document behind data. It returns NotPersisted without
// any request when data has no $id, Deleted when the remote acknowledges the
// removal and Failed otherwise.
func (s *Store) Delete(ctx context.Context, data *UserData) (DeleteOutcome, error) {
	if !data.Persisted() {
		return NotPersisted, nil
	}
	cfg, err := s.settings()
	if err != nil {
		return Failed, err
	}
	if err := s.backend.Remove(ctx, cfg, data.ID); err != nil {
		return Failed, s.collapse(ctx, "delete", cfg, err)
	}
	return Deleted, nil
}

func (s *Store) settings() (properties.Settings, error) {
	if s == nil || s.backend == nil {
		return properties.Settings{}, errors.New("userdata: store is nil")
	}
	cfg, err := properties.Resolve(s.props)
	if err != nil {
		return properties.Settings{}, errors.Wrap(err, "userdata: resolve settings")
	}
	return cfg, nil
}

// collapse logs a transport or remote failure and hides it from the caller,
// unless the caller's context ended.
func (s *Store) collapse(ctx context.Context, op string, cfg properties.Settings, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("collection", cfg.Collection),
		zap.Error(err),
	}
	var httpErr *httpx.HTTPError
	if errors.As(err, &httpErr) {
		fields = append(fields, zap.Int("status", httpErr.StatusCode))
		if httpErr.NotFound() {
			s.log.Debug("userdata: remote document not found", fields...)
			return nil
		}
	}
	s.log.Warn("userdata: remote call failed", fields...)
	return nil
}

func fieldsOf(cfg properties.Settings) docapi.Fields {
	return docapi.Fields{UserID: cfg.UserIDField, Data: cfg.UserDataField}
}

func fromDocument(doc docapi.Document) *UserData {
	u := FromMap(doc.Data)
	// Reserved keys inside stored data never override the document metadata.
	u.ID = doc.ID
	u.Type = ""
	return u
}
