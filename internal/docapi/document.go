// Package docapi encodes and decodes the documents exchanged with the remote
// collection. A stored document carries the database-assigned "_id", the host
// user id under a configurable field name and the property bag under another
// configurable field name. The property bag is stored as a JSON string holding
// a JSON object, so it is decoded twice on the way in and encoded twice on the
// way out.
package docapi

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/Ratio1/userdb_sdk_go/internal/httpx"
)

// IDField is the name of the database-assigned primary key.
const IDField = "_id"

var (
	// ErrNotCollection is returned when a query response is not a JSON array.
	ErrNotCollection = errors.New("docapi: response is not a document array")
	// ErrNotDocument is returned when a response is not a JSON object.
	ErrNotDocument = errors.New("docapi: response is not a document")
	// ErrMalformedData is returned when the data field cannot be decoded into an object.
	ErrMalformedData = errors.New("docapi: malformed data field")
)

// Fields names the configurable document fields.
type Fields struct {
	UserID string
	Data   string
}

// Document is a decoded remote document.
type Document struct {
	ID     string
	UserID string
	Data   map[string]any
}

// EncodeBody builds the create/update payload
// {<userIdField>: hostUserID, <dataField>: "<json of props>"}.
func EncodeBody(fields Fields, hostUserID string, props map[string]any) ([]byte, error) {
	if props == nil {
		props = map[string]any{}
	}
	inner, err := httpx.MarshalJSON(props)
	if err != nil {
		return nil, errors.Wrap(err, "docapi: encode data field")
	}
	body, err := httpx.MarshalJSON(map[string]any{
		fields.UserID: hostUserID,
		fields.Data:   string(inner),
	})
	if err != nil {
		return nil, errors.Wrap(err, "docapi: encode document")
	}
	return body, nil
}

// EncodeFilter builds the q parameter {"<userIdField>":"<hostUserID>"}.
func EncodeFilter(fields Fields, hostUserID string) (string, error) {
	data, err := httpx.MarshalJSON(map[string]string{fields.UserID: hostUserID})
	if err != nil {
		return "", errors.Wrap(err, "docapi: encode filter")
	}
	return string(data), nil
}

// DecodeCollection splits a query response into its raw documents without
// decoding them.
func DecodeCollection(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotCollection
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "docapi: decode documents"), ErrNotCollection)
	}
	return raw, nil
}

// DecodeDocument parses a single document object. Create and update
// responses share this flat shape.
func DecodeDocument(body []byte, fields Fields) (*Document, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotDocument
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "docapi: decode document"), ErrNotDocument)
	}

	doc := &Document{
		ID:     scalarString(raw[IDField]),
		UserID: scalarString(raw[fields.UserID]),
	}
	data, err := DecodeData(raw[fields.Data])
	if err != nil {
		return nil, err
	}
	doc.Data = data
	return doc, nil
}

// DecodeData decodes the data field value. The remote stores it as a JSON
// string, possibly quoted more than once; an already-decoded object is also
// accepted. A missing or null value yields an empty map.
func DecodeData(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}

	payload := []byte(trimmed)
	var asString string
	if err := json.Unmarshal(trimmed, &asString); err == nil {
		decoded := asString
		for i := 0; i < 4; i++ {
			unquoted, err := strconv.Unquote(decoded)
			if err != nil {
				break
			}
			decoded = unquoted
		}
		if decoded == "" {
			return map[string]any{}, nil
		}
		payload = []byte(decoded)
	}

	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "docapi: decode data field"), ErrMalformedData)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func scalarString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	// Numeric ids are kept in their literal form.
	return string(trimmed)
}
