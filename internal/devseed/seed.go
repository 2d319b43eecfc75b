// Package devseed loads JSON fixtures used to pre-populate the in-memory
// collection mock.
//
// A seed file maps collection names to arrays of raw documents:
//
//	{"userdata": [{"_id": "a1", "bixbyUserId": "u1", "userData": "{\"name\":\"Ada\"}"}]}
package devseed

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// Documents maps a collection name to the raw documents it starts with.
type Documents map[string][]map[string]any

// LoadSeed reads and decodes a seed file.
func LoadSeed(path string) (Documents, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("devseed: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "devseed: read %s", path)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed content. Empty input yields an empty set.
func ParseSeed(data []byte) (Documents, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Documents{}, nil
	}
	var docs Documents
	if err := json.Unmarshal(trimmed, &docs); err != nil {
		return nil, errors.Wrap(err, "devseed: decode seed")
	}
	for name := range docs {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("devseed: seed collection name is empty")
		}
	}
	if docs == nil {
		docs = Documents{}
	}
	return docs, nil
}
