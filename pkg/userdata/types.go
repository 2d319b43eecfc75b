package userdata

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Reserved host-side keys. They are metadata attached by the store and never
// persisted remotely.
const (
	ReservedID   = "$id"
	ReservedType = "$type"
)

// UserData is the host-side user profile: a property bag plus the remote
// document id ($id) and the host concept type ($type).
//
// The JSON form is the flat host structure:
//
//	{"$id": "<dbUserId>", "$type": "<conceptType>", "<property>": <value>, ...}
type UserData struct {
	ID         string
	Type       string
	Properties map[string]any
}

// NewUserData builds a transient (never persisted) UserData from props.
func NewUserData(props map[string]any) *UserData {
	return FromMap(props)
}

// FromMap builds a UserData from a flat host map, lifting $id and $type out
// of the property bag. The input map is not modified.
func FromMap(m map[string]any) *UserData {
	u := &UserData{Properties: make(map[string]any, len(m))}
	for k, v := range m {
		switch k {
		case ReservedID:
			u.ID = stringValue(v)
		case ReservedType:
			u.Type = stringValue(v)
		default:
			u.Properties[k] = v
		}
	}
	return u
}

// ParseUserData decodes the flat host JSON form.
func ParseUserData(data []byte) (*UserData, error) {
	u := &UserData{}
	if err := json.Unmarshal(data, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Persisted reports whether the value carries a remote document id.
func (u *UserData) Persisted() bool {
	return u != nil && u.ID != ""
}

// Get returns a property value.
func (u *UserData) Get(key string) (any, bool) {
	if u == nil {
		return nil, false
	}
	v, ok := u.Properties[key]
	return v, ok
}

// Stripped returns a copy without $id and $type. The receiver is left untouched.
func (u *UserData) Stripped() *UserData {
	out := &UserData{Properties: map[string]any{}}
	if u == nil {
		return out
	}
	for k, v := range u.Properties {
		if k == ReservedID || k == ReservedType {
			continue
		}
		out.Properties[k] = v
	}
	return out
}

// Map returns the flat host form.
func (u *UserData) Map() map[string]any {
	out := make(map[string]any)
	if u == nil {
		return out
	}
	for k, v := range u.Properties {
		out[k] = v
	}
	if u.ID != "" {
		out[ReservedID] = u.ID
	}
	if u.Type != "" {
		out[ReservedType] = u.Type
	}
	return out
}

// MarshalJSON implements json.Marshaler using the flat host form.
func (u UserData) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Map())
}

// UnmarshalJSON implements json.Unmarshaler for the flat host form.
func (u *UserData) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*u = UserData{Properties: map[string]any{}}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return errors.Wrap(err, "userdata: decode user data")
	}
	*u = *FromMap(m)
	return nil
}

// DeleteOutcome is the three-valued result of Store.Delete.
type DeleteOutcome int

const (
	// NotPersisted means the value had no $id; no request was made.
	NotPersisted DeleteOutcome = iota
	// Deleted means the remote acknowledged the delete.
	Deleted
	// Failed means the delete request did not succeed.
	Failed
)

func (o DeleteOutcome) String() string {
	switch o {
	case NotPersisted:
		return "not-persisted"
	case Deleted:
		return "deleted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
