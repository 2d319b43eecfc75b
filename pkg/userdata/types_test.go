package userdata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMapLiftsReservedKeys(t *testing.T) {
	in := map[string]any{"$id": "db-1", "$type": "profile", "name": "Ada"}
	u := FromMap(in)

	assert.Equal(t, "db-1", u.ID)
	assert.Equal(t, "profile", u.Type)
	assert.Equal(t, map[string]any{"name": "Ada"}, u.Properties)
	assert.Len(t, in, 3, "input map must not be modified")
	assert.True(t, u.Persisted())
}

func TestFromMapNonStringID(t *testing.T) {
	u := FromMap(map[string]any{"$id": float64(12)})
	assert.Equal(t, "12", u.ID)
}

func TestStrippedIsACopy(t *testing.T) {
	u := &UserData{ID: "db-1", Type: "profile", Properties: map[string]any{"a": 1, "$id": "x"}}
	s := u.Stripped()

	assert.Empty(t, s.ID)
	assert.Empty(t, s.Type)
	assert.Equal(t, map[string]any{"a": 1}, s.Properties)

	s.Properties["b"] = 2
	assert.NotContains(t, u.Properties, "b")
	assert.Equal(t, "db-1", u.ID)

	var nilData *UserData
	assert.NotNil(t, nilData.Stripped().Properties)
	assert.False(t, nilData.Persisted())
}

func TestUserDataJSON(t *testing.T) {
	u, err := ParseUserData([]byte(`{"$id":"db-1","$type":"profile","name":"Ada","n":2}`))
	require.NoError(t, err)
	assert.Equal(t, "db-1", u.ID)
	assert.Equal(t, "profile", u.Type)

	v, ok := u.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", v)

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"$id":"db-1","$type":"profile","name":"Ada","n":2}`, string(data))

	transient := NewUserData(map[string]any{"name": "Ada"})
	data, err = json.Marshal(transient)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada"}`, string(data))

	_, err = ParseUserData([]byte(`[1]`))
	require.Error(t, err)

	empty, err := ParseUserData([]byte(`null`))
	require.NoError(t, err)
	assert.False(t, empty.Persisted())
}

func TestDeleteOutcomeString(t *testing.T) {
	assert.Equal(t, "not-persisted", NotPersisted.String())
	assert.Equal(t, "deleted", Deleted.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", DeleteOutcome(42).String())
}
