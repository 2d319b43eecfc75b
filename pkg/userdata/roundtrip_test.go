package userdata_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Ratio1/userdb_sdk_go/internal/sandbox"
	"github.com/Ratio1/userdb_sdk_go/pkg/userdata"
	"github.com/Ratio1/userdb_sdk_go/pkg/userdata/mock"
)

// exerciseLifecycle walks a value through Transient -> Persisted -> updated -> Gone.
func exerciseLifecycle(t *testing.T, store *userdata.Store) {
	t.Helper()
	ctx := context.Background()

	missing, err := store.Fetch(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	original := userdata.NewUserData(map[string]any{
		"$type":    "profile.UserData",
		"name":     "Ada",
		"language": "en",
		"tags":     []any{"a", "b"},
	})
	created, err := store.Save(ctx, "user-1", original)
	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotEmpty(t, created.ID)

	fetched, err := store.Fetch(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, original.Properties, fetched.Properties)

	fetched.Properties["language"] = "fr"
	updated, err := store.Save(ctx, "user-1", fetched)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, created.ID, updated.ID)

	again, err := store.Fetch(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, "fr", again.Properties["language"])

	other, err := store.Fetch(ctx, "user-2")
	require.NoError(t, err)
	assert.Nil(t, other)

	outcome, err := store.Delete(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, userdata.Deleted, outcome)

	outcome, err = store.Delete(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, userdata.Failed, outcome)

	gone, err := store.Fetch(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRoundTripOverHTTP(t *testing.T) {
	srv := httptest.NewServer(sandbox.NewHandler(mock.New(), sandbox.Options{Prefix: "/rest", APIKey: "secret-key"}))
	defer srv.Close()

	exerciseLifecycle(t, userdata.New(settingsFor(srv.URL)))
}

func TestRoundTripMockBackend(t *testing.T) {
	exerciseLifecycle(t, userdata.NewWithBackend(settingsFor("mock://"), userdata.MockBackend(mock.New())))
}

func TestFetchAmbiguousOverHTTP(t *testing.T) {
	m := mock.New()
	srv := httptest.NewServer(sandbox.NewHandler(m, sandbox.Options{Prefix: "/rest"}))
	defer srv.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := m.Insert(ctx, "userdata", map[string]any{"bixbyUserId": "dup", "userData": "{}"})
		require.NoError(t, err)
	}

	got, err := userdata.New(settingsFor(srv.URL)).Fetch(ctx, "dup")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWrongAPIKeyIsLoggedAndAbsent(t *testing.T) {
	srv := httptest.NewServer(sandbox.NewHandler(mock.New(), sandbox.Options{Prefix: "/rest", APIKey: "other"}))
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	store := userdata.New(settingsFor(srv.URL), userdata.WithLogger(zap.New(core)))

	got, err := store.Save(context.Background(), "user-1", userdata.NewUserData(map[string]any{"a": 1}))
	require.NoError(t, err)
	assert.Nil(t, got)

	entries := logs.FilterMessage("userdata: remote call failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "create", entries[0].ContextMap()["op"])
	assert.EqualValues(t, 401, entries[0].ContextMap()["status"])
}
