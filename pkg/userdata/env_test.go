package userdata_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratio1/userdb_sdk_go/internal/sandbox"
	"github.com/Ratio1/userdb_sdk_go/pkg/userdata"
	"github.com/Ratio1/userdb_sdk_go/pkg/userdata/mock"
)

func clearUserDBEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"USERDB_RUNTIME_MODE", "USERDB_MOCK_SEED", "USERDB_DOTENV",
		"USERDB_BASE_URL", "USERDB_COLLECTION", "USERDB_USER_ID_FIELD",
		"USERDB_USER_DATA_FIELD", "USERDB_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnvHTTP(t *testing.T) {
	clearUserDBEnv(t)
	srv := httptest.NewServer(sandbox.NewHandler(mock.New(), sandbox.Options{APIKey: "env-key"}))
	defer srv.Close()

	t.Setenv("USERDB_BASE_URL", srv.URL+"/")
	t.Setenv("USERDB_COLLECTION", "userdata")
	t.Setenv("USERDB_USER_ID_FIELD", "bixbyUserId")
	t.Setenv("USERDB_USER_DATA_FIELD", "userData")
	t.Setenv("USERDB_API_KEY", "env-key")

	store, mode, err := userdata.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http", mode)

	saved, err := store.Save(context.Background(), "user-1", userdata.NewUserData(map[string]any{"a": "b"}))
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.NotEmpty(t, saved.ID)
}

func TestNewFromEnvHTTPRequiresBaseURL(t *testing.T) {
	clearUserDBEnv(t)
	t.Setenv("USERDB_RUNTIME_MODE", "http")

	_, _, err := userdata.NewFromEnv()
	require.Error(t, err)
}

func TestNewFromEnvUnsupportedMode(t *testing.T) {
	clearUserDBEnv(t)
	t.Setenv("USERDB_RUNTIME_MODE", "grpc")

	_, _, err := userdata.NewFromEnv()
	require.Error(t, err)
}

func TestNewFromEnvMockAutoFallback(t *testing.T) {
	clearUserDBEnv(t)

	store, mode, err := userdata.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "mock", mode)

	exerciseLifecycle(t, store)
}

func TestNewFromEnvMockSeed(t *testing.T) {
	clearUserDBEnv(t)
	seed := `{"profiles":[{"_id":"seed-1","uid":"user-7","payload":"{\"name\":\"Seeded\"}"}]}`
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	t.Setenv("USERDB_RUNTIME_MODE", "mock")
	t.Setenv("USERDB_MOCK_SEED", path)
	t.Setenv("USERDB_COLLECTION", "profiles")
	t.Setenv("USERDB_USER_ID_FIELD", "uid")
	t.Setenv("USERDB_USER_DATA_FIELD", "payload")

	store, mode, err := userdata.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "mock", mode)

	got, err := store.Fetch(context.Background(), "user-7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "seed-1", got.ID)
	assert.Equal(t, "Seeded", got.Properties["name"])
}

func TestNewFromEnvBadSeed(t *testing.T) {
	clearUserDBEnv(t)
	t.Setenv("USERDB_RUNTIME_MODE", "mock")
	t.Setenv("USERDB_MOCK_SEED", filepath.Join(t.TempDir(), "missing.json"))

	_, _, err := userdata.NewFromEnv()
	require.Error(t, err)
}
