package sandbox

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratio1/userdb_sdk_go/pkg/userdata/mock"
)

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *mock.Mock) {
	t.Helper()
	m := mock.New()
	srv := httptest.NewServer(NewHandler(m, opts))
	t.Cleanup(srv.Close)
	return srv, m
}

func doJSON(t *testing.T, method, rawURL, body string) (*http.Response, any) {
	t.Helper()
	req, err := http.NewRequest(method, rawURL, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var payload any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func TestSandboxCRUD(t *testing.T) {
	srv, m := newTestServer(t, Options{Prefix: "/rest/", APIKey: "k"})
	base := srv.URL + "/rest/userdata"

	resp, created := doJSON(t, http.MethodPost, base+"?apikey=k", `{"uid":"u1","data":"{}"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created.(map[string]any)["_id"].(string)
	require.NotEmpty(t, id)

	q := url.QueryEscape(`{"uid":"u1"}`)
	resp, list := doJSON(t, http.MethodGet, base+"?apikey=k&q="+q, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)

	resp, updated := doJSON(t, http.MethodPut, base+"/"+id+"?apikey=k", `{"uid":"u1","data":"{\"a\":1}"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, updated.(map[string]any)["_id"])

	resp, one := doJSON(t, http.MethodGet, base+"/"+id+"?apikey=k", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"a":1}`, one.(map[string]any)["data"])

	resp, _ = doJSON(t, http.MethodDelete, base+"/"+id+"?apikey=k", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, m.Len("userdata"))

	resp, _ = doJSON(t, http.MethodDelete, base+"/"+id+"?apikey=k", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, base+"/"+id+"?apikey=k", `{"uid":"u1"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSandboxRejectsBadRequests(t *testing.T) {
	srv, _ := newTestServer(t, Options{APIKey: "k"})
	base := srv.URL + "/userdata"

	resp, _ := doJSON(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, base+"?apikey=k&q=not-json", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base+"?apikey=k", `[1]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSandboxFailureInjection(t *testing.T) {
	srv, _ := newTestServer(t, Options{
		Fail: FailConfig{Rate: 0.5, Code: http.StatusServiceUnavailable},
		Rand: func() float64 { return 0.1 },
	})
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/userdata", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestParseFailConfig(t *testing.T) {
	cfg, err := ParseFailConfig("")
	require.NoError(t, err)
	assert.Equal(t, FailConfig{}, cfg)

	cfg, err = ParseFailConfig("rate=0.25, code=503")
	require.NoError(t, err)
	assert.Equal(t, FailConfig{Rate: 0.25, Code: 503}, cfg)

	cfg, err = ParseFailConfig("rate=1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, cfg.Code)

	for _, bad := range []string{"rate", "rate=x", "code=x", "other=1"} {
		_, err := ParseFailConfig(bad)
		assert.Error(t, err, bad)
	}
}
