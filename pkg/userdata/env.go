package userdata

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Ratio1/userdb_sdk_go/internal/devseed"
	"github.com/Ratio1/userdb_sdk_go/pkg/properties"
	"github.com/Ratio1/userdb_sdk_go/pkg/userdata/mock"
)

const (
	envMode     = "USERDB_RUNTIME_MODE"
	envMockSeed = "USERDB_MOCK_SEED"

	modeAuto = "auto"
	modeHTTP = "http"
	modeMock = "mock"
)

// mockDefaults fill the settings an in-memory run does not care about.
var mockDefaults = properties.Map{
	properties.SectionConfig: {
		properties.KeyBaseURL:       "mock://userdb/",
		properties.KeyCollection:    "userdata",
		properties.KeyUserIDField:   "userId",
		properties.KeyUserDataField: "userData",
	},
	properties.SectionSecret: {
		properties.KeyAPIKey: "mock",
	},
}

// NewFromEnv initialises a Store from USERDB_* environment variables and
// returns the resolved mode ("http" or "mock"). USERDB_RUNTIME_MODE selects
// the mode; in auto mode a configured USERDB_BASE_URL selects http.
func NewFromEnv(opts ...Option) (store *Store, mode string, err error) {
	mode = strings.ToLower(strings.TrimSpace(os.Getenv(envMode)))
	props, err := properties.FromEnv()
	if err != nil {
		return nil, "", err
	}
	_, baseErr := props.Get(properties.SectionConfig, properties.KeyBaseURL)
	hasBaseURL := baseErr == nil

	switch mode {
	case "", modeAuto:
		if hasBaseURL {
			return New(props, opts...), modeHTTP, nil
		}
		return newMockStore(props, opts)
	case modeHTTP:
		if !hasBaseURL {
			return nil, "", errors.New("userdata: HTTP mode requires USERDB_BASE_URL")
		}
		return New(props, opts...), modeHTTP, nil
	case modeMock:
		return newMockStore(props, opts)
	default:
		return nil, "", errors.Newf("userdata: unsupported %s value %q", envMode, mode)
	}
}

func newMockStore(props properties.Provider, opts []Option) (*Store, string, error) {
	m := mock.New()
	if path := strings.TrimSpace(os.Getenv(envMockSeed)); path != "" {
		docs, err := devseed.LoadSeed(path)
		if err != nil {
			return nil, "", errors.Wrap(err, "userdata: load mock seed")
		}
		if err := m.Seed(docs); err != nil {
			return nil, "", errors.Wrap(err, "userdata: apply mock seed")
		}
	}
	chain := properties.Chain{props, mockDefaults}
	return NewWithBackend(chain, MockBackend(m), opts...), modeMock, nil
}
