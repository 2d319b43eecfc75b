package properties

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// EnvDotenv names an optional dotenv file loaded before the environment is parsed.
// Variables already present in the process environment win.
const EnvDotenv = "USERDB_DOTENV"

type envSettings struct {
	BaseURL       string `env:"USERDB_BASE_URL"`
	Collection    string `env:"USERDB_COLLECTION"`
	UserIDField   string `env:"USERDB_USER_ID_FIELD"`
	UserDataField string `env:"USERDB_USER_DATA_FIELD"`
	APIKey        string `env:"USERDB_API_KEY"`
}

// FromEnv builds a Map provider from USERDB_* environment variables. Unset
// variables are left out so lookups report ErrMissingProperty.
func FromEnv() (Map, error) {
	if path := strings.TrimSpace(os.Getenv(EnvDotenv)); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, errors.Wrapf(err, "properties: load dotenv %s", path)
		}
	}

	var raw envSettings
	if err := env.Parse(&raw); err != nil {
		return nil, errors.Wrap(err, "properties: parse env")
	}

	m := Map{}
	put := func(section, key, value string) {
		if strings.TrimSpace(value) != "" {
			m.Set(section, key, value)
		}
	}
	put(SectionConfig, KeyBaseURL, raw.BaseURL)
	put(SectionConfig, KeyCollection, raw.Collection)
	put(SectionConfig, KeyUserIDField, raw.UserIDField)
	put(SectionConfig, KeyUserDataField, raw.UserDataField)
	put(SectionSecret, KeyAPIKey, raw.APIKey)
	return m, nil
}
