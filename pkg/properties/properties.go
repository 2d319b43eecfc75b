package properties

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sections and keys understood by the user data store.
const (
	SectionConfig = "config"
	SectionSecret = "secret"

	KeyBaseURL       = "base-url"
	KeyCollection    = "collection"
	KeyUserIDField   = "user-id-field"
	KeyUserDataField = "user-data-field"
	KeyAPIKey        = "api-key"
)

// ErrMissingProperty is returned when a section/key pair cannot be resolved.
var ErrMissingProperty = errors.New("properties: missing property")

// Provider resolves static settings by section and key.
type Provider interface {
	Get(section, key string) (string, error)
}

// Missing builds an ErrMissingProperty error for section/key.
func Missing(section, key string) error {
	return errors.Wrapf(ErrMissingProperty, "%s.%s", section, key)
}

// Map is a Provider backed by static sections.
type Map map[string]map[string]string

// Get implements Provider.
func (m Map) Get(section, key string) (string, error) {
	values, ok := m[section]
	if !ok {
		return "", Missing(section, key)
	}
	v := strings.TrimSpace(values[key])
	if v == "" {
		return "", Missing(section, key)
	}
	return v, nil
}

// Set assigns a value, creating the section if needed.
func (m Map) Set(section, key, value string) {
	values, ok := m[section]
	if !ok {
		values = make(map[string]string)
		m[section] = values
	}
	values[key] = value
}

// Settings holds every value the store needs for one operation.
type Settings struct {
	BaseURL       string
	Collection    string
	UserIDField   string
	UserDataField string
	APIKey        string
}

// Resolve reads all settings from p. The first missing key aborts resolution.
func Resolve(p Provider) (Settings, error) {
	if p == nil {
		return Settings{}, errors.New("properties: provider is nil")
	}
	var (
		s   Settings
		err error
	)
	lookups := []struct {
		section string
		key     string
		dst     *string
	}{
		{SectionConfig, KeyBaseURL, &s.BaseURL},
		{SectionConfig, KeyCollection, &s.Collection},
		{SectionConfig, KeyUserIDField, &s.UserIDField},
		{SectionConfig, KeyUserDataField, &s.UserDataField},
		{SectionSecret, KeyAPIKey, &s.APIKey},
	}
	for _, l := range lookups {
		if *l.dst, err = p.Get(l.section, l.key); err != nil {
			return Settings{}, err
		}
	}
	return s, nil
}

// CollectionURL is base-url immediately followed by the collection name.
func (s Settings) CollectionURL() string {
	return s.BaseURL + s.Collection
}

// DocumentURL addresses a single document within the collection.
func (s Settings) DocumentURL(id string) string {
	return s.CollectionURL() + "/" + url.PathEscape(id)
}

// Chain consults providers in order and returns the first value found.
type Chain []Provider

// Get implements Provider.
func (c Chain) Get(section, key string) (string, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		v, err := p.Get(section, key)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrMissingProperty) {
			return "", err
		}
	}
	return "", Missing(section, key)
}
