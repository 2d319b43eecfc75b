package properties

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. USERDB_CONFIG_BASE_URL.
const EnvPrefix = "USERDB"

// Viper adapts a *viper.Viper to Provider. Keys are looked up as
// "<section>.<key>".
type Viper struct {
	v *viper.Viper
}

// NewViper wraps v. A nil v gets a fresh instance with environment overrides.
func NewViper(v *viper.Viper) *Viper {
	if v == nil {
		v = viper.New()
		bindEnv(v)
	}
	return &Viper{v: v}
}

// LoadFile reads a YAML, JSON or TOML file with "config" and "secret" sections.
// Environment variables prefixed with EnvPrefix take precedence over the file.
func LoadFile(path string) (*Viper, error) {
	v := viper.New()
	bindEnv(v)
	if strings.TrimSpace(path) == "" {
		return &Viper{v: v}, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "properties: read config %s", path)
	}
	return &Viper{v: v}, nil
}

// Get implements Provider.
func (p *Viper) Get(section, key string) (string, error) {
	if p == nil || p.v == nil {
		return "", Missing(section, key)
	}
	k := section + "." + key
	if !p.v.IsSet(k) {
		return "", Missing(section, key)
	}
	val := strings.TrimSpace(p.v.GetString(k))
	if val == "" {
		return "", Missing(section, key)
	}
	return val, nil
}

// Set overrides a single value, e.g. from a command line flag.
func (p *Viper) Set(section, key, value string) {
	p.v.Set(section+"."+key, value)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}
