// Package properties supplies the static settings the user data store reads
// on every call: the collection endpoint and field names under the "config"
// section and the API key under the "secret" section. Providers are injected
// into the store at construction; Map serves tests and embedding hosts, Viper
// reads a config file with environment overrides, and FromEnv reads plain
// environment variables.
package properties
