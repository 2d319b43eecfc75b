package main

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ratio1/userdb_sdk_go/internal/logging"
	"github.com/Ratio1/userdb_sdk_go/pkg/properties"
	"github.com/Ratio1/userdb_sdk_go/pkg/userdata"
)

// cli holds the flag values shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string
	baseURL    string
	collection string
	userField  string
	dataField  string
	apiKey     string

	logger *zap.Logger
	store  *userdata.Store
}

// newRootCmd builds the command tree. Each call returns independent state so
// tests can run commands side by side.
func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "userdb",
		Short:         "Fetch, save and delete user data in the remote collection",
		Long:          "Command line access to the user data store. Settings come from a config file with config/secret sections, USERDB_* environment variables and the flags below.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to a YAML/JSON/TOML config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "Override config.base-url")
	root.PersistentFlags().StringVar(&c.collection, "collection", "", "Override config.collection")
	root.PersistentFlags().StringVar(&c.userField, "user-id-field", "", "Override config.user-id-field")
	root.PersistentFlags().StringVar(&c.dataField, "user-data-field", "", "Override config.user-data-field")
	root.PersistentFlags().StringVar(&c.apiKey, "api-key", "", "Override secret.api-key")

	root.AddCommand(newFetchCmd(c), newSaveCmd(c), newDeleteCmd(c))
	return root
}

func (c *cli) init() error {
	logger, err := logging.New(c.logLevel)
	if err != nil {
		return err
	}
	c.logger = logger

	props, err := properties.LoadFile(c.configPath)
	if err != nil {
		return err
	}
	overrides := []struct {
		section, key, value string
	}{
		{properties.SectionConfig, properties.KeyBaseURL, c.baseURL},
		{properties.SectionConfig, properties.KeyCollection, c.collection},
		{properties.SectionConfig, properties.KeyUserIDField, c.userField},
		{properties.SectionConfig, properties.KeyUserDataField, c.dataField},
		{properties.SectionSecret, properties.KeyAPIKey, c.apiKey},
	}
	for _, o := range overrides {
		if o.value != "" {
			props.Set(o.section, o.key, o.value)
		}
	}

	c.store = userdata.New(props, userdata.WithLogger(logger))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode output")
	}
	return nil
}
