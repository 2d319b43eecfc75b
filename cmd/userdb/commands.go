package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/Ratio1/userdb_sdk_go/pkg/userdata"
)

func newFetchCmd(c *cli) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the user data stored for a host user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user must be specified")
			}
			data, err := c.store.Fetch(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "Host user id")
	return cmd
}

func newSaveCmd(c *cli) *cobra.Command {
	var (
		userID string
		raw    string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create or update the user data for a host user id",
		Long:  "Saves the flat user data JSON given with --data. A $id in the data updates that document; without one a new document is created.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" || raw == "" {
				return errors.New("both --user and --data must be specified")
			}
			data, err := userdata.ParseUserData([]byte(raw))
			if err != nil {
				return errors.Wrap(err, "parse --data")
			}
			saved, err := c.store.Save(cmd.Context(), userID, data)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), saved)
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "Host user id")
	cmd.Flags().StringVarP(&raw, "data", "d", "", "User data as a JSON object")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	var (
		id  string
		raw string
	)
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a stored user data document",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := &userdata.UserData{ID: id}
			if raw != "" {
				parsed, err := userdata.ParseUserData([]byte(raw))
				if err != nil {
					return errors.Wrap(err, "parse --data")
				}
				data = parsed
			}
			outcome, err := c.store.Delete(cmd.Context(), data)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{"outcome": outcome.String()})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Document id ($id)")
	cmd.Flags().StringVarP(&raw, "data", "d", "", "User data JSON carrying $id")
	return cmd
}
