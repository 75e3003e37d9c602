package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"emperror.dev/errors"
	"github.com/ethanbaker/flagdash/pkg/flags"
	"github.com/ethanbaker/flagdash/pkg/sdk"
	"github.com/ethanbaker/flagdash/pkg/utils"
	"github.com/spf13/cobra"
)

const DefaultServerURL = "http://localhost:8080"

type rootArgs struct {
	Server  string
	Timeout time.Duration
}

func newRootCommand() *cobra.Command {
	args := &rootArgs{}

	command := &cobra.Command{
		Use:          "flagctl",
		Short:        "Manage feature flags on a flag dashboard server.",
		SilenceUsage: true,
	}

	command.PersistentFlags().StringVar(&args.Server, "server", utils.GetEnvWithDefault("FLAGDASH_URL", DefaultServerURL), "base URL of the flag API (defaults to $FLAGDASH_URL)")
	command.PersistentFlags().DurationVar(&args.Timeout, "timeout", 30*time.Second, "timeout for each request")

	command.AddCommand(
		newListCommand(args),
		newGetCommand(args),
		newCreateCommand(args),
		newUpdateCommand(args),
		newToggleCommand(args),
		newDeleteCommand(args),
	)

	return command
}

// client returns an API client and a request context for the command
func (a *rootArgs) client(cmd *cobra.Command) (*sdk.Client, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.Timeout)
	return sdk.NewClient(a.Server), ctx, cancel
}

// printJSON writes v to the command output as indented JSON
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = w.Write(append(data, '\n'))
	return err
}

func newListCommand(root *rootArgs) *cobra.Command {
	var query sdk.ListFlagsQuery
	var environment string
	var enabled bool

	command := &cobra.Command{
		Use:   "list",
		Short: "List flags, optionally filtered.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query.Environment = flags.Environment(environment)
			if cmd.Flags().Changed("enabled") {
				query.Enabled = &enabled
			}

			client, ctx, cancel := root.client(cmd)
			defer cancel()

			resp, err := client.List(ctx, &query)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	command.Flags().StringVar(&environment, "environment", "", "only flags in this environment")
	command.Flags().BoolVar(&enabled, "enabled", false, "only enabled (or with --enabled=false, disabled) flags")
	command.Flags().StringVar(&query.Search, "search", "", "case-insensitive match on key, name or description")
	command.Flags().StringArrayVar(&query.Tags, "tag", nil, "only flags with any of these tags (repeatable)")

	return command
}

func newGetCommand(root *rootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single flag.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := root.client(cmd)
			defer cancel()

			f, err := client.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), f)
		},
	}
}

// metadataArgs are the metadata flags shared by create and update
type metadataArgs struct {
	Owner     string
	Tags      []string
	ExpiresAt string
}

func (m *metadataArgs) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.Owner, "owner", "", "owner of the flag")
	cmd.Flags().StringSliceVar(&m.Tags, "tags", nil, "comma separated tags")
	cmd.Flags().StringVar(&m.ExpiresAt, "expires-at", "", "RFC 3339 expiry time")
}

func (m *metadataArgs) expiry() (*time.Time, error) {
	t, err := time.Parse(time.RFC3339, m.ExpiresAt)
	if err != nil {
		return nil, errors.Wrap(err, "--expires-at must be an RFC 3339 time")
	}
	return &t, nil
}

func newCreateCommand(root *rootArgs) *cobra.Command {
	var req sdk.CreateFlagRequest
	var environment, description string
	var meta metadataArgs

	command := &cobra.Command{
		Use:   "create",
		Short: "Create a flag.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Environment = flags.Environment(environment)
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}

			if cmd.Flags().Changed("owner") || cmd.Flags().Changed("tags") || cmd.Flags().Changed("expires-at") {
				req.Metadata = &sdk.CreateFlagMetadata{}
				if cmd.Flags().Changed("owner") {
					req.Metadata.Owner = &meta.Owner
				}
				if cmd.Flags().Changed("tags") {
					req.Metadata.Tags = meta.Tags
				}
				if cmd.Flags().Changed("expires-at") {
					t, err := meta.expiry()
					if err != nil {
						return err
					}
					req.Metadata.ExpiresAt = t
				}
			}

			client, ctx, cancel := root.client(cmd)
			defer cancel()

			f, err := client.Create(ctx, &req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), f)
		},
	}

	command.Flags().StringVar(&req.Key, "key", "", "kebab-case flag key")
	command.Flags().StringVar(&req.Name, "name", "", "display name")
	command.Flags().StringVar(&description, "description", "", "description")
	command.Flags().BoolVar(&req.Enabled, "enabled", false, "create the flag enabled")
	command.Flags().StringVar(&environment, "environment", string(flags.Development), "development, staging or production")
	meta.register(command)

	_ = command.MarkFlagRequired("key")
	_ = command.MarkFlagRequired("name")

	return command
}

func newUpdateCommand(root *rootArgs) *cobra.Command {
	var req sdk.UpdateFlagRequest
	var name, description, environment string
	var enabled, clearDescription, clearExpiry bool
	var meta metadataArgs

	command := &cobra.Command{
		Use:   "update <id>",
		Short: "Update some fields of a flag.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed

			if changed("name") {
				req.Name = &name
			}
			if changed("enabled") {
				req.Enabled = &enabled
			}
			if changed("environment") {
				env := flags.Environment(environment)
				req.Environment = &env
			}

			switch {
			case clearDescription:
				req.Description = flags.Null[string]()
			case changed("description"):
				req.Description = flags.Some(description)
			}

			if changed("owner") || changed("tags") || changed("expires-at") || clearExpiry {
				req.Metadata = &sdk.UpdateFlagMetadata{}
				if changed("owner") {
					req.Metadata.Owner = &meta.Owner
				}
				if changed("tags") {
					req.Metadata.Tags = meta.Tags
					if req.Metadata.Tags == nil {
						req.Metadata.Tags = []string{}
					}
				}

				switch {
				case clearExpiry:
					req.Metadata.ExpiresAt = flags.Null[time.Time]()
				case changed("expires-at"):
					t, err := meta.expiry()
					if err != nil {
						return err
					}
					req.Metadata.ExpiresAt = flags.Some(*t)
				}
			}

			client, ctx, cancel := root.client(cmd)
			defer cancel()

			f, err := client.Update(ctx, args[0], &req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), f)
		},
	}

	command.Flags().StringVar(&name, "name", "", "display name")
	command.Flags().StringVar(&description, "description", "", "description")
	command.Flags().BoolVar(&clearDescription, "clear-description", false, "remove the description")
	command.Flags().BoolVar(&enabled, "enabled", false, "enabled state")
	command.Flags().StringVar(&environment, "environment", "", "move the flag to another environment")
	command.Flags().BoolVar(&clearExpiry, "clear-expires-at", false, "remove the expiry")
	meta.register(command)

	command.MarkFlagsMutuallyExclusive("description", "clear-description")
	command.MarkFlagsMutuallyExclusive("expires-at", "clear-expires-at")

	return command
}

func newToggleCommand(root *rootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a flag's enabled state.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := root.client(cmd)
			defer cancel()

			resp, err := client.Toggle(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newDeleteCommand(root *rootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a flag.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := root.client(cmd)
			defer cancel()

			if err := client.Delete(ctx, args[0]); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	}
}
