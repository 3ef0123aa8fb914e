package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the command that prints the GraphQL description of the schema
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema (SDL) of what can be queried",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := rootOpts.conn()
			if err != nil {
				return err
			}
			sdl, err := conn.SDL()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), sdl)
			return nil
		},
	}
}
