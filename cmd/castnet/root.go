package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewwphillips/castnet"
	"github.com/andrewwphillips/castnet/internal/config"
)

// RootOptions holds the flags shared by all commands
type RootOptions struct {
	ConfigFile string
	SchemaFile string // overrides the config setting
}

// NewRootCommand creates the castnet command and its subcommands
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "castnet",
		Short: "Generic graph endpoints compiled to Cypher",
		Long: `castnet turns a schema of labels, attributes and relationships into
create/update/delete endpoints and a GraphQL-like query language for Neo4j.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (YAML)")
	cmd.PersistentFlags().StringVarP(&opts.SchemaFile, "schema", "s", "", "schema file (YAML), overrides schema_file of the config")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "castnet %s\n", version)
		},
	})
	return cmd
}

// loadConfig reads the config file (if any) and applies the flags
func (opts *RootOptions) loadConfig() (*config.Config, error) {
	c, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.SchemaFile != "" {
		c.SchemaFile = opts.SchemaFile
	}
	return c, nil
}

// conn makes a connection without a database, for commands that only compile
func (opts *RootOptions) conn() (*castnet.Conn, error) {
	c, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	if c.SchemaFile == "" {
		return nil, fmt.Errorf("no schema file given (use --schema or set schema_file)")
	}
	raw, err := castnet.LoadSchema(c.SchemaFile)
	if err != nil {
		return nil, err
	}
	return castnet.New(raw, c.URLKey, nil, castnet.WithLocation(c.Location))
}
