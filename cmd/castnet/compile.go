package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dolmen-go/jsonmap"
	"github.com/spf13/cobra"

	"github.com/andrewwphillips/castnet"
)

// MutationOptions holds flags for the compile mutation command
type MutationOptions struct {
	*RootOptions
	Label  string
	ID     string
	Op     string // create, update or delete
	Params string // JSON object
}

// NewCompileCommand creates the compile command and its subcommands
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the Cypher for a query or mutation",
	}
	cmd.AddCommand(newCompileQueryCommand(rootOpts))
	cmd.AddCommand(newCompileMutationCommand(rootOpts))
	return cmd
}

func newCompileQueryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <file|->",
		Short: "Compile a query in the selection language (- reads standard input)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			conn, err := rootOpts.conn()
			if err != nil {
				return err
			}
			cypher, err := conn.GQLToCypher(text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cypher)
			return nil
		},
	}
}

func newCompileMutationCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MutationOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mutation",
		Short: "Compile a create, update or delete of a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := rootOpts.conn()
			if err != nil {
				return err
			}
			q, err := compileMutation(conn, opts)
			if err != nil {
				return err
			}
			return writeQuery(cmd.OutOrStdout(), q)
		},
	}

	cmd.Flags().StringVarP(&opts.Label, "label", "l", "", "label of the node")
	cmd.Flags().StringVar(&opts.ID, "id", "", "id of the node (update and delete)")
	cmd.Flags().StringVar(&opts.Op, "op", "update", "operation (create, update or delete)")
	cmd.Flags().StringVarP(&opts.Params, "params", "p", "{}", "attributes and relationships as a JSON object")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}

func compileMutation(conn *castnet.Conn, opts *MutationOptions) (castnet.Query, error) {
	op := strings.ToLower(opts.Op)
	if op != "create" && opts.ID == "" {
		return castnet.Query{}, fmt.Errorf("--id is required to %s", op)
	}
	var payload jsonmap.Ordered
	if err := json.Unmarshal([]byte(opts.Params), &payload); err != nil {
		return castnet.Query{}, fmt.Errorf("%w decoding --params", err)
	}
	if payload.Data == nil {
		payload.Data = map[string]interface{}{}
	}

	switch op {
	case "create":
		return conn.RequestToCypher(opts.Label, "", payload, castnet.MethodCreate)
	case "update":
		return conn.RequestToCypher(opts.Label, opts.ID, payload, castnet.MethodUpdate)
	case "delete":
		return conn.DeleteCypher(opts.Label, opts.ID), nil
	}
	return castnet.Query{}, fmt.Errorf("unknown --op %q (use create, update or delete)", opts.Op)
}

// writeQuery prints the query text followed by its parameters, one per line in name order
func writeQuery(w io.Writer, q castnet.Query) error {
	fmt.Fprintln(w, q.Text)
	names := make([]string, 0, len(q.Params))
	for name := range q.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value, err := json.Marshal(q.Params[name])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "// $%s = %s\n", name, value)
	}
	return nil
}

func readInput(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(name)
	return string(data), err
}
