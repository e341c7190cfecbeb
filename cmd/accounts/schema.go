// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/httpapi"
)

// NewSchemaCmd creates the schema subcommand, which prints the JSON Schema
// of the API request bodies.
func NewSchemaCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "schema [NAME]",
		Short: "Print the JSON Schema of the API request bodies",
		Long: `Print the JSON Schema used to validate a request body. Without NAME
every schema is printed. Known names: ` + strings.Join(httpapi.SchemaNames(), ", ") + `.
With --out each schema is written to NAME.schema.json in that directory.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: httpapi.SchemaNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := httpapi.SchemaNames()
			if len(args) == 1 {
				names = args
			}
			for _, name := range names {
				data, err := httpapi.GenerateSchema(name)
				if err != nil {
					return err
				}
				if outDir == "" {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(data)); err != nil {
						return oops.Wrapf(err, "write schema")
					}
					continue
				}
				path := filepath.Join(outDir, name+".schema.json")
				if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
					return oops.Code("SCHEMA_WRITE_FAILED").With("path", path).Wrap(err)
				}
				cmd.Printf("wrote %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write NAME.schema.json files into")

	return cmd
}
